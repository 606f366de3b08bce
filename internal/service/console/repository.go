package console

import (
	"context"
	"errors"
	"sort"
	"strings"

	"lead-intake-backend/internal/database"
	"lead-intake-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("console repository: not found")

type Repository interface {
	GetOperatorByEmail(ctx context.Context, email string) (model.OperatorItem, error)
	CreateOperator(ctx context.Context, operator model.OperatorItem) error
	GetSession(ctx context.Context, sessionID string) (model.SessionItem, error)
	ListSessions(ctx context.Context, status model.SessionStatus) ([]model.SessionItem, error)
	UpdateSessionStatus(ctx context.Context, sessionID string, status model.SessionStatus, reason, updatedAt string) error
	CreateTurn(ctx context.Context, turn model.TurnItem) error
	ListTurns(ctx context.Context, sessionID string) ([]model.TurnItem, error)
	ListCannedResponses(ctx context.Context) ([]model.CannedResponseItem, error)
	CreateCannedResponse(ctx context.Context, response model.CannedResponseItem) error
	DeleteCannedResponse(ctx context.Context, responseID string) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) GetOperatorByEmail(ctx context.Context, email string) (model.OperatorItem, error) {
	items, err := r.db.Client.ScanAllWithFilter(
		ctx,
		model.OperatorsTable,
		"email = :email",
		map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		nil,
	)
	if err != nil {
		return model.OperatorItem{}, err
	}
	if len(items) == 0 {
		return model.OperatorItem{}, ErrNotFound
	}

	var operator model.OperatorItem
	if err := attributevalue.UnmarshalMap(items[0], &operator); err != nil {
		return model.OperatorItem{}, err
	}
	return operator, nil
}

func (r *DynamoRepository) CreateOperator(ctx context.Context, operator model.OperatorItem) error {
	return r.db.Client.PutItem(ctx, model.OperatorsTable, operator)
}

func (r *DynamoRepository) GetSession(ctx context.Context, sessionID string) (model.SessionItem, error) {
	var session model.SessionItem
	err := r.db.Client.GetItem(
		ctx,
		model.SessionsTable,
		database.StringKey("sessionId", sessionID),
		&session,
	)
	if err != nil {
		if isNotFound(err) {
			return model.SessionItem{}, ErrNotFound
		}
		return model.SessionItem{}, err
	}
	return session, nil
}

func (r *DynamoRepository) ListSessions(ctx context.Context, status model.SessionStatus) ([]model.SessionItem, error) {
	var items []map[string]types.AttributeValue
	var err error

	if status == "" {
		items, err = r.db.Client.ScanAll(ctx, model.SessionsTable)
	} else {
		// "status" is a DynamoDB reserved word.
		items, err = r.db.Client.ScanAllWithFilter(
			ctx,
			model.SessionsTable,
			"#status = :status",
			map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: string(status)},
			},
			map[string]string{"#status": "status"},
		)
	}
	if err != nil {
		return nil, err
	}

	sessions := make([]model.SessionItem, 0, len(items))
	for _, item := range items {
		var session model.SessionItem
		if err := attributevalue.UnmarshalMap(item, &session); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt > sessions[j].UpdatedAt
	})
	return sessions, nil
}

func (r *DynamoRepository) UpdateSessionStatus(ctx context.Context, sessionID string, status model.SessionStatus, reason, updatedAt string) error {
	exprValues := map[string]types.AttributeValue{
		":status":    &types.AttributeValueMemberS{Value: string(status)},
		":updatedAt": &types.AttributeValueMemberS{Value: updatedAt},
	}
	exprNames := map[string]string{"#status": "status"}
	updateExpr := "SET #status = :status, updatedAt = :updatedAt"

	if reason != "" {
		updateExpr += ", closedReason = :closedReason"
		exprValues[":closedReason"] = &types.AttributeValueMemberS{Value: reason}
	}

	return r.db.Client.UpdateItem(
		ctx,
		model.SessionsTable,
		database.StringKey("sessionId", sessionID),
		updateExpr,
		exprValues,
		exprNames,
		nil,
	)
}

func (r *DynamoRepository) CreateTurn(ctx context.Context, turn model.TurnItem) error {
	return r.db.Client.PutItem(ctx, model.TurnsTable, turn)
}

func (r *DynamoRepository) ListTurns(ctx context.Context, sessionID string) ([]model.TurnItem, error) {
	items, err := r.db.Client.ScanAllWithFilter(
		ctx,
		model.TurnsTable,
		"sessionId = :sessionId",
		map[string]types.AttributeValue{
			":sessionId": &types.AttributeValueMemberS{Value: sessionID},
		},
		nil,
	)
	if err != nil {
		return nil, err
	}

	turns := make([]model.TurnItem, 0, len(items))
	for _, item := range items {
		var turn model.TurnItem
		if err := attributevalue.UnmarshalMap(item, &turn); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	sortTurns(turns)
	return turns, nil
}

func (r *DynamoRepository) ListCannedResponses(ctx context.Context) ([]model.CannedResponseItem, error) {
	items, err := r.db.Client.ScanAll(ctx, model.CannedResponsesTable)
	if err != nil {
		return nil, err
	}

	responses := make([]model.CannedResponseItem, 0, len(items))
	for _, item := range items {
		var response model.CannedResponseItem
		if err := attributevalue.UnmarshalMap(item, &response); err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}

	sort.SliceStable(responses, func(i, j int) bool {
		return responses[i].Trigger < responses[j].Trigger
	})
	return responses, nil
}

func (r *DynamoRepository) CreateCannedResponse(ctx context.Context, response model.CannedResponseItem) error {
	return r.db.Client.PutItem(ctx, model.CannedResponsesTable, response)
}

func (r *DynamoRepository) DeleteCannedResponse(ctx context.Context, responseID string) error {
	return r.db.Client.DeleteItem(ctx, model.CannedResponsesTable, database.StringKey("responseId", responseID))
}

func sortTurns(turns []model.TurnItem) {
	sort.SliceStable(turns, func(i, j int) bool {
		if turns[i].CreatedAt != turns[j].CreatedAt {
			return turns[i].CreatedAt < turns[j].CreatedAt
		}
		return turns[i].TurnID < turns[j].TurnID
	})
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "item not found")
}
