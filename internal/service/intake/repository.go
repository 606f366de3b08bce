package intake

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

var ErrNotFound = errors.New("intake repository: not found")

type Repository interface {
	CreateSessionIfAbsent(ctx context.Context, session model.SessionItem) (bool, error)
	GetSession(ctx context.Context, sessionID string) (model.SessionItem, error)
	UpdateSession(ctx context.Context, session model.SessionItem) error
	CreateTurn(ctx context.Context, turn model.TurnItem) error
	ListTurns(ctx context.Context, sessionID string) ([]model.TurnItem, error)
	CreateLead(ctx context.Context, lead model.LeadItem) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateSessionIfAbsent(ctx context.Context, session model.SessionItem) (bool, error) {
	err := r.db.Client.PutItemIfNotExists(ctx, model.SessionsTable, session, "sessionId")
	if err != nil {
		if errors.Is(err, database.ErrConditionFailed) {
			return false, nil
		}
		return false, err
	}
	return true, nil
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

func (r *DynamoRepository) UpdateSession(ctx context.Context, session model.SessionItem) error {
	return r.db.Client.PutItem(ctx, model.SessionsTable, session)
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
	SortTurns(turns)
	return turns, nil
}

func (r *DynamoRepository) CreateLead(ctx context.Context, lead model.LeadItem) error {
	return r.db.Client.PutItem(ctx, model.LeadsTable, lead)
}

// SortTurns orders a transcript by creation time, falling back to turn ID for
// writes that landed on the same nanosecond.
func SortTurns(turns []model.TurnItem) {
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
