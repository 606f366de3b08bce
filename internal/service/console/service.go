package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"lead-intake-backend/internal/database"
	"lead-intake-backend/internal/model"
	"lead-intake-backend/internal/notify"
	"lead-intake-backend/internal/transcript"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Publisher fans console-originated events out to websocket observers.
type Publisher interface {
	PublishTurn(event transcript.TurnEvent) error
	PublishStatus(event transcript.StatusEvent) error
}

type Service struct {
	repo     Repository
	pub      Publisher
	notifier *notify.Notifier
	tokens   TokenIssuer
	now      func() time.Time

	turnSeq uint64
	turnTag string
}

func New(db *database.Database, pub Publisher, notifier *notify.Notifier, tokens TokenIssuer) *Service {
	return NewWithRepository(NewDynamoRepository(db), pub, notifier, tokens, time.Now)
}

func NewWithRepository(repo Repository, pub Publisher, notifier *notify.Notifier, tokens TokenIssuer, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     repo,
		pub:      pub,
		notifier: notifier,
		tokens:   tokens,
		now:      now,
		turnTag:  uuid.NewString()[:8],
	}
}

func (s *Service) Login(ctx context.Context, params LoginParams) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Password == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "email and password are required", nil)
	}

	operator, err := s.repo.GetOperatorByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", err)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to load operator", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(params.Password)); err != nil {
		return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", err)
	}

	tokens, err := s.tokens.Issue(Identity{OperatorID: operator.OperatorID, Email: operator.Email})
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}

	return AuthResult{Tokens: tokens, Operator: operator}, nil
}

// Refresh exchanges a single-use refresh token for a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "refresh token is required", nil)
	}

	identity, err := s.tokens.Consume(refreshToken)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid refresh token", err)
	}

	tokens, err := s.tokens.Issue(identity)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}

	return AuthResult{
		Tokens: tokens,
		Operator: model.OperatorItem{
			OperatorID: identity.OperatorID,
			Email:      identity.Email,
		},
	}, nil
}

func (s *Service) IdentityFromAuthorizationHeader(header string) (Identity, error) {
	if header == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "missing authorization header", nil)
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid authorization header", nil)
	}
	identity, err := s.tokens.Parse(token)
	if err != nil {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid token", err)
	}
	return identity, nil
}

func (s *Service) CreateOperator(ctx context.Context, params CreateOperatorParams) (model.OperatorItem, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return model.OperatorItem{}, newError(ErrorCodeValidation, "a valid email is required", nil)
	}
	if len(params.Password) < 8 {
		return model.OperatorItem{}, newError(ErrorCodeValidation, "password must be at least 8 characters", nil)
	}

	if _, err := s.repo.GetOperatorByEmail(ctx, email); err == nil {
		return model.OperatorItem{}, newError(ErrorCodeConflict, "operator already exists", nil)
	} else if !errors.Is(err, ErrNotFound) {
		return model.OperatorItem{}, newError(ErrorCodeInternal, "failed to check operator", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.OperatorItem{}, newError(ErrorCodeInternal, "failed to hash password", err)
	}

	operator := model.OperatorItem{
		OperatorID:   uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: string(hash),
		CreatedAt:    s.timestamp(),
	}
	if err := s.repo.CreateOperator(ctx, operator); err != nil {
		return model.OperatorItem{}, newError(ErrorCodeInternal, "failed to create operator", err)
	}
	operator.PasswordHash = ""
	return operator, nil
}

func (s *Service) ListSessions(ctx context.Context, statusFilter string) ([]model.SessionItem, error) {
	status := model.SessionStatus(strings.TrimSpace(statusFilter))
	switch status {
	case "", model.SessionStatusAutomated, model.SessionStatusLive, model.SessionStatusClosed:
	default:
		return nil, newError(ErrorCodeValidation, "unknown status filter", nil)
	}

	sessions, err := s.repo.ListSessions(ctx, status)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list sessions", err)
	}
	return sessions, nil
}

func (s *Service) Transcript(ctx context.Context, sessionID string) (TranscriptResult, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TranscriptResult{}, newError(ErrorCodeNotFound, "session not found", err)
		}
		return TranscriptResult{}, newError(ErrorCodeInternal, "failed to load session", err)
	}
	turns, err := s.repo.ListTurns(ctx, sessionID)
	if err != nil {
		return TranscriptResult{}, newError(ErrorCodeInternal, "failed to load transcript", err)
	}
	return TranscriptResult{Session: session, Turns: turns}, nil
}

// PostOperatorTurn appends an operator message to a session. The first
// operator turn on an automated session flips it live; the status event also
// silences the intake automation and cancels its busy-fallback timer.
func (s *Service) PostOperatorTurn(ctx context.Context, sessionID string, operator Identity, content string) (model.TurnItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.TurnItem{}, newError(ErrorCodeValidation, "message content is required", nil)
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.TurnItem{}, newError(ErrorCodeNotFound, "session not found", err)
		}
		return model.TurnItem{}, newError(ErrorCodeInternal, "failed to load session", err)
	}

	if session.Status == model.SessionStatusClosed {
		return model.TurnItem{}, newError(ErrorCodeConflict, "session is closed", nil)
	}

	if session.Status == model.SessionStatusAutomated {
		if !model.ValidStatusTransition(session.Status, model.SessionStatusLive) {
			return model.TurnItem{}, newError(ErrorCodeConflict, "session cannot go live", nil)
		}
		nowStr := s.timestamp()
		if err := s.repo.UpdateSessionStatus(ctx, sessionID, model.SessionStatusLive, "", nowStr); err != nil {
			return model.TurnItem{}, newError(ErrorCodeInternal, "failed to update session status", err)
		}
		if err := s.pub.PublishStatus(transcript.StatusEvent{
			Type:      transcript.EventStatusChanged,
			SessionID: sessionID,
			Status:    model.SessionStatusLive,
			ChangedAt: nowStr,
		}); err != nil {
			log.Printf("console: publish takeover for session %s: %v", sessionID, err)
		}
		incLiveSessions()
		s.notifier.Send(notify.EventOperatorTakeover, sessionID, map[string]string{
			"operatorId": operator.OperatorID,
		})
	}

	turn := s.appendTurn(ctx, sessionID, content)
	return turn, nil
}

func (s *Service) CloseSession(ctx context.Context, sessionID, reason string) error {
	switch reason {
	case model.CloseReasonResolved, model.CloseReasonSpam:
	default:
		return newError(ErrorCodeValidation, "unknown close reason", fmt.Errorf("reason %q", reason))
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "session not found", err)
		}
		return newError(ErrorCodeInternal, "failed to load session", err)
	}

	if !model.ValidStatusTransition(session.Status, model.SessionStatusClosed) {
		return newError(ErrorCodeConflict, "session is already closed", nil)
	}

	nowStr := s.timestamp()
	if err := s.repo.UpdateSessionStatus(ctx, sessionID, model.SessionStatusClosed, reason, nowStr); err != nil {
		return newError(ErrorCodeInternal, "failed to close session", err)
	}
	if session.Status == model.SessionStatusLive {
		decLiveSessions()
	}

	if err := s.pub.PublishStatus(transcript.StatusEvent{
		Type:      transcript.EventStatusChanged,
		SessionID: sessionID,
		Status:    model.SessionStatusClosed,
		Reason:    reason,
		ChangedAt: nowStr,
	}); err != nil {
		log.Printf("console: publish close for session %s: %v", sessionID, err)
	}
	s.notifier.Send(notify.EventSessionClosed, sessionID, map[string]string{"reason": reason})
	return nil
}

func (s *Service) CannedResponses(ctx context.Context) ([]model.CannedResponseItem, error) {
	responses, err := s.repo.ListCannedResponses(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list canned responses", err)
	}
	return responses, nil
}

func (s *Service) CreateCannedResponse(ctx context.Context, params CannedResponseParams) (model.CannedResponseItem, error) {
	trigger := strings.TrimSpace(params.Trigger)
	body := strings.TrimSpace(params.Body)
	if trigger == "" || body == "" {
		return model.CannedResponseItem{}, newError(ErrorCodeValidation, "trigger and body are required", nil)
	}

	response := model.CannedResponseItem{
		ResponseID: uuid.NewString(),
		Trigger:    trigger,
		Body:       body,
		CreatedAt:  s.timestamp(),
	}
	if err := s.repo.CreateCannedResponse(ctx, response); err != nil {
		return model.CannedResponseItem{}, newError(ErrorCodeInternal, "failed to create canned response", err)
	}
	return response, nil
}

func (s *Service) DeleteCannedResponse(ctx context.Context, responseID string) error {
	if strings.TrimSpace(responseID) == "" {
		return newError(ErrorCodeValidation, "responseId is required", nil)
	}
	if err := s.repo.DeleteCannedResponse(ctx, responseID); err != nil {
		return newError(ErrorCodeInternal, "failed to delete canned response", err)
	}
	return nil
}

// EnsureDefaultCannedResponses seeds the starter set on an empty table so a
// fresh deployment has a usable picker.
func (s *Service) EnsureDefaultCannedResponses(ctx context.Context) error {
	existing, err := s.repo.ListCannedResponses(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []CannedResponseParams{
		{Trigger: "greeting", Body: "Hi, this is one of our intake specialists. I have your details in front of me and I can help from here."},
		{Trigger: "docs", Body: "Could you share any photos or documents you have from the accident? You can upload them right here in the chat."},
		{Trigger: "callback", Body: "I can have one of our attorneys call you back. What time works best for you?"},
		{Trigger: "thanks", Body: "Thank you, I have everything I need for now. We will be in touch shortly with next steps."},
	}
	for _, params := range defaults {
		if _, err := s.CreateCannedResponse(ctx, params); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) appendTurn(ctx context.Context, sessionID, content string) model.TurnItem {
	turnID := fmt.Sprintf("%016x-%s", atomic.AddUint64(&s.turnSeq, 1), s.turnTag)
	turn := model.TurnItem{
		PK:        model.TurnPK(sessionID, turnID),
		SessionID: sessionID,
		TurnID:    turnID,
		Sender:    model.SenderOperator,
		Content:   content,
		CreatedAt: s.timestamp(),
	}

	if err := s.repo.CreateTurn(ctx, turn); err != nil {
		log.Printf("console: store turn for session %s: %v", sessionID, err)
	}
	if err := s.pub.PublishTurn(transcript.TurnEvent{
		Type:      transcript.EventTurnCreated,
		SessionID: sessionID,
		TurnID:    turn.TurnID,
		Sender:    model.SenderOperator,
		Content:   content,
		CreatedAt: turn.CreatedAt,
	}); err != nil {
		log.Printf("console: publish turn for session %s: %v", sessionID, err)
	}
	return turn
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
