package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"lead-intake-backend/internal/model"
	"lead-intake-backend/internal/notify"
	"lead-intake-backend/internal/transcript"

	"golang.org/x/crypto/bcrypt"
)

type memoryRepository struct {
	mu        sync.Mutex
	operators map[string]model.OperatorItem
	sessions  map[string]model.SessionItem
	turns     []model.TurnItem
	canned    map[string]model.CannedResponseItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		operators: make(map[string]model.OperatorItem),
		sessions:  make(map[string]model.SessionItem),
		canned:    make(map[string]model.CannedResponseItem),
	}
}

func (r *memoryRepository) GetOperatorByEmail(_ context.Context, email string) (model.OperatorItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	operator, ok := r.operators[email]
	if !ok {
		return model.OperatorItem{}, ErrNotFound
	}
	return operator, nil
}

func (r *memoryRepository) CreateOperator(_ context.Context, operator model.OperatorItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operators[operator.Email] = operator
	return nil
}

func (r *memoryRepository) GetSession(_ context.Context, sessionID string) (model.SessionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return model.SessionItem{}, ErrNotFound
	}
	return session, nil
}

func (r *memoryRepository) ListSessions(_ context.Context, status model.SessionStatus) ([]model.SessionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]model.SessionItem, 0, len(r.sessions))
	for _, session := range r.sessions {
		if status == "" || session.Status == status {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (r *memoryRepository) UpdateSessionStatus(_ context.Context, sessionID string, status model.SessionStatus, reason, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	session.Status = status
	session.UpdatedAt = updatedAt
	if reason != "" {
		session.ClosedReason = reason
	}
	r.sessions[sessionID] = session
	return nil
}

func (r *memoryRepository) CreateTurn(_ context.Context, turn model.TurnItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, turn)
	return nil
}

func (r *memoryRepository) ListTurns(_ context.Context, sessionID string) ([]model.TurnItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	turns := make([]model.TurnItem, 0)
	for _, turn := range r.turns {
		if turn.SessionID == sessionID {
			turns = append(turns, turn)
		}
	}
	return turns, nil
}

func (r *memoryRepository) ListCannedResponses(_ context.Context) ([]model.CannedResponseItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	responses := make([]model.CannedResponseItem, 0, len(r.canned))
	for _, response := range r.canned {
		responses = append(responses, response)
	}
	return responses, nil
}

func (r *memoryRepository) CreateCannedResponse(_ context.Context, response model.CannedResponseItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canned[response.ResponseID] = response
	return nil
}

func (r *memoryRepository) DeleteCannedResponse(_ context.Context, responseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.canned, responseID)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	turns    []transcript.TurnEvent
	statuses []transcript.StatusEvent
}

func (p *recordingPublisher) PublishTurn(event transcript.TurnEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.turns = append(p.turns, event)
	return nil
}

func (p *recordingPublisher) PublishStatus(event transcript.StatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, event)
	return nil
}

// fakeTokenIssuer issues predictable tokens with no signing secret behind them.
type fakeTokenIssuer struct {
	seq int
}

func (f *fakeTokenIssuer) Issue(identity Identity) (Tokens, error) {
	f.seq++
	return Tokens{
		AccessToken:  fmt.Sprintf("access-%s-%d", identity.OperatorID, f.seq),
		RefreshToken: fmt.Sprintf("refresh-%s-%d", identity.OperatorID, f.seq),
	}, nil
}

func (f *fakeTokenIssuer) Consume(refreshToken string) (Identity, error) {
	if refreshToken == "valid-refresh" {
		return Identity{OperatorID: "op-1", Email: "op@example.com"}, nil
	}
	return Identity{}, errors.New("unknown refresh token")
}

func (f *fakeTokenIssuer) Parse(accessToken string) (Identity, error) {
	if accessToken == "valid-access" {
		return Identity{OperatorID: "op-1", Email: "op@example.com"}, nil
	}
	return Identity{}, errors.New("unknown access token")
}

func newTestService(t *testing.T) (*Service, *memoryRepository, *recordingPublisher) {
	t.Helper()
	repo := newMemoryRepository()
	pub := &recordingPublisher{}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	now := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}

	service := NewWithRepository(repo, pub, notify.New(""), &fakeTokenIssuer{}, now)
	return service, repo, pub
}

func seedOperator(t *testing.T, repo *memoryRepository, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	repo.operators[email] = model.OperatorItem{
		OperatorID:   "op-1",
		Email:        email,
		PasswordHash: string(hash),
	}
}

func errorCode(t *testing.T, err error) ErrorCode {
	t.Helper()
	var serviceErr *Error
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	return serviceErr.Code
}

func TestLogin(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedOperator(t, repo, "op@example.com", "hunter2hunter2")

	result, err := service.Login(context.Background(), LoginParams{
		Email:    "  OP@Example.COM ",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("tokens not issued: %+v", result.Tokens)
	}
	if result.Operator.OperatorID != "op-1" {
		t.Fatalf("operator = %+v", result.Operator)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedOperator(t, repo, "op@example.com", "hunter2hunter2")

	_, err := service.Login(context.Background(), LoginParams{
		Email:    "op@example.com",
		Password: "wrong",
	})
	if code := errorCode(t, err); code != ErrorCodeUnauthorized {
		t.Fatalf("error code = %s, want %s", code, ErrorCodeUnauthorized)
	}
}

func TestLoginUnknownOperator(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Login(context.Background(), LoginParams{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if code := errorCode(t, err); code != ErrorCodeUnauthorized {
		t.Fatalf("error code = %s, want %s", code, ErrorCodeUnauthorized)
	}
}

func TestRefresh(t *testing.T) {
	service, _, _ := newTestService(t)

	result, err := service.Refresh(context.Background(), "valid-refresh")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if result.Tokens.AccessToken == "" {
		t.Fatal("no access token issued")
	}
	if result.Operator.OperatorID != "op-1" {
		t.Fatalf("operator = %+v", result.Operator)
	}

	_, err = service.Refresh(context.Background(), "stolen")
	if code := errorCode(t, err); code != ErrorCodeUnauthorized {
		t.Fatalf("error code = %s, want %s", code, ErrorCodeUnauthorized)
	}
}

func TestCreateOperator(t *testing.T) {
	service, repo, _ := newTestService(t)

	operator, err := service.CreateOperator(context.Background(), CreateOperatorParams{
		Email:    "New@Example.com",
		Name:     "New Operator",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("CreateOperator: %v", err)
	}
	if operator.PasswordHash != "" {
		t.Fatal("password hash leaked in the response")
	}
	stored := repo.operators["new@example.com"]
	if stored.PasswordHash == "" || stored.PasswordHash == "longenough" {
		t.Fatal("password not stored as a hash")
	}

	_, err = service.CreateOperator(context.Background(), CreateOperatorParams{
		Email:    "new@example.com",
		Password: "longenough",
	})
	if code := errorCode(t, err); code != ErrorCodeConflict {
		t.Fatalf("duplicate create error code = %s, want %s", code, ErrorCodeConflict)
	}
}

func TestCreateOperatorValidation(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.CreateOperator(context.Background(), CreateOperatorParams{Email: "not-an-email", Password: "longenough"})
	if code := errorCode(t, err); code != ErrorCodeValidation {
		t.Fatalf("bad email error code = %s", code)
	}

	_, err = service.CreateOperator(context.Background(), CreateOperatorParams{Email: "a@b.com", Password: "short"})
	if code := errorCode(t, err); code != ErrorCodeValidation {
		t.Fatalf("short password error code = %s", code)
	}
}

func TestFirstOperatorTurnFlipsSessionLive(t *testing.T) {
	service, repo, pub := newTestService(t)
	repo.sessions["s-1"] = model.SessionItem{
		SessionID: "s-1",
		Status:    model.SessionStatusAutomated,
	}

	turn, err := service.PostOperatorTurn(context.Background(), "s-1", Identity{OperatorID: "op-1"}, "I can help from here")
	if err != nil {
		t.Fatalf("PostOperatorTurn: %v", err)
	}

	if turn.Sender != model.SenderOperator {
		t.Fatalf("turn sender = %s, want operator", turn.Sender)
	}
	if repo.sessions["s-1"].Status != model.SessionStatusLive {
		t.Fatalf("session status = %s, want live", repo.sessions["s-1"].Status)
	}
	if len(pub.statuses) != 1 || pub.statuses[0].Status != model.SessionStatusLive {
		t.Fatalf("status events = %+v, want one live transition", pub.statuses)
	}
	if len(pub.turns) != 1 {
		t.Fatalf("published %d turn events, want 1", len(pub.turns))
	}
}

func TestSecondOperatorTurnDoesNotRepublishStatus(t *testing.T) {
	service, repo, pub := newTestService(t)
	repo.sessions["s-1"] = model.SessionItem{
		SessionID: "s-1",
		Status:    model.SessionStatusLive,
	}

	if _, err := service.PostOperatorTurn(context.Background(), "s-1", Identity{}, "still here"); err != nil {
		t.Fatalf("PostOperatorTurn: %v", err)
	}
	if len(pub.statuses) != 0 {
		t.Fatalf("status events = %+v, want none on an already-live session", pub.statuses)
	}
}

func TestOperatorTurnOnClosedSession(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.sessions["s-1"] = model.SessionItem{
		SessionID: "s-1",
		Status:    model.SessionStatusClosed,
	}

	_, err := service.PostOperatorTurn(context.Background(), "s-1", Identity{}, "hello?")
	if code := errorCode(t, err); code != ErrorCodeConflict {
		t.Fatalf("error code = %s, want %s", code, ErrorCodeConflict)
	}
}

func TestCloseSession(t *testing.T) {
	service, repo, pub := newTestService(t)
	repo.sessions["s-1"] = model.SessionItem{
		SessionID: "s-1",
		Status:    model.SessionStatusLive,
	}

	if err := service.CloseSession(context.Background(), "s-1", model.CloseReasonResolved); err != nil {
		t.Fatalf("CloseSession: %v", err)
	}
	session := repo.sessions["s-1"]
	if session.Status != model.SessionStatusClosed || session.ClosedReason != model.CloseReasonResolved {
		t.Fatalf("session = %+v, want closed/resolved", session)
	}
	if len(pub.statuses) != 1 || pub.statuses[0].Reason != model.CloseReasonResolved {
		t.Fatalf("status events = %+v", pub.statuses)
	}

	// Closing twice is a conflict, not a silent success.
	err := service.CloseSession(context.Background(), "s-1", model.CloseReasonResolved)
	if code := errorCode(t, err); code != ErrorCodeConflict {
		t.Fatalf("double close error code = %s, want %s", code, ErrorCodeConflict)
	}
}

func TestCloseSessionRejectsUnknownReason(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.sessions["s-1"] = model.SessionItem{SessionID: "s-1", Status: model.SessionStatusLive}

	err := service.CloseSession(context.Background(), "s-1", "boredom")
	if code := errorCode(t, err); code != ErrorCodeValidation {
		t.Fatalf("error code = %s, want %s", code, ErrorCodeValidation)
	}
}

func TestListSessionsFilter(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.sessions["s-1"] = model.SessionItem{SessionID: "s-1", Status: model.SessionStatusAutomated}
	repo.sessions["s-2"] = model.SessionItem{SessionID: "s-2", Status: model.SessionStatusLive}

	sessions, err := service.ListSessions(context.Background(), "live")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != "s-2" {
		t.Fatalf("sessions = %+v, want only s-2", sessions)
	}

	if _, err := service.ListSessions(context.Background(), "paused"); err == nil {
		t.Fatal("unknown status filter accepted")
	}
}

func TestIdentityFromAuthorizationHeader(t *testing.T) {
	service, _, _ := newTestService(t)

	identity, err := service.IdentityFromAuthorizationHeader("Bearer valid-access")
	if err != nil {
		t.Fatalf("IdentityFromAuthorizationHeader: %v", err)
	}
	if identity.OperatorID != "op-1" {
		t.Fatalf("identity = %+v", identity)
	}

	for _, header := range []string{"", "valid-access", "Bearer nope"} {
		if _, err := service.IdentityFromAuthorizationHeader(header); err == nil {
			t.Errorf("header %q accepted", header)
		}
	}
}

func TestEnsureDefaultCannedResponses(t *testing.T) {
	service, repo, _ := newTestService(t)

	if err := service.EnsureDefaultCannedResponses(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultCannedResponses: %v", err)
	}
	if len(repo.canned) != 4 {
		t.Fatalf("seeded %d canned responses, want 4", len(repo.canned))
	}

	// Seeding again must not duplicate.
	if err := service.EnsureDefaultCannedResponses(context.Background()); err != nil {
		t.Fatalf("second EnsureDefaultCannedResponses: %v", err)
	}
	if len(repo.canned) != 4 {
		t.Fatalf("re-seeding grew the catalog to %d", len(repo.canned))
	}
}

func TestCannedResponseLifecycle(t *testing.T) {
	service, repo, _ := newTestService(t)

	created, err := service.CreateCannedResponse(context.Background(), CannedResponseParams{
		Trigger: "hours",
		Body:    "Our office is open 8am to 6pm, Monday through Saturday.",
	})
	if err != nil {
		t.Fatalf("CreateCannedResponse: %v", err)
	}
	if created.ResponseID == "" {
		t.Fatal("no response ID assigned")
	}

	if _, err := service.CreateCannedResponse(context.Background(), CannedResponseParams{Trigger: " ", Body: "x"}); err == nil {
		t.Fatal("blank trigger accepted")
	}

	if err := service.DeleteCannedResponse(context.Background(), created.ResponseID); err != nil {
		t.Fatalf("DeleteCannedResponse: %v", err)
	}
	if len(repo.canned) != 0 {
		t.Fatalf("canned catalog not empty after delete: %+v", repo.canned)
	}
}
