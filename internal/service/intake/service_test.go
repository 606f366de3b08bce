package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lead-intake-backend/internal/locale"
	"lead-intake-backend/internal/model"
	"lead-intake-backend/internal/notify"
	"lead-intake-backend/internal/transcript"
)

type memoryRepository struct {
	mu       sync.Mutex
	sessions map[string]model.SessionItem
	turns    []model.TurnItem
	leads    []model.LeadItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{sessions: make(map[string]model.SessionItem)}
}

func (r *memoryRepository) CreateSessionIfAbsent(_ context.Context, session model.SessionItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.SessionID]; ok {
		return false, nil
	}
	r.sessions[session.SessionID] = session
	return true, nil
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

func (r *memoryRepository) UpdateSession(_ context.Context, session model.SessionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.SessionID] = session
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
	SortTurns(turns)
	return turns, nil
}

func (r *memoryRepository) CreateLead(_ context.Context, lead model.LeadItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, lead)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	turns    []transcript.TurnEvent
	statuses []transcript.StatusEvent
	console  []interface{}
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

func (p *recordingPublisher) PublishConsole(payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.console = append(p.console, payload)
	return nil
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

	service := NewWithRepository(repo, pub, notify.New(""), now)
	service.sleep = func(time.Duration) {}
	service.SetTakeoverDelay(time.Hour)
	t.Cleanup(service.Stop)
	return service, repo, pub
}

func startSession(t *testing.T, service *Service, sessionID, mode string) StartResult {
	t.Helper()
	result, err := service.StartSession(context.Background(), StartParams{
		SessionID: sessionID,
		EntryMode: mode,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return result
}

func submit(t *testing.T, service *Service, sessionID, text string) MessageResult {
	t.Helper()
	result, err := service.SubmitVisitorInput(context.Background(), MessageParams{
		SessionID: sessionID,
		Content:   text,
	})
	if err != nil {
		t.Fatalf("SubmitVisitorInput(%q): %v", text, err)
	}
	return result
}

func errorCode(t *testing.T, err error) ErrorCode {
	t.Helper()
	var serviceErr *Error
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	return serviceErr.Code
}

func TestStartSessionPostsGreeting(t *testing.T) {
	service, repo, pub := newTestService(t)

	result := startSession(t, service, "s-1", "standard")

	if result.Resumed {
		t.Fatal("fresh session reported as resumed")
	}
	if result.Session.CurrentState != "GREETING" {
		t.Fatalf("current state = %s, want GREETING", result.Session.CurrentState)
	}
	if result.Session.Status != model.SessionStatusAutomated {
		t.Fatalf("status = %s, want automated", result.Session.Status)
	}
	if len(result.Turns) != 1 || result.Turns[0].Sender != model.SenderAutomation {
		t.Fatalf("expected one automation turn, got %+v", result.Turns)
	}
	if len(repo.turns) != 1 {
		t.Fatalf("stored %d turns, want 1", len(repo.turns))
	}
	if len(pub.turns) != 1 {
		t.Fatalf("published %d turn events, want 1", len(pub.turns))
	}
	if len(pub.console) != 1 {
		t.Fatalf("published %d console events, want 1", len(pub.console))
	}
}

func TestStartSessionIsIdempotent(t *testing.T) {
	service, repo, _ := newTestService(t)

	startSession(t, service, "s-1", "standard")
	result := startSession(t, service, "s-1", "standard")

	if !result.Resumed {
		t.Fatal("second start did not report resumed")
	}
	if len(repo.turns) != 1 {
		t.Fatalf("re-initialising duplicated the greeting: %d turns", len(repo.turns))
	}
	if len(result.Turns) != 1 {
		t.Fatalf("resume returned %d turns, want the existing transcript", len(result.Turns))
	}
}

func TestStartSessionRejectsUnknownEntryMode(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.StartSession(context.Background(), StartParams{EntryMode: "teleport"})
	if err == nil {
		t.Fatal("expected error for unknown entry mode")
	}
	if code := errorCode(t, err); code != ErrorCodeValidation {
		t.Fatalf("error code = %s, want %s", code, ErrorCodeValidation)
	}
}

func TestQualificationFlowEscalatesHighScore(t *testing.T) {
	service, repo, _ := newTestService(t)
	startSession(t, service, "s-1", "standard")

	submit(t, service, "s-1", "Jane Doe")
	submit(t, service, "s-1", "(555) 123-4567")
	submit(t, service, "s-1", "today")
	submit(t, service, "s-1", "yes")  // injured
	submit(t, service, "s-1", "8")    // pain level
	submit(t, service, "s-1", "no")   // hospitalized
	submit(t, service, "s-1", "other driver")
	submit(t, service, "s-1", "yes") // other insurance
	submit(t, service, "s-1", "no")  // representation
	submit(t, service, "s-1", "whiplash")
	submit(t, service, "s-1", "rear-ended at a stoplight")
	result := submit(t, service, "s-1", "no") // evidence offer

	if result.Session.CurrentState != "CONNECTING" {
		t.Fatalf("current state = %s, want CONNECTING", result.Session.CurrentState)
	}
	if len(repo.leads) != 1 {
		t.Fatalf("stored %d leads, want 1", len(repo.leads))
	}
	lead := repo.leads[0]
	if lead.Score != 95 {
		t.Fatalf("lead score = %d, want 95", lead.Score)
	}
	if lead.Routing != "escalate" {
		t.Fatalf("lead routing = %s, want escalate", lead.Routing)
	}
	if lead.Answers[model.AnswerFullName] != "Jane Doe" {
		t.Fatalf("lead answers missing name: %+v", lead.Answers)
	}
	if !service.takeovers.Pending("s-1") {
		t.Fatal("busy-fallback timer not armed after escalation")
	}
}

func TestValidationFailureDoesNotAdvance(t *testing.T) {
	service, _, _ := newTestService(t)
	startSession(t, service, "s-1", "standard")
	submit(t, service, "s-1", "Jane Doe")

	result := submit(t, service, "s-1", "call me maybe")

	if result.Session.CurrentState != "PHONE" {
		t.Fatalf("state advanced past PHONE on invalid contact: %s", result.Session.CurrentState)
	}
	wantErr := locale.ForLanguage(locale.LangEnglish).Text(locale.ErrContact)
	if len(result.Replies) != 1 || result.Replies[0].Content != wantErr {
		t.Fatalf("replies = %+v, want the contact validation message", result.Replies)
	}
	if result.VisitorTurn.Content != "call me maybe" {
		t.Fatalf("visitor turn not recorded: %+v", result.VisitorTurn)
	}
}

func TestLiveSessionSilencesAutomation(t *testing.T) {
	service, repo, _ := newTestService(t)
	startSession(t, service, "s-1", "standard")

	session := repo.sessions["s-1"]
	session.Status = model.SessionStatusLive
	repo.sessions["s-1"] = session

	result := submit(t, service, "s-1", "are you there?")

	if len(result.Replies) != 0 {
		t.Fatalf("automation replied on a live session: %+v", result.Replies)
	}
	if result.VisitorTurn.Sender != model.SenderVisitor {
		t.Fatalf("visitor turn not recorded: %+v", result.VisitorTurn)
	}
	if got := repo.sessions["s-1"].CurrentState; got != "GREETING" {
		t.Fatalf("dialogue state moved while live: %s", got)
	}
}

func TestClosedSessionRejectsInput(t *testing.T) {
	service, repo, _ := newTestService(t)
	startSession(t, service, "s-1", "standard")

	session := repo.sessions["s-1"]
	session.Status = model.SessionStatusClosed
	repo.sessions["s-1"] = session

	_, err := service.SubmitVisitorInput(context.Background(), MessageParams{SessionID: "s-1", Content: "hello"})
	if code := errorCode(t, err); code != ErrorCodeConflict {
		t.Fatalf("error code = %s, want %s", code, ErrorCodeConflict)
	}
}

func TestConcurrentSubmissionRejected(t *testing.T) {
	service, _, _ := newTestService(t)
	startSession(t, service, "s-1", "standard")

	if !service.beginTurn("s-1") {
		t.Fatal("could not acquire the in-flight slot")
	}
	defer service.endTurn("s-1")

	_, err := service.SubmitVisitorInput(context.Background(), MessageParams{SessionID: "s-1", Content: "Jane"})
	if code := errorCode(t, err); code != ErrorCodeBusy {
		t.Fatalf("error code = %s, want %s", code, ErrorCodeBusy)
	}
}

func TestStatusEventCancelsTakeoverTimer(t *testing.T) {
	service, _, _ := newTestService(t)

	service.takeovers.Arm("s-1", func() { t.Error("timer fired despite cancellation") })

	service.HandleStatusEvent(transcript.StatusEvent{
		Type:      transcript.EventStatusChanged,
		SessionID: "s-1",
		Status:    model.SessionStatusLive,
	})

	if service.takeovers.Pending("s-1") {
		t.Fatal("takeover timer still pending after live status event")
	}
}

func TestBusyFallbackOffersCallback(t *testing.T) {
	service, repo, _ := newTestService(t)
	startSession(t, service, "s-1", "standard")

	session := repo.sessions["s-1"]
	session.CurrentState = "CONNECTING"
	repo.sessions["s-1"] = session

	service.busyFallback("s-1")

	turns, _ := repo.ListTurns(context.Background(), "s-1")
	last := turns[len(turns)-1]
	want := locale.ForLanguage(locale.LangEnglish).Text(locale.PromptBusyFallback)
	if last.Content != want {
		t.Fatalf("last turn = %q, want busy-fallback prompt", last.Content)
	}
	if got := repo.sessions["s-1"].CurrentState; got != "SCHEDULE_CONTACT" {
		t.Fatalf("state = %s, want SCHEDULE_CONTACT", got)
	}
}

func TestBusyFallbackSkipsLiveSession(t *testing.T) {
	service, repo, _ := newTestService(t)
	startSession(t, service, "s-1", "standard")

	session := repo.sessions["s-1"]
	session.Status = model.SessionStatusLive
	session.CurrentState = "CONNECTING"
	repo.sessions["s-1"] = session

	before := len(repo.turns)
	service.busyFallback("s-1")

	if len(repo.turns) != before {
		t.Fatal("busy fallback posted into a live session")
	}
}

func TestDelayedFallbackReissuesOffer(t *testing.T) {
	service, repo, _ := newTestService(t)

	var fire func()
	service.schedule = func(_ time.Duration, fn func()) { fire = fn }

	startSession(t, service, "s-1", "standard")
	session := repo.sessions["s-1"]
	session.CurrentState = "FALLBACK_OFFER"
	repo.sessions["s-1"] = session

	service.scheduleFallback("s-1")
	if fire == nil {
		t.Fatal("fallback was never scheduled")
	}
	fire()

	turns, _ := repo.ListTurns(context.Background(), "s-1")
	last := turns[len(turns)-1]
	want := locale.ForLanguage(locale.LangEnglish).Text(locale.PromptFallbackOffer)
	if last.Content != want {
		t.Fatalf("last turn = %q, want fallback offer", last.Content)
	}
}

func TestDelayedFallbackSkipsMovedSession(t *testing.T) {
	service, repo, _ := newTestService(t)

	var fire func()
	service.schedule = func(_ time.Duration, fn func()) { fire = fn }

	startSession(t, service, "s-1", "standard")
	service.scheduleFallback("s-1")

	// The visitor kept going; the session is no longer parked on the packet.
	before := len(repo.turns)
	fire()

	if len(repo.turns) != before {
		t.Fatal("delayed fallback posted despite the session moving on")
	}
}

func TestAlreadyRepresentedDisqualifies(t *testing.T) {
	service, repo, pub := newTestService(t)
	startSession(t, service, "s-1", "standard")

	submit(t, service, "s-1", "Jane Doe")
	submit(t, service, "s-1", "(555) 123-4567")
	submit(t, service, "s-1", "today")
	submit(t, service, "s-1", "no") // injured, skips straight to fault
	submit(t, service, "s-1", "other driver")
	submit(t, service, "s-1", "no")  // other insurance
	submit(t, service, "s-1", "yes") // has attorney
	result := submit(t, service, "s-1", "no") // not seeking change

	if result.Session.Status != model.SessionStatusClosed {
		t.Fatalf("status = %s, want closed", result.Session.Status)
	}
	if result.Session.ClosedReason != model.CloseReasonAlreadyRepresented {
		t.Fatalf("closed reason = %s, want %s", result.Session.ClosedReason, model.CloseReasonAlreadyRepresented)
	}
	if len(repo.leads) != 1 || repo.leads[0].Score != 0 {
		t.Fatalf("disqualified lead not recorded with score 0: %+v", repo.leads)
	}
	if len(pub.statuses) == 0 {
		t.Fatal("no status event published for the close")
	}
}

func TestUploadFailureKeepsState(t *testing.T) {
	service, _, _ := newTestService(t)
	startSession(t, service, "s-1", "at_scene")
	submit(t, service, "s-1", "yes") // scene is safe

	result, err := service.SubmitVisitorInput(context.Background(), MessageParams{
		SessionID:   "s-1",
		UploadError: true,
	})
	if err != nil {
		t.Fatalf("SubmitVisitorInput: %v", err)
	}

	if result.Session.CurrentState != "SCENE_PLATES" {
		t.Fatalf("state = %s, want SCENE_PLATES", result.Session.CurrentState)
	}
	if result.VisitorTurn.Content != "[upload failed]" {
		t.Fatalf("visitor turn = %q, want upload-failed marker", result.VisitorTurn.Content)
	}
	want := locale.ForLanguage(locale.LangEnglish).Text(locale.PromptSceneUploadFail)
	if len(result.Replies) != 1 || result.Replies[0].Content != want {
		t.Fatalf("replies = %+v, want the retry prompt", result.Replies)
	}
}

func TestUploadAdvancesEvidenceState(t *testing.T) {
	service, repo, _ := newTestService(t)
	startSession(t, service, "s-1", "at_scene")
	submit(t, service, "s-1", "yes")

	result, err := service.SubmitVisitorInput(context.Background(), MessageParams{
		SessionID: "s-1",
		UploadURL: "https://evidence.example.com/plates.jpg",
	})
	if err != nil {
		t.Fatalf("SubmitVisitorInput: %v", err)
	}

	if result.Session.CurrentState != "SCENE_PHOTO" {
		t.Fatalf("state = %s, want SCENE_PHOTO", result.Session.CurrentState)
	}
	got := repo.sessions["s-1"].Answers[model.AnswerEvidencePlates]
	if got != "https://evidence.example.com/plates.jpg" {
		t.Fatalf("evidence answer = %q, want the upload URL", got)
	}
}

func TestTranscriptOrdersTurns(t *testing.T) {
	service, _, _ := newTestService(t)
	startSession(t, service, "s-1", "standard")
	submit(t, service, "s-1", "Jane Doe")

	result, err := service.Transcript(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(result.Turns) < 3 {
		t.Fatalf("transcript has %d turns, want greeting + visitor + prompt", len(result.Turns))
	}
	for i := 1; i < len(result.Turns); i++ {
		if result.Turns[i].CreatedAt < result.Turns[i-1].CreatedAt {
			t.Fatalf("transcript out of order at %d: %+v", i, result.Turns)
		}
	}
	if result.Turns[0].Sender != model.SenderAutomation {
		t.Fatalf("first turn sender = %s, want automation", result.Turns[0].Sender)
	}
}

func TestTranscriptUnknownSession(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Transcript(context.Background(), "missing")
	if code := errorCode(t, err); code != ErrorCodeNotFound {
		t.Fatalf("error code = %s, want %s", code, ErrorCodeNotFound)
	}
}
