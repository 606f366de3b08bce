package intake

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"lead-intake-backend/internal/database"
	"lead-intake-backend/internal/flow"
	"lead-intake-backend/internal/locale"
	"lead-intake-backend/internal/model"
	"lead-intake-backend/internal/notify"
	"lead-intake-backend/internal/takeover"
	"lead-intake-backend/internal/transcript"

	"github.com/google/uuid"
)

// Publisher fans transcript events out to websocket observers. The production
// implementation publishes through Redis; tests substitute a recorder.
type Publisher interface {
	PublishTurn(event transcript.TurnEvent) error
	PublishStatus(event transcript.StatusEvent) error
	PublishConsole(payload interface{}) error
}

const (
	// DefaultThinkingDelay is the pause before automated replies, so the
	// automation reads as a person typing rather than an instant wall of text.
	DefaultThinkingDelay = 900 * time.Millisecond

	// DefaultFallbackDelay is how long after the informational packet the
	// live-chat/schedule offer is posted.
	DefaultFallbackDelay = 45 * time.Second
)

type Service struct {
	repo     Repository
	pub      Publisher
	notifier *notify.Notifier

	takeovers *takeover.Coordinator
	now       func() time.Time
	sleep     func(time.Duration)
	schedule  func(time.Duration, func())

	thinkingDelay time.Duration
	fallbackDelay time.Duration

	turnSeq uint64
	turnTag string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func New(db *database.Database, pub Publisher, notifier *notify.Notifier) *Service {
	return NewWithRepository(NewDynamoRepository(db), pub, notifier, time.Now)
}

func NewWithRepository(repo Repository, pub Publisher, notifier *notify.Notifier, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:          repo,
		pub:           pub,
		notifier:      notifier,
		takeovers:     takeover.New(takeover.DefaultDelay),
		now:           now,
		sleep:         time.Sleep,
		schedule:      func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		thinkingDelay: DefaultThinkingDelay,
		fallbackDelay: DefaultFallbackDelay,
		turnTag:       uuid.NewString()[:8],
		inFlight:      make(map[string]struct{}),
	}
}

// SetTakeoverDelay replaces the busy-fallback delay. Must be called before
// the first session escalates.
func (s *Service) SetTakeoverDelay(d time.Duration) {
	s.takeovers = takeover.New(d)
}

// StartSession initialises a session for the given entry mode and posts its
// opening prompt. Re-initialising an existing session is idempotent: the
// current session and transcript come back with no duplicate greeting.
func (s *Service) StartSession(ctx context.Context, params StartParams) (StartResult, error) {
	sessionID := strings.TrimSpace(params.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	mode := flow.EntryMode(strings.TrimSpace(params.EntryMode))
	if mode == "" {
		mode = flow.EntryStandard
	}

	lang := normalizeLanguage(params.Language)

	startState, ok := flow.StartState(mode)
	if !ok {
		return StartResult{}, newError(ErrorCodeValidation, "unknown entry mode", fmt.Errorf("entry mode %q", params.EntryMode))
	}

	nowStr := s.timestamp()
	session := model.SessionItem{
		SessionID:    sessionID,
		Status:       model.SessionStatusAutomated,
		Language:     lang,
		EntryMode:    string(mode),
		CurrentState: string(startState),
		Answers:      map[string]string{},
		CreatedAt:    nowStr,
		UpdatedAt:    nowStr,
	}

	created, err := s.repo.CreateSessionIfAbsent(ctx, session)
	if err != nil {
		return StartResult{}, newError(ErrorCodeInternal, "failed to create session", err)
	}

	if !created {
		existing, err := s.repo.GetSession(ctx, sessionID)
		if err != nil {
			return StartResult{}, newError(ErrorCodeInternal, "failed to load session", err)
		}
		turns, err := s.repo.ListTurns(ctx, sessionID)
		if err != nil {
			return StartResult{}, newError(ErrorCodeInternal, "failed to load transcript", err)
		}
		_, options := flow.Prompt(flow.State(existing.CurrentState), existing.Language, existing.Answers)
		return StartResult{Session: existing, Turns: turns, Options: options, Resumed: true}, nil
	}

	res, _ := flow.Enter(mode, lang)
	session.CurrentState = string(res.Next)

	turns := s.postAutomationReplies(ctx, &session, res.Replies, res.Options)
	s.runEffects(ctx, &session, res.Effects)

	observeSessionStarted(string(mode))
	s.notifier.Send(notify.EventSessionStarted, sessionID, map[string]string{
		"entryMode": string(mode),
		"language":  lang,
	})
	s.publishConsole(transcript.StatusEvent{
		Type:      transcript.EventSessionOpened,
		SessionID: sessionID,
		Status:    session.Status,
		ChangedAt: nowStr,
	})

	return StartResult{Session: session, Turns: turns, Options: res.Options}, nil
}

// SubmitVisitorInput records one visitor submission and, while the session is
// automated, advances the dialogue. A session already processing a submission
// rejects the new one; the client retries once the pending reply lands.
func (s *Service) SubmitVisitorInput(ctx context.Context, params MessageParams) (MessageResult, error) {
	sessionID := strings.TrimSpace(params.SessionID)
	if sessionID == "" {
		return MessageResult{}, newError(ErrorCodeValidation, "sessionId is required", nil)
	}
	content := strings.TrimSpace(params.Content)
	if content == "" && params.UploadURL == "" && !params.UploadError {
		return MessageResult{}, newError(ErrorCodeValidation, "message content is required", nil)
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return MessageResult{}, newError(ErrorCodeNotFound, "session not found", err)
		}
		return MessageResult{}, newError(ErrorCodeInternal, "failed to load session", err)
	}

	if session.Status == model.SessionStatusClosed {
		return MessageResult{}, newError(ErrorCodeConflict, "session is closed", nil)
	}

	if !s.beginTurn(sessionID) {
		return MessageResult{}, newError(ErrorCodeBusy, "a previous message is still being processed", nil)
	}
	defer s.endTurn(sessionID)

	visitorTurn := s.appendTurn(ctx, sessionID, model.SenderVisitor, visitorContent(params), nil)

	if session.Status == model.SessionStatusLive {
		// An operator owns the dialogue; automation stays silent.
		return MessageResult{Session: session, VisitorTurn: visitorTurn}, nil
	}

	res := flow.Advance(
		flow.State(session.CurrentState),
		flow.Input{Text: params.Content, UploadURL: params.UploadURL, UploadError: params.UploadError},
		session.Answers,
		session.Language,
	)

	session.CurrentState = string(res.Next)
	session.Answers = res.Answers

	if len(res.Replies) > 0 {
		s.sleep(s.thinkingDelay)
	}
	replies := s.postAutomationReplies(ctx, &session, res.Replies, res.Options)

	s.runEffects(ctx, &session, res.Effects)
	s.saveSession(ctx, &session)

	return MessageResult{
		Session:     session,
		VisitorTurn: visitorTurn,
		Replies:     replies,
		Options:     res.Options,
	}, nil
}

// Transcript returns the session and its full ordered transcript.
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

// HandleStatusEvent reacts to status transitions observed on the Redis status
// channel. When an operator in another process takes a session live (or an
// operator closes it), any pending busy-fallback timer is cancelled.
func (s *Service) HandleStatusEvent(event transcript.StatusEvent) {
	switch event.Status {
	case model.SessionStatusLive, model.SessionStatusClosed:
		s.takeovers.Cancel(event.SessionID)
	}
}

// Stop cancels all pending timers. Used on server teardown.
func (s *Service) Stop() {
	s.takeovers.Stop()
}

func (s *Service) runEffects(ctx context.Context, session *model.SessionItem, effects []flow.Effect) {
	for _, effect := range effects {
		switch effect.Kind {
		case flow.EffectSwitchLanguage:
			session.Language = effect.Target
		case flow.EffectNotify:
			s.notifier.Send(effect.Event, session.SessionID, nil)
		case flow.EffectSubmitLead:
			s.submitLead(ctx, session, effect)
		case flow.EffectEscalate:
			s.escalate(session)
		case flow.EffectDelayedFallback:
			s.scheduleFallback(session.SessionID)
		case flow.EffectClose:
			s.closeSession(session, effect.Target)
		}
	}
}

func (s *Service) submitLead(ctx context.Context, session *model.SessionItem, effect flow.Effect) {
	lead := model.LeadItem{
		LeadID:    uuid.NewString(),
		SessionID: session.SessionID,
		Answers:   session.Answers,
		Score:     effect.Score,
		Routing:   string(effect.Decision),
		CreatedAt: s.timestamp(),
	}
	if err := s.repo.CreateLead(ctx, lead); err != nil {
		// The conversation carries on; the transcript still holds everything.
		log.Printf("intake: store lead for session %s: %v", session.SessionID, err)
	}
	observeLeadScore(effect.Score)

	s.notifier.Send(notify.EventLeadSubmitted, session.SessionID, map[string]string{
		"score":   strconv.Itoa(effect.Score),
		"routing": string(effect.Decision),
	})
}

// escalate announces the session on the console feed and arms the
// busy-fallback timer. If no operator takes over before it fires, the visitor
// is offered a callback path instead of an open-ended wait.
func (s *Service) escalate(session *model.SessionItem) {
	observeEscalation()
	s.notifier.Send(notify.EventEscalation, session.SessionID, nil)
	s.publishConsole(transcript.StatusEvent{
		Type:      transcript.EventStatusChanged,
		SessionID: session.SessionID,
		Status:    session.Status,
		Reason:    "escalated",
		ChangedAt: s.timestamp(),
	})

	sessionID := session.SessionID
	s.takeovers.Arm(sessionID, func() {
		s.busyFallback(sessionID)
	})
}

func (s *Service) busyFallback(sessionID string) {
	ctx := context.Background()
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		log.Printf("intake: busy fallback load session %s: %v", sessionID, err)
		return
	}
	if session.Status != model.SessionStatusAutomated {
		return
	}

	prompt := locale.ForLanguage(session.Language).Text(locale.PromptBusyFallback)
	s.appendTurn(ctx, sessionID, model.SenderAutomation, prompt, nil)

	// The next visitor message is treated as contact details for a callback.
	session.CurrentState = string(flow.StateScheduleContact)
	s.saveSession(ctx, &session)
}

func (s *Service) scheduleFallback(sessionID string) {
	s.schedule(s.fallbackDelay, func() {
		ctx := context.Background()
		session, err := s.repo.GetSession(ctx, sessionID)
		if err != nil {
			log.Printf("intake: delayed fallback load session %s: %v", sessionID, err)
			return
		}
		// Only fire if the visitor is still parked on the packet.
		if session.Status != model.SessionStatusAutomated ||
			session.CurrentState != string(flow.StateFallbackOffer) {
			return
		}

		prompt, options := flow.Prompt(flow.StateFallbackOffer, session.Language, session.Answers)
		s.appendTurn(ctx, sessionID, model.SenderAutomation, prompt, options)
	})
}

func (s *Service) closeSession(session *model.SessionItem, reason string) {
	if !model.ValidStatusTransition(session.Status, model.SessionStatusClosed) {
		return
	}
	session.Status = model.SessionStatusClosed
	session.ClosedReason = reason
	s.takeovers.Cancel(session.SessionID)

	if err := s.pub.PublishStatus(transcript.StatusEvent{
		Type:      transcript.EventStatusChanged,
		SessionID: session.SessionID,
		Status:    model.SessionStatusClosed,
		Reason:    reason,
		ChangedAt: s.timestamp(),
	}); err != nil {
		log.Printf("intake: publish close for session %s: %v", session.SessionID, err)
	}
	s.notifier.Send(notify.EventSessionClosed, session.SessionID, map[string]string{"reason": reason})
}

func (s *Service) postAutomationReplies(ctx context.Context, session *model.SessionItem, replies []string, options []flow.Option) []model.TurnItem {
	turns := make([]model.TurnItem, 0, len(replies))
	for i, reply := range replies {
		// Quick replies ride on the final automated message only.
		var opts []flow.Option
		if i == len(replies)-1 {
			opts = options
		}
		turns = append(turns, s.appendTurn(ctx, session.SessionID, model.SenderAutomation, reply, opts))
	}
	return turns
}

func (s *Service) appendTurn(ctx context.Context, sessionID string, sender model.TurnSender, content string, options []flow.Option) model.TurnItem {
	turnID := s.nextTurnID()
	turn := model.TurnItem{
		PK:        model.TurnPK(sessionID, turnID),
		SessionID: sessionID,
		TurnID:    turnID,
		Sender:    sender,
		Content:   content,
		CreatedAt: s.timestamp(),
	}

	if err := s.repo.CreateTurn(ctx, turn); err != nil {
		log.Printf("intake: store turn for session %s: %v", sessionID, err)
	}

	event := transcript.TurnEvent{
		Type:      transcript.EventTurnCreated,
		SessionID: sessionID,
		TurnID:    turn.TurnID,
		Sender:    sender,
		Content:   content,
		CreatedAt: turn.CreatedAt,
	}
	if len(options) > 0 {
		event.Options = options
	}
	if err := s.pub.PublishTurn(event); err != nil {
		log.Printf("intake: publish turn for session %s: %v", sessionID, err)
	}

	return turn
}

func (s *Service) saveSession(ctx context.Context, session *model.SessionItem) {
	session.UpdatedAt = s.timestamp()
	if err := s.repo.UpdateSession(ctx, *session); err != nil {
		log.Printf("intake: save session %s: %v", session.SessionID, err)
	}
}

func (s *Service) publishConsole(payload interface{}) {
	if err := s.pub.PublishConsole(payload); err != nil {
		log.Printf("intake: publish console event: %v", err)
	}
}

func (s *Service) beginTurn(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *Service) endTurn(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}

// nextTurnID yields IDs that sort in creation order within this process; the
// per-process tag keeps turns from the console process from colliding on the
// same session.
func (s *Service) nextTurnID() string {
	return fmt.Sprintf("%016x-%s", atomic.AddUint64(&s.turnSeq, 1), s.turnTag)
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func visitorContent(params MessageParams) string {
	if params.UploadError {
		return "[upload failed]"
	}
	if params.UploadURL != "" {
		return params.UploadURL
	}
	return strings.TrimSpace(params.Content)
}

func normalizeLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case locale.LangSpanish:
		return locale.LangSpanish
	default:
		return locale.LangEnglish
	}
}
