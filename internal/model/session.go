package model

type SessionStatus string

const (
	SessionStatusAutomated SessionStatus = "automated"
	SessionStatusLive      SessionStatus = "live"
	SessionStatusClosed    SessionStatus = "closed"
)

// ValidStatusTransition reports whether a session may move between the two
// statuses. Sessions only ever move forward: automated -> live -> closed or
// automated -> closed. A live session never drops back to automated.
func ValidStatusTransition(from, to SessionStatus) bool {
	switch from {
	case SessionStatusAutomated:
		return to == SessionStatusLive || to == SessionStatusClosed
	case SessionStatusLive:
		return to == SessionStatusClosed
	default:
		return false
	}
}

type TurnSender string

const (
	SenderVisitor    TurnSender = "visitor"
	SenderAutomation TurnSender = "automation"
	SenderOperator   TurnSender = "operator"
)

const (
	CloseReasonResolved           = "resolved"
	CloseReasonSpam               = "spam"
	CloseReasonAlreadyRepresented = "already_represented"
)

type SessionItem struct {
	SessionID    string            `dynamodbav:"sessionId"`
	Status       SessionStatus     `dynamodbav:"status"`
	Language     string            `dynamodbav:"language"`
	EntryMode    string            `dynamodbav:"entryMode"`
	CurrentState string            `dynamodbav:"currentState"`
	Answers      map[string]string `dynamodbav:"answers,omitempty"`
	ClosedReason string            `dynamodbav:"closedReason,omitempty"`
	CreatedAt    string            `dynamodbav:"createdAt"`
	UpdatedAt    string            `dynamodbav:"updatedAt"`
}

type TurnItem struct {
	PK        string     `dynamodbav:"pk"`
	SessionID string     `dynamodbav:"sessionId"`
	TurnID    string     `dynamodbav:"turnId"`
	Sender    TurnSender `dynamodbav:"sender"`
	Content   string     `dynamodbav:"content"`
	CreatedAt string     `dynamodbav:"createdAt"`
}

type LeadItem struct {
	LeadID    string            `dynamodbav:"leadId"`
	SessionID string            `dynamodbav:"sessionId"`
	Answers   map[string]string `dynamodbav:"answers,omitempty"`
	Score     int               `dynamodbav:"score"`
	Routing   string            `dynamodbav:"routing"`
	CreatedAt string            `dynamodbav:"createdAt"`
}

type CannedResponseItem struct {
	ResponseID string `dynamodbav:"responseId"`
	Trigger    string `dynamodbav:"trigger"`
	Body       string `dynamodbav:"body"`
	CreatedAt  string `dynamodbav:"createdAt"`
}

type OperatorItem struct {
	OperatorID   string `dynamodbav:"operatorId"`
	Email        string `dynamodbav:"email"`
	Name         string `dynamodbav:"name"`
	PasswordHash string `dynamodbav:"passwordHash"`
	CreatedAt    string `dynamodbav:"createdAt"`
}
