// Package transcript defines the wire events and Redis channel names that
// carry a session's dialogue between processes. The intake server, the
// console server, and every websocket observer all speak these payloads.
package transcript

import (
	"fmt"

	"lead-intake-backend/internal/model"
)

type EventType string

const (
	EventTurnCreated   EventType = "turn.created"
	EventStatusChanged EventType = "session.status"
	EventSessionOpened EventType = "session.opened"
)

// TurnEvent announces one appended Turn to all observers of a session.
type TurnEvent struct {
	Type      EventType        `json:"type"`
	SessionID string           `json:"sessionId"`
	TurnID    string           `json:"turnId"`
	Sender    model.TurnSender `json:"sender"`
	Content   string           `json:"content"`
	Options   interface{}      `json:"options,omitempty"`
	CreatedAt string           `json:"createdAt"`
}

// StatusEvent announces a session status transition.
type StatusEvent struct {
	Type      EventType           `json:"type"`
	SessionID string              `json:"sessionId"`
	Status    model.SessionStatus `json:"status"`
	Reason    string              `json:"reason,omitempty"`
	ChangedAt string              `json:"changedAt"`
}

// SessionChannel is the per-session room carrying turn events.
func SessionChannel(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// StatusChannel carries status transitions for one session. The intake
// server listens here to cancel busy-fallback timers when an operator
// answers from another process.
func StatusChannel(sessionID string) string {
	return fmt.Sprintf("session:%s:status", sessionID)
}

// ConsoleChannel is the console-wide feed of new and escalated sessions.
func ConsoleChannel() string {
	return "console:sessions"
}
