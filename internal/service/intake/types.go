package intake

import (
	"lead-intake-backend/internal/flow"
	"lead-intake-backend/internal/model"
)

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeNotFound   ErrorCode = "not_found"
	ErrorCodeConflict   ErrorCode = "conflict"
	ErrorCodeBusy       ErrorCode = "busy"
	ErrorCodeInternal   ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

type StartParams struct {
	SessionID string
	EntryMode string
	Language  string
}

type StartResult struct {
	Session model.SessionItem
	Turns   []model.TurnItem
	Options []flow.Option
	Resumed bool
}

// MessageParams carries one visitor submission: free text, or the outcome of
// an evidence upload.
type MessageParams struct {
	SessionID   string
	Content     string
	UploadURL   string
	UploadError bool
}

type MessageResult struct {
	Session     model.SessionItem
	VisitorTurn model.TurnItem
	Replies     []model.TurnItem
	Options     []flow.Option
}

type TranscriptResult struct {
	Session model.SessionItem
	Turns   []model.TurnItem
}
