package console

import "lead-intake-backend/internal/model"

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeNotFound     ErrorCode = "not_found"
	ErrorCodeConflict     ErrorCode = "conflict"
	ErrorCodeInternal     ErrorCode = "internal_error"
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

// Identity is the operator carried inside console access tokens.
type Identity struct {
	OperatorID string
	Email      string
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer abstracts token issuance so the service can be exercised
// without a signing secret or Redis. The production issuer wraps the jwt
// package.
type TokenIssuer interface {
	Issue(identity Identity) (Tokens, error)
	Consume(refreshToken string) (Identity, error)
	Parse(accessToken string) (Identity, error)
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	Tokens   Tokens
	Operator model.OperatorItem
}

type CreateOperatorParams struct {
	Email    string
	Name     string
	Password string
}

type TranscriptResult struct {
	Session model.SessionItem
	Turns   []model.TurnItem
}

type CannedResponseParams struct {
	Trigger string
	Body    string
}
