package dto

// Operator console request and response payloads.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type OperatorResponse struct {
	OperatorID string `json:"operatorId"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
}

type AuthResponse struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken,omitempty"`
	Operator     OperatorResponse `json:"operator"`
}

type CreateOperatorRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type PostOperatorTurnRequest struct {
	Content string `json:"content"`
}

type CloseSessionRequest struct {
	Reason string `json:"reason"`
}

type CannedResponseRequest struct {
	Trigger string `json:"trigger"`
	Body    string `json:"body"`
}

type CannedResponseResponse struct {
	ResponseID string `json:"responseId"`
	Trigger    string `json:"trigger"`
	Body       string `json:"body"`
}

type CannedResponseListResponse struct {
	Responses []CannedResponseResponse `json:"responses"`
}
