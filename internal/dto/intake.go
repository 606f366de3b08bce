package dto

// Visitor-facing request and response payloads.

type StartSessionRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	EntryMode string `json:"entryMode,omitempty"`
	Language  string `json:"language,omitempty"`
}

type PostVisitorMessageRequest struct {
	Content string `json:"content"`
}

type OptionResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type TurnResponse struct {
	TurnID    string           `json:"turnId"`
	Sender    string           `json:"sender"`
	Content   string           `json:"content"`
	Options   []OptionResponse `json:"options,omitempty"`
	CreatedAt string           `json:"createdAt"`
}

type SessionResponse struct {
	SessionID    string `json:"sessionId"`
	Status       string `json:"status"`
	Language     string `json:"language"`
	EntryMode    string `json:"entryMode"`
	CurrentState string `json:"currentState"`
	ClosedReason string `json:"closedReason,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

type StartSessionResponse struct {
	Session SessionResponse `json:"session"`
	Turns   []TurnResponse  `json:"turns"`
	Resumed bool            `json:"resumed"`
}

type PostMessageResponse struct {
	Session SessionResponse  `json:"session"`
	Turns   []TurnResponse   `json:"turns"`
	Options []OptionResponse `json:"options,omitempty"`
}

type TranscriptResponse struct {
	Session SessionResponse `json:"session"`
	Turns   []TurnResponse  `json:"turns"`
}

type UploadResponse struct {
	URL     string              `json:"url"`
	Result  PostMessageResponse `json:"result"`
	Failed  bool                `json:"failed,omitempty"`
	Message string              `json:"message,omitempty"`
}
