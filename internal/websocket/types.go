package websocket

// Room fans one session's events out to its current observers: the visitor
// client plus any console slots viewing the session.
type Room struct {
	Id      string               `json:"id"`
	Clients map[string]*WSClient `json:"clients"`
}

type WSMessage struct {
	Content   string `json:"content"`
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
}

type RoomRes struct {
	ID string `json:"id"`
}
