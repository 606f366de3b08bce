package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"lead-intake-backend/internal/env"
	"lead-intake-backend/internal/transcript"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
)

var (
	upgrader    websocket.Upgrader
	redisClient *redis.Client
)

func init() {
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	redisClient = redis.NewClient(&redis.Options{
		Addr:     env.Get(env.ChatRedisURL),
		Password: env.Get(env.ChatRedisPass),
		DB:       0,
	})
}

// StatusCallback is invoked for every status transition observed on a
// session's status channel, before the event is fanned out to the room. The
// intake server uses it to cancel pending busy-fallback timers when an
// operator answers from another process.
type StatusCallback func(event transcript.StatusEvent)

type Handler struct {
	hub         *Hub
	redisClient *redis.Client
	onStatus    StatusCallback
}

func NewHandler(h *Hub, onStatus StatusCallback) *Handler {
	return &Handler{
		hub:         h,
		redisClient: redisClient,
		onStatus:    onStatus,
	}
}

func (h *Handler) subscribeToChannel(channel string) {
	if _, exists := h.hub.Rooms[channel]; !exists {
		log.Printf("Room %s not found for subscription", channel)
		return
	}

	subscriber := h.redisClient.Subscribe(context.Background(), channel)
	defer subscriber.Close()

	ch := subscriber.Channel()
	for msg := range ch {
		h.hub.Broadcast <- &WSMessage{
			Content:   msg.Payload,
			SessionID: channel,
			Timestamp: time.Now().Unix(),
		}
	}
	log.Printf("Unsubscribed from Redis channel: %s", channel)
}

func (h *Handler) subscribeToStatusChannel(sessionID string) {
	subscriber := h.redisClient.Subscribe(context.Background(), transcript.StatusChannel(sessionID))
	defer subscriber.Close()

	room := transcript.SessionChannel(sessionID)
	ch := subscriber.Channel()
	for msg := range ch {
		var event transcript.StatusEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("Invalid status payload for session %s: %v", sessionID, err)
			continue
		}
		if h.onStatus != nil {
			h.onStatus(event)
		}
		// Status transitions are also rendered inline by observers.
		h.hub.Broadcast <- &WSMessage{
			Content:   msg.Payload,
			SessionID: room,
			Timestamp: time.Now().Unix(),
		}
	}
}

// CreateSessionRoom registers the room for a session and starts its Redis
// subscriptions (turn feed plus status feed). Safe to call repeatedly.
func (h *Handler) CreateSessionRoom(sessionID string) {
	room := transcript.SessionChannel(sessionID)
	if _, exists := h.hub.Rooms[room]; exists {
		return
	}

	h.hub.Rooms[room] = &Room{
		Id:      room,
		Clients: make(map[string]*WSClient),
	}
	setSessions(len(h.hub.Rooms))

	go h.subscribeToChannel(room)
	go h.subscribeToStatusChannel(sessionID)
}

// CreateFeedRoom registers the console-wide session feed room.
func (h *Handler) CreateFeedRoom() {
	feed := transcript.ConsoleChannel()
	if _, exists := h.hub.Rooms[feed]; exists {
		return
	}

	h.hub.Rooms[feed] = &Room{
		Id:      feed,
		Clients: make(map[string]*WSClient),
	}
	setSessions(len(h.hub.Rooms))

	go h.subscribeToChannel(feed)
}

// JoinSession upgrades the request and attaches the client to a session room.
func (h *Handler) JoinSession(w http.ResponseWriter, r *http.Request, sessionID, clientID string) {
	h.joinRoom(w, r, transcript.SessionChannel(sessionID), clientID)
}

// JoinConsoleFeed attaches an operator client to the console-wide feed.
func (h *Handler) JoinConsoleFeed(w http.ResponseWriter, r *http.Request, operatorID string) {
	h.joinRoom(w, r, transcript.ConsoleChannel(), operatorID)
}

func (h *Handler) joinRoom(w http.ResponseWriter, r *http.Request, roomID, clientID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if conn == nil {
		http.Error(w, "Error conn", http.StatusBadRequest)
		return
	}

	cl := &WSClient{
		Conn:      conn,
		Message:   make(chan *WSMessage, 10),
		ID:        clientID,
		SessionID: roomID,
		done:      make(chan struct{}),
		isClosed:  false,
	}

	h.hub.Register <- cl

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h.hub)
}
