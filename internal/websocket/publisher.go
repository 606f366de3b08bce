package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"lead-intake-backend/internal/transcript"
)

func Publish(channel string, payload interface{}) error {
	if channel == "" {
		return fmt.Errorf("websocket publish: channel required")
	}
	if redisClient == nil {
		return fmt.Errorf("websocket publish: redis client not initialised")
	}

	messageJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("websocket publish: marshal payload: %w", err)
	}

	if err := redisClient.Publish(context.Background(), channel, string(messageJSON)).Err(); err != nil {
		return fmt.Errorf("websocket publish: redis publish: %w", err)
	}
	return nil
}

// PublishTurn fans a new turn out to every observer of its session.
func PublishTurn(event transcript.TurnEvent) error {
	return Publish(transcript.SessionChannel(event.SessionID), event)
}

// PublishStatus announces a status transition on the session's status channel
// and on the console feed, so both the visitor-side process and the console
// see it.
func PublishStatus(event transcript.StatusEvent) error {
	if err := Publish(transcript.StatusChannel(event.SessionID), event); err != nil {
		return err
	}
	return Publish(transcript.ConsoleChannel(), event)
}

// PublishConsole pushes an event onto the console-wide session feed.
func PublishConsole(payload interface{}) error {
	return Publish(transcript.ConsoleChannel(), payload)
}

// RedisPublisher adapts the package-level publish functions to the service
// layers' Publisher interfaces.
type RedisPublisher struct{}

func (RedisPublisher) PublishTurn(event transcript.TurnEvent) error {
	return PublishTurn(event)
}

func (RedisPublisher) PublishStatus(event transcript.StatusEvent) error {
	return PublishStatus(event)
}

func (RedisPublisher) PublishConsole(payload interface{}) error {
	return PublishConsole(payload)
}
