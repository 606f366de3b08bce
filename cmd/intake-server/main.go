package main

import (
	"log"

	"lead-intake-backend/internal/api"
	"lead-intake-backend/internal/api/router"
	"lead-intake-backend/internal/database"
	"lead-intake-backend/internal/env"
	"lead-intake-backend/internal/notify"
	"lead-intake-backend/internal/queue"
	intakesvc "lead-intake-backend/internal/service/intake"
	"lead-intake-backend/internal/storage"
	"lead-intake-backend/internal/websocket"
)

func main() {
	env.Require()

	queueManager := queue.NewRequestQueueManager(10, 10)
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	notifier := notify.New(env.Get(env.WebhookURL))
	service := intakesvc.New(db, websocket.RedisPublisher{}, notifier)

	store, err := storage.NewEvidenceStore()
	if err != nil {
		// Evidence capture degrades gracefully; the rest of the flow works.
		log.Printf("evidence store disabled: %v", err)
		store = nil
	}

	hub := websocket.NewHub()
	go hub.Run()
	// Status events from the console process cancel busy-fallback timers.
	handler := websocket.NewHandler(hub, service.HandleStatusEvent)

	server := api.NewAPIServer(
		":82",
		queueManager,
		db,
		handler,
		router.UtilsRoutes("/api/public/v1"),
		router.IntakeRoutes("/api/public/v1", service, store),
	)

	server.Run()
}
