package main

import (
	"context"
	"log"

	"lead-intake-backend/internal/api"
	"lead-intake-backend/internal/api/router"
	"lead-intake-backend/internal/database"
	"lead-intake-backend/internal/env"
	"lead-intake-backend/internal/notify"
	"lead-intake-backend/internal/queue"
	consolesvc "lead-intake-backend/internal/service/console"
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
	service := consolesvc.New(db, websocket.RedisPublisher{}, notifier, consolesvc.NewJWTTokenIssuer())

	if err := service.EnsureDefaultCannedResponses(context.Background()); err != nil {
		log.Printf("seed canned responses: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run()
	handler := websocket.NewHandler(hub, nil)
	handler.CreateFeedRoom()

	server := api.NewAPIServer(
		":83",
		queueManager,
		db,
		handler,
		router.UtilsRoutes("/api/console/v1"),
		router.ConsoleRoutes("/api/console/v1", service),
	)

	server.Run()
}
