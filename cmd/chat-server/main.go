package main

import (
	"log"

	"creator-chat-backend/internal/api"
	"creator-chat-backend/internal/api/router"
	"creator-chat-backend/internal/chat"
	"creator-chat-backend/internal/database"
	"creator-chat-backend/internal/env"
	"creator-chat-backend/internal/model"
	"creator-chat-backend/internal/queue"
	usersvc "creator-chat-backend/internal/service/user"
)

func main() {
	env.MustCheck()

	queueManager := queue.NewRequestQueueManager(10, 10)
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	users := usersvc.New(db)
	registry := chat.NewRegistry(model.RoomIDs)
	chatHandler := chat.NewHandler(
		registry,
		chat.NewAuthGate(users),
		chat.NewDynamoHistory(db),
	)

	server := api.NewAPIServer(
		":"+env.GetOrDefault("PORT", "8080"),
		queueManager,
		db,
		chatHandler,
		router.UtilsRoutes(),
		router.AuthRoutes("/auth"),
		router.UserRoutes("/users"),
		router.ChatRoutes("/ws"),
	)

	server.Run()
}
