package app

import (
	"github.com/alexhq/alex-backend/internal/handlers"
	"github.com/alexhq/alex-backend/internal/logger"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Task   *handlers.TaskHandler
	Chat   *handlers.ChatHandler
	AI     *handlers.AIHandler
	Memory *handlers.MemoryHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:   handlers.NewAuthHandler(services.Auth),
		User:   handlers.NewUserHandler(services.User),
		Task:   handlers.NewTaskHandler(services.Task, services.AI),
		Chat:   handlers.NewChatHandler(services.Chat),
		AI:     handlers.NewAIHandler(services.AI),
		Memory: handlers.NewMemoryHandler(services.Memory),
	}
}
