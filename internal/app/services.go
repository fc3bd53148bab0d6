package app

import (
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/services"
)

type Services struct {
	Auth   services.AuthService
	User   services.UserService
	Task   services.TaskService
	Chat   services.ChatService
	AI     services.AIService
	Memory services.MemoryService

	Sessions services.SessionStore
	Cache    *services.AICache
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	authService := services.NewAuthService(
		db, log,
		repos.User,
		repos.UserToken,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	userService := services.NewUserService(db, log, repos.User)
	taskService := services.NewTaskService(db, log, repos.Task)

	var sessions services.SessionStore
	if clients.Redis != nil {
		sessions = services.NewRedisSessionStore(clients.Redis, cfg.SessionTTL, log)
	} else {
		sessions = services.NewMemorySessionStore(cfg.SessionTTL)
	}

	memoryService := services.NewMemoryService(
		db,
		repos.Conversation,
		repos.UserMemory,
		repos.ContextSummary,
		repos.User,
		repos.Task,
		sessions,
		log,
	)

	cache := services.NewAICache(cfg.AICacheTTL, log)
	aiService := services.NewAIService(clients.Provider, cache, memoryService, repos.AICallLog, log)

	chatService := services.NewChatService(
		db, log,
		repos.TaskChat,
		repos.ChatMessage,
		repos.ChatParticipant,
		repos.Task,
		aiService,
	)

	return Services{
		Auth:     authService,
		User:     userService,
		Task:     taskService,
		Chat:     chatService,
		AI:       aiService,
		Memory:   memoryService,
		Sessions: sessions,
		Cache:    cache,
	}, nil
}
