package app

import (
	"github.com/gin-gonic/gin"

	"github.com/alexhq/alex-backend/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,
		UserHandler:    handlers.User,
		TaskHandler:    handlers.Task,
		ChatHandler:    handlers.Chat,
		AIHandler:      handlers.AI,
		MemoryHandler:  handlers.Memory,
	})
}
