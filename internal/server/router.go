package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/alexhq/alex-backend/internal/handlers"
	"github.com/alexhq/alex-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	UserHandler    *handlers.UserHandler
	TaskHandler    *handlers.TaskHandler
	ChatHandler    *handlers.ChatHandler
	AIHandler      *handlers.AIHandler
	MemoryHandler  *handlers.MemoryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("alex-backend"))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/refresh", cfg.AuthHandler.Refresh)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// User
	protected.GET("/users/me", cfg.UserHandler.GetMe)
	protected.PATCH("/users/me", cfg.UserHandler.UpdateMe)

	// Tasks
	protected.POST("/tasks", cfg.TaskHandler.Create)
	protected.GET("/tasks", cfg.TaskHandler.List)
	protected.GET("/tasks/:task_id", cfg.TaskHandler.Get)
	protected.PATCH("/tasks/:task_id", cfg.TaskHandler.Update)
	protected.DELETE("/tasks/:task_id", cfg.TaskHandler.Delete)
	protected.POST("/tasks/:task_id/suggest", cfg.TaskHandler.SuggestNextSteps)
	protected.POST("/tasks/:task_id/ask", cfg.TaskHandler.AskAboutTask)

	// Task chats
	protected.POST("/tasks/:task_id/chats", cfg.ChatHandler.CreateChat)
	protected.GET("/tasks/:task_id/chats", cfg.ChatHandler.ListChats)
	protected.POST("/chats/:chat_id/join", cfg.ChatHandler.Join)
	protected.POST("/chats/:chat_id/leave", cfg.ChatHandler.Leave)
	protected.GET("/chats/:chat_id/participants", cfg.ChatHandler.ListParticipants)
	protected.POST("/chats/:chat_id/messages", cfg.ChatHandler.PostMessage)
	protected.GET("/chats/:chat_id/messages", cfg.ChatHandler.ListMessages)
	protected.POST("/chats/:chat_id/assistant", cfg.ChatHandler.AskAssistant)

	// AI
	protected.POST("/ai/chat", cfg.AIHandler.Chat)
	protected.POST("/ai/chat/stream", cfg.AIHandler.ChatStream)
	protected.GET("/ai/agents", cfg.AIHandler.ListAgents)
	protected.POST("/ai/agents/:agent_name", cfg.AIHandler.ExecuteAgent)
	protected.POST("/ai/summarize", cfg.AIHandler.Summarize)
	protected.POST("/ai/analyze", cfg.AIHandler.Analyze)
	protected.GET("/ai/status", cfg.AIHandler.Status)
	protected.GET("/ai/models", cfg.AIHandler.Models)
	protected.POST("/ai/cache/clear", cfg.AIHandler.ClearCache)

	// Memory
	protected.GET("/memory/history", cfg.MemoryHandler.GetHistory)
	protected.DELETE("/memory/history/:session_id", cfg.MemoryHandler.ClearSession)
	protected.GET("/memory/memories", cfg.MemoryHandler.GetMemories)
	protected.POST("/memory/memories", cfg.MemoryHandler.SaveMemory)
	protected.DELETE("/memory/memories/:memory_id", cfg.MemoryHandler.DeleteMemory)
	protected.POST("/memory/search", cfg.MemoryHandler.Search)
	protected.GET("/memory/summaries", cfg.MemoryHandler.GetSummaries)
	protected.POST("/memory/summaries", cfg.MemoryHandler.CreateSummary)
	protected.GET("/memory/stats", cfg.MemoryHandler.Stats)
	protected.GET("/memory/export", cfg.MemoryHandler.Export)
	protected.DELETE("/memory/clear-all", cfg.MemoryHandler.ClearAll)

	return router
}
