package app

import (
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/repos"
)

type Repos struct {
	User            repos.UserRepo
	UserToken       repos.UserTokenRepo
	Task            repos.TaskRepo
	TaskChat        repos.TaskChatRepo
	ChatMessage     repos.ChatMessageRepo
	ChatParticipant repos.ChatParticipantRepo
	Conversation    repos.ConversationRepo
	UserMemory      repos.UserMemoryRepo
	ContextSummary  repos.ContextSummaryRepo
	AICallLog       repos.AICallLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		UserToken:       repos.NewUserTokenRepo(db, log),
		Task:            repos.NewTaskRepo(db, log),
		TaskChat:        repos.NewTaskChatRepo(db, log),
		ChatMessage:     repos.NewChatMessageRepo(db, log),
		ChatParticipant: repos.NewChatParticipantRepo(db, log),
		Conversation:    repos.NewConversationRepo(db, log),
		UserMemory:      repos.NewUserMemoryRepo(db, log),
		ContextSummary:  repos.NewContextSummaryRepo(db, log),
		AICallLog:       repos.NewAICallLogRepo(db, log),
	}
}
