package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/repos"
	"github.com/alexhq/alex-backend/internal/types"
)

type ChatService interface {
	CreateChat(ctx context.Context, userID, taskID uuid.UUID, name string) (*types.TaskChat, error)
	ListChats(ctx context.Context, userID, taskID uuid.UUID) ([]*types.TaskChat, error)
	JoinChat(ctx context.Context, userID, chatID uuid.UUID) error
	LeaveChat(ctx context.Context, userID, chatID uuid.UUID) error
	ListParticipants(ctx context.Context, userID, chatID uuid.UUID) ([]*types.ChatParticipant, error)
	PostMessage(ctx context.Context, userID, chatID uuid.UUID, content string) (*types.ChatMessage, error)
	ListMessages(ctx context.Context, userID, chatID uuid.UUID, limit int) ([]*types.ChatMessage, error)
	AskAssistant(ctx context.Context, userID, chatID uuid.UUID, question string) (*types.ChatMessage, error)
}

type chatService struct {
	db              *gorm.DB
	log             *logger.Logger
	chatRepo        repos.TaskChatRepo
	messageRepo     repos.ChatMessageRepo
	participantRepo repos.ChatParticipantRepo
	taskRepo        repos.TaskRepo
	ai              AIService
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	chatRepo repos.TaskChatRepo,
	messageRepo repos.ChatMessageRepo,
	participantRepo repos.ChatParticipantRepo,
	taskRepo repos.TaskRepo,
	ai AIService,
) ChatService {
	return &chatService{
		db:              db,
		log:             log.With("service", "ChatService"),
		chatRepo:        chatRepo,
		messageRepo:     messageRepo,
		participantRepo: participantRepo,
		taskRepo:        taskRepo,
		ai:              ai,
	}
}

func (cs *chatService) CreateChat(ctx context.Context, userID, taskID uuid.UUID, name string) (*types.TaskChat, error) {
	if name == "" {
		return nil, apierr.Validation("a chat name is required")
	}
	if _, err := cs.taskRepo.GetByID(ctx, nil, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("task not found")
		}
		return nil, fmt.Errorf("Failed to fetch task: %w", err)
	}

	var chat *types.TaskChat
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := cs.chatRepo.Create(ctx, tx, []*types.TaskChat{{
			ID:        uuid.New(),
			TaskID:    taskID,
			Name:      name,
			CreatedBy: userID,
		}})
		if err != nil {
			return fmt.Errorf("Failed to create chat: %w", err)
		}
		chat = created[0]

		if _, err := cs.participantRepo.Create(ctx, tx, []*types.ChatParticipant{{
			ID:     uuid.New(),
			ChatID: chat.ID,
			UserID: userID,
		}}); err != nil {
			return fmt.Errorf("Failed to add chat creator as participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (cs *chatService) ListChats(ctx context.Context, userID, taskID uuid.UUID) ([]*types.TaskChat, error) {
	return cs.chatRepo.ListByTask(ctx, nil, taskID)
}

func (cs *chatService) JoinChat(ctx context.Context, userID, chatID uuid.UUID) error {
	if _, err := cs.chatRepo.GetByID(ctx, nil, chatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("chat not found")
		}
		return fmt.Errorf("Failed to fetch chat: %w", err)
	}

	already, err := cs.participantRepo.IsParticipant(ctx, nil, chatID, userID)
	if err != nil {
		return fmt.Errorf("Failed to check chat membership: %w", err)
	}
	if already {
		return nil
	}

	if _, err := cs.participantRepo.Create(ctx, nil, []*types.ChatParticipant{{
		ID:     uuid.New(),
		ChatID: chatID,
		UserID: userID,
	}}); err != nil {
		return fmt.Errorf("Failed to join chat: %w", err)
	}
	return nil
}

func (cs *chatService) LeaveChat(ctx context.Context, userID, chatID uuid.UUID) error {
	return cs.participantRepo.Delete(ctx, nil, chatID, userID)
}

func (cs *chatService) ListParticipants(ctx context.Context, userID, chatID uuid.UUID) ([]*types.ChatParticipant, error) {
	if err := cs.requireParticipant(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return cs.participantRepo.ListByChat(ctx, nil, chatID)
}

func (cs *chatService) requireParticipant(ctx context.Context, userID, chatID uuid.UUID) error {
	member, err := cs.participantRepo.IsParticipant(ctx, nil, chatID, userID)
	if err != nil {
		return fmt.Errorf("Failed to check chat membership: %w", err)
	}
	if !member {
		return apierr.New(403, apierr.CodeForbidden, fmt.Errorf("not a participant of this chat"))
	}
	return nil
}

func (cs *chatService) PostMessage(ctx context.Context, userID, chatID uuid.UUID, content string) (*types.ChatMessage, error) {
	if content == "" {
		return nil, apierr.Validation("message content is required")
	}
	if err := cs.requireParticipant(ctx, userID, chatID); err != nil {
		return nil, err
	}

	created, err := cs.messageRepo.Create(ctx, nil, []*types.ChatMessage{{
		ID:      uuid.New(),
		ChatID:  chatID,
		UserID:  &userID,
		Role:    types.ChatRoleUser,
		Content: content,
	}})
	if err != nil {
		return nil, fmt.Errorf("Failed to post message: %w", err)
	}
	return created[0], nil
}

func (cs *chatService) ListMessages(ctx context.Context, userID, chatID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	if err := cs.requireParticipant(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return cs.messageRepo.ListByChat(ctx, nil, chatID, limit)
}

// AskAssistant routes a question through the AI provider with the chat's task
// title and recent messages as context, then records the reply as an
// assistant message with no user attached.
func (cs *chatService) AskAssistant(ctx context.Context, userID, chatID uuid.UUID, question string) (*types.ChatMessage, error) {
	if question == "" {
		return nil, apierr.Validation("a question is required")
	}
	if err := cs.requireParticipant(ctx, userID, chatID); err != nil {
		return nil, err
	}

	chat, err := cs.chatRepo.GetByID(ctx, nil, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("chat not found")
		}
		return nil, fmt.Errorf("Failed to fetch chat: %w", err)
	}
	task, err := cs.taskRepo.GetByID(ctx, nil, chat.TaskID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch chat task: %w", err)
	}

	recent, err := cs.messageRepo.GetRecentByChat(ctx, nil, chatID, 10)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch recent messages: %w", err)
	}
	var lines []string
	for i := len(recent) - 1; i >= 0; i-- {
		lines = append(lines, fmt.Sprintf("%s: %s", capitalize(recent[i].Role), recent[i].Content))
	}

	result, err := cs.ai.ChatWithGroupContext(ctx, question, task.Title, strings.Join(lines, "\n"))
	if err != nil {
		return nil, err
	}

	saved, err := cs.messageRepo.Create(ctx, nil, []*types.ChatMessage{{
		ID:      uuid.New(),
		ChatID:  chatID,
		Role:    types.ChatRoleAssistant,
		Content: result.Response,
	}})
	if err != nil {
		return nil, fmt.Errorf("Failed to store assistant reply: %w", err)
	}
	return saved[0], nil
}
