package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/types"
)

type TaskChatRepo interface {
	Create(ctx context.Context, tx *gorm.DB, chats []*types.TaskChat) ([]*types.TaskChat, error)
	GetByID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.TaskChat, error)
	ListByTask(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) ([]*types.TaskChat, error)
	Delete(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error
}

type taskChatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskChatRepo(db *gorm.DB, baseLog *logger.Logger) TaskChatRepo {
	repoLog := baseLog.With("repo", "TaskChatRepo")
	return &taskChatRepo{db: db, log: repoLog}
}

func (tcr *taskChatRepo) Create(ctx context.Context, tx *gorm.DB, chats []*types.TaskChat) ([]*types.TaskChat, error) {
	transaction := tx
	if transaction == nil {
		transaction = tcr.db
	}

	if len(chats) == 0 {
		return []*types.TaskChat{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

func (tcr *taskChatRepo) GetByID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.TaskChat, error) {
	transaction := tx
	if transaction == nil {
		transaction = tcr.db
	}

	var result types.TaskChat
	if err := transaction.WithContext(ctx).
		Where("id = ?", chatID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (tcr *taskChatRepo) ListByTask(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) ([]*types.TaskChat, error) {
	transaction := tx
	if transaction == nil {
		transaction = tcr.db
	}

	var results []*types.TaskChat
	if err := transaction.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tcr *taskChatRepo) Delete(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = tcr.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", chatID).
		Delete(&types.TaskChat{}).Error
}
