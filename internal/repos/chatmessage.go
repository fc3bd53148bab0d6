package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/types"
)

type ChatMessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, messages []*types.ChatMessage) ([]*types.ChatMessage, error)
	ListByChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, limit int) ([]*types.ChatMessage, error)
	GetRecentByChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, limit int) ([]*types.ChatMessage, error)
}

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	repoLog := baseLog.With("repo", "ChatMessageRepo")
	return &chatMessageRepo{db: db, log: repoLog}
}

func (cmr *chatMessageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.ChatMessage) ([]*types.ChatMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	if len(messages) == 0 {
		return []*types.ChatMessage{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (cmr *chatMessageRepo) ListByChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	query := transaction.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []*types.ChatMessage
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetRecentByChat returns the newest messages first. Callers that need
// chronological order reverse the slice.
func (cmr *chatMessageRepo) GetRecentByChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	query := transaction.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []*types.ChatMessage
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
