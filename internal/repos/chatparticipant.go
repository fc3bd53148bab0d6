package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/types"
)

type ChatParticipantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, participants []*types.ChatParticipant) ([]*types.ChatParticipant, error)
	ListByChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.ChatParticipant, error)
	IsParticipant(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) error
}

type chatParticipantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatParticipantRepo(db *gorm.DB, baseLog *logger.Logger) ChatParticipantRepo {
	repoLog := baseLog.With("repo", "ChatParticipantRepo")
	return &chatParticipantRepo{db: db, log: repoLog}
}

func (cpr *chatParticipantRepo) Create(ctx context.Context, tx *gorm.DB, participants []*types.ChatParticipant) ([]*types.ChatParticipant, error) {
	transaction := tx
	if transaction == nil {
		transaction = cpr.db
	}

	if len(participants) == 0 {
		return []*types.ChatParticipant{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (cpr *chatParticipantRepo) ListByChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.ChatParticipant, error) {
	transaction := tx
	if transaction == nil {
		transaction = cpr.db
	}

	var results []*types.ChatParticipant
	if err := transaction.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("joined_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cpr *chatParticipantRepo) IsParticipant(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cpr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (cpr *chatParticipantRepo) Delete(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cpr.db
	}

	return transaction.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&types.ChatParticipant{}).Error
}
