package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/types"
)

type ConversationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.ConversationHistory) ([]*types.ConversationHistory, error)
	GetRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID string, limit int) ([]*types.ConversationHistory, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ConversationHistory, error)
	ListBySession(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID string) ([]*types.ConversationHistory, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	CountSessionsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	DeleteBySession(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID string) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	repoLog := baseLog.With("repo", "ConversationRepo")
	return &conversationRepo{db: db, log: repoLog}
}

func (cr *conversationRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.ConversationHistory) ([]*types.ConversationHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(entries) == 0 {
		return []*types.ConversationHistory{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GetRecent returns the newest entries first. Callers that need the
// conversation in chronological order reverse the slice.
func (cr *conversationRepo) GetRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID string, limit int) ([]*types.ConversationHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ?", userID)
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}
	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []*types.ConversationHistory
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *conversationRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ConversationHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.ConversationHistory
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *conversationRepo) ListBySession(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID string) ([]*types.ConversationHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.ConversationHistory
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *conversationRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ConversationHistory{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (cr *conversationRepo) CountSessionsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ConversationHistory{}).
		Where("user_id = ?", userID).
		Distinct("session_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (cr *conversationRepo) DeleteBySession(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID string) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(ctx).
		Unscoped().
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Delete(&types.ConversationHistory{}).Error
}

func (cr *conversationRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(ctx).
		Unscoped().
		Where("user_id = ?", userID).
		Delete(&types.ConversationHistory{}).Error
}
