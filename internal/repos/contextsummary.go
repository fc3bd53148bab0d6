package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/types"
)

type ContextSummaryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, summaries []*types.ContextSummary) ([]*types.ContextSummary, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, summaryType string, since time.Time) ([]*types.ContextSummary, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type contextSummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContextSummaryRepo(db *gorm.DB, baseLog *logger.Logger) ContextSummaryRepo {
	repoLog := baseLog.With("repo", "ContextSummaryRepo")
	return &contextSummaryRepo{db: db, log: repoLog}
}

func (csr *contextSummaryRepo) Create(ctx context.Context, tx *gorm.DB, summaries []*types.ContextSummary) ([]*types.ContextSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = csr.db
	}

	if len(summaries) == 0 {
		return []*types.ContextSummary{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (csr *contextSummaryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, summaryType string, since time.Time) ([]*types.ContextSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = csr.db
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ?", userID)
	if summaryType != "" {
		query = query.Where("summary_type = ?", summaryType)
	}
	if !since.IsZero() {
		query = query.Where("date >= ?", since)
	}
	query = query.Order("date DESC")

	var results []*types.ContextSummary
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (csr *contextSummaryRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = csr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ContextSummary{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (csr *contextSummaryRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = csr.db
	}

	return transaction.WithContext(ctx).
		Unscoped().
		Where("user_id = ?", userID).
		Delete(&types.ContextSummary{}).Error
}
