package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/types"
)

type UserMemoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, memories []*types.UserMemory) ([]*types.UserMemory, error)
	GetByKey(ctx context.Context, tx *gorm.DB, userID uuid.UUID, memoryType, key string) (*types.UserMemory, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, memoryType string, limit int) ([]*types.UserMemory, error)
	SearchByValue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keyword string, limit int) ([]*types.UserMemory, error)
	Update(ctx context.Context, tx *gorm.DB, memory *types.UserMemory) (*types.UserMemory, error)
	TouchAccess(ctx context.Context, tx *gorm.DB, memoryIDs []uuid.UUID) error
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	CountByType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, memoryType string) (int64, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, userID, memoryID uuid.UUID) (bool, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type userMemoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserMemoryRepo(db *gorm.DB, baseLog *logger.Logger) UserMemoryRepo {
	repoLog := baseLog.With("repo", "UserMemoryRepo")
	return &userMemoryRepo{db: db, log: repoLog}
}

func (umr *userMemoryRepo) Create(ctx context.Context, tx *gorm.DB, memories []*types.UserMemory) ([]*types.UserMemory, error) {
	transaction := tx
	if transaction == nil {
		transaction = umr.db
	}

	if len(memories) == 0 {
		return []*types.UserMemory{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&memories).Error; err != nil {
		return nil, err
	}
	return memories, nil
}

func (umr *userMemoryRepo) GetByKey(ctx context.Context, tx *gorm.DB, userID uuid.UUID, memoryType, key string) (*types.UserMemory, error) {
	transaction := tx
	if transaction == nil {
		transaction = umr.db
	}

	var result types.UserMemory
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND memory_type = ? AND key = ?", userID, memoryType, key).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (umr *userMemoryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, memoryType string, limit int) ([]*types.UserMemory, error) {
	transaction := tx
	if transaction == nil {
		transaction = umr.db
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ?", userID)
	if memoryType != "" {
		query = query.Where("memory_type = ?", memoryType)
	}
	query = query.Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []*types.UserMemory
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (umr *userMemoryRepo) SearchByValue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keyword string, limit int) ([]*types.UserMemory, error) {
	transaction := tx
	if transaction == nil {
		transaction = umr.db
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("value LIKE ? OR key LIKE ?", "%"+keyword+"%", "%"+keyword+"%").
		Order("confidence DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []*types.UserMemory
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (umr *userMemoryRepo) Update(ctx context.Context, tx *gorm.DB, memory *types.UserMemory) (*types.UserMemory, error) {
	transaction := tx
	if transaction == nil {
		transaction = umr.db
	}

	if err := transaction.WithContext(ctx).Save(memory).Error; err != nil {
		return nil, err
	}
	return memory, nil
}

func (umr *userMemoryRepo) TouchAccess(ctx context.Context, tx *gorm.DB, memoryIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = umr.db
	}

	if len(memoryIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.UserMemory{}).
		Where("id IN ?", memoryIDs).
		Updates(map[string]interface{}{
			"access_count":  gorm.Expr("access_count + 1"),
			"last_accessed": time.Now().UTC(),
		}).Error
}

func (umr *userMemoryRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = umr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UserMemory{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (umr *userMemoryRepo) CountByType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, memoryType string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = umr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UserMemory{}).
		Where("user_id = ? AND memory_type = ?", userID, memoryType).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (umr *userMemoryRepo) DeleteByID(ctx context.Context, tx *gorm.DB, userID, memoryID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = umr.db
	}

	// Hard delete: a soft-deleted row would keep occupying the
	// (user_id, memory_type, key) unique index and block re-saving the key.
	result := transaction.WithContext(ctx).
		Unscoped().
		Where("id = ? AND user_id = ?", memoryID, userID).
		Delete(&types.UserMemory{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (umr *userMemoryRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = umr.db
	}

	return transaction.WithContext(ctx).
		Unscoped().
		Where("user_id = ?", userID).
		Delete(&types.UserMemory{}).Error
}
