package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/types"
)

type TaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error)
	GetByID(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (*types.Task, error)
	ListByAssignee(ctx context.Context, tx *gorm.DB, assigneeID uuid.UUID, status string) ([]*types.Task, error)
	ListActiveByAssignee(ctx context.Context, tx *gorm.DB, assigneeID uuid.UUID, limit int) ([]*types.Task, error)
	Update(ctx context.Context, tx *gorm.DB, task *types.Task) (*types.Task, error)
	Delete(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	repoLog := baseLog.With("repo", "TaskRepo")
	return &taskRepo{db: db, log: repoLog}
}

func (tr *taskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(tasks) == 0 {
		return []*types.Task{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (tr *taskRepo) GetByID(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var result types.Task
	if err := transaction.WithContext(ctx).
		Where("id = ?", taskID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (tr *taskRepo) ListByAssignee(ctx context.Context, tx *gorm.DB, assigneeID uuid.UUID, status string) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	query := transaction.WithContext(ctx).
		Where("assignee_id = ?", assigneeID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var results []*types.Task
	if err := query.
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListActiveByAssignee returns open tasks, urgent first then earliest
// deadline.
func (tr *taskRepo) ListActiveByAssignee(ctx context.Context, tx *gorm.DB, assigneeID uuid.UUID, limit int) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	query := transaction.WithContext(ctx).
		Where("assignee_id = ?", assigneeID).
		Where("status IN ?", []string{types.TaskStatusTodo, types.TaskStatusInProgress}).
		Order("urgent DESC").
		Order("deadline ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []*types.Task
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) Update(ctx context.Context, tx *gorm.DB, task *types.Task) (*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if err := transaction.WithContext(ctx).Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (tr *taskRepo) Delete(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", taskID).
		Delete(&types.Task{}).Error
}
