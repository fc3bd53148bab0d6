package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/repos"
	"github.com/alexhq/alex-backend/internal/types"
)

type TaskCreate struct {
	Title        string
	Description  string
	Urgent       bool
	Deadline     *time.Time
	SupervisorID *uuid.UUID
}

type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Urgent      *bool
	Deadline    *time.Time
}

var validTaskStatuses = map[string]bool{
	types.TaskStatusTodo:       true,
	types.TaskStatusInProgress: true,
	types.TaskStatusDone:       true,
}

type TaskService interface {
	Create(ctx context.Context, assigneeID uuid.UUID, create TaskCreate) (*types.Task, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*types.Task, error)
	List(ctx context.Context, assigneeID uuid.UUID, status string) ([]*types.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, update TaskUpdate) (*types.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

type taskService struct {
	db       *gorm.DB
	log      *logger.Logger
	taskRepo repos.TaskRepo
}

func NewTaskService(db *gorm.DB, log *logger.Logger, taskRepo repos.TaskRepo) TaskService {
	return &taskService{
		db:       db,
		log:      log.With("service", "TaskService"),
		taskRepo: taskRepo,
	}
}

func (ts *taskService) Create(ctx context.Context, assigneeID uuid.UUID, create TaskCreate) (*types.Task, error) {
	if create.Title == "" {
		return nil, apierr.Validation("a title is required to create a task")
	}

	task := &types.Task{
		ID:           uuid.New(),
		Title:        create.Title,
		Description:  create.Description,
		Status:       types.TaskStatusTodo,
		Urgent:       create.Urgent,
		Deadline:     create.Deadline,
		AssigneeID:   assigneeID,
		SupervisorID: create.SupervisorID,
	}
	created, err := ts.taskRepo.Create(ctx, nil, []*types.Task{task})
	if err != nil {
		return nil, fmt.Errorf("Failed to create task: %w", err)
	}
	return created[0], nil
}

// Get enforces ownership: only the assignee or supervisor may read a task.
func (ts *taskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*types.Task, error) {
	task, err := ts.taskRepo.GetByID(ctx, nil, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("task not found")
		}
		return nil, fmt.Errorf("Failed to fetch task: %w", err)
	}
	if task.AssigneeID != userID && (task.SupervisorID == nil || *task.SupervisorID != userID) {
		return nil, apierr.New(403, apierr.CodeForbidden, fmt.Errorf("task belongs to another user"))
	}
	return task, nil
}

func (ts *taskService) List(ctx context.Context, assigneeID uuid.UUID, status string) ([]*types.Task, error) {
	if status != "" && !validTaskStatuses[status] {
		return nil, apierr.Validation("unknown task status: %s", status)
	}
	return ts.taskRepo.ListByAssignee(ctx, nil, assigneeID, status)
}

func (ts *taskService) Update(ctx context.Context, userID, taskID uuid.UUID, update TaskUpdate) (*types.Task, error) {
	task, err := ts.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, apierr.Validation("title cannot be empty")
		}
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		if !validTaskStatuses[*update.Status] {
			return nil, apierr.Validation("unknown task status: %s", *update.Status)
		}
		task.Status = *update.Status
	}
	if update.Urgent != nil {
		task.Urgent = *update.Urgent
	}
	if update.Deadline != nil {
		task.Deadline = update.Deadline
	}

	updated, err := ts.taskRepo.Update(ctx, nil, task)
	if err != nil {
		return nil, fmt.Errorf("Failed to update task: %w", err)
	}
	return updated, nil
}

func (ts *taskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if _, err := ts.Get(ctx, userID, taskID); err != nil {
		return err
	}
	return ts.taskRepo.Delete(ctx, nil, taskID)
}
