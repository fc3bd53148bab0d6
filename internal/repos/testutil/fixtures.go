package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      "member",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, assigneeID uuid.UUID, status string, urgent bool, deadline *time.Time) *types.Task {
	tb.Helper()
	task := &types.Task{
		ID:         uuid.New(),
		Title:      "task",
		Status:     status,
		Urgent:     urgent,
		Deadline:   deadline,
		AssigneeID: assigneeID,
	}
	if err := tx.WithContext(ctx).Create(task).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return task
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID, role, message string) *types.ConversationHistory {
	tb.Helper()
	conv := &types.ConversationHistory{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		Message:   message,
	}
	if err := tx.WithContext(ctx).Create(conv).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return conv
}

func SeedMemory(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, memoryType, key, value string, confidence float64) *types.UserMemory {
	tb.Helper()
	m := &types.UserMemory{
		ID:           uuid.New(),
		UserID:       userID,
		MemoryType:   memoryType,
		Key:          key,
		Value:        value,
		Confidence:   confidence,
		LastAccessed: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed memory: %v", err)
	}
	return m
}

func SeedSummary(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, summaryType string, date time.Time) *types.ContextSummary {
	tb.Helper()
	s := &types.ContextSummary{
		ID:          uuid.New(),
		UserID:      userID,
		SummaryType: summaryType,
		Title:       "summary",
		Summary:     "body",
		Date:        date,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed summary: %v", err)
	}
	return s
}
