package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/repos"
	"github.com/alexhq/alex-backend/internal/repos/testutil"
	"github.com/alexhq/alex-backend/internal/types"
)

// newMemoryServiceOverTx builds the service on top of the test transaction so
// every write rolls back with it.
func newMemoryServiceOverTx(t *testing.T, tx *gorm.DB) MemoryService {
	t.Helper()
	log := testutil.Logger(t)
	return NewMemoryService(
		tx,
		repos.NewConversationRepo(tx, log),
		repos.NewUserMemoryRepo(tx, log),
		repos.NewContextSummaryRepo(tx, log),
		repos.NewUserRepo(tx, log),
		repos.NewTaskRepo(tx, log),
		NewMemorySessionStore(time.Hour),
		log,
	)
}

func seedTurnAt(t *testing.T, ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID, role, message string, at time.Time) {
	t.Helper()
	conv := &types.ConversationHistory{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		Message:   message,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := tx.WithContext(ctx).Create(conv).Error; err != nil {
		t.Fatalf("seed turn: %v", err)
	}
}

func TestMemoryServiceSaveMemoryUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, tx, "upsert@example.com")
	svc := newMemoryServiceOverTx(t, tx)

	first, err := svc.SaveMemory(ctx, user.ID, types.MemoryTypePreference, "tone", "formal", 0.6)
	if err != nil {
		t.Fatalf("SaveMemory: %v", err)
	}
	second, err := svc.SaveMemory(ctx, user.ID, types.MemoryTypePreference, "tone", "casual", 0.9)
	if err != nil {
		t.Fatalf("SaveMemory (update): %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a new row: %s vs %s", second.ID, first.ID)
	}
	if second.Value != "casual" || second.Confidence != 0.9 {
		t.Fatalf("updated memory: %+v", second)
	}

	all, err := svc.GetMemoriesByType(ctx, user.ID, types.MemoryTypePreference)
	if err != nil {
		t.Fatalf("GetMemoriesByType: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("rows=%d, want 1 after upsert", len(all))
	}
}

func TestMemoryServiceDeleteThenResave(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, tx, "resave@example.com")
	svc := newMemoryServiceOverTx(t, tx)

	first, err := svc.SaveMemory(ctx, user.ID, types.MemoryTypePreference, "tone", "formal", 1.0)
	if err != nil {
		t.Fatalf("SaveMemory: %v", err)
	}
	deleted, err := svc.DeleteMemory(ctx, user.ID, first.ID)
	if err != nil {
		t.Fatalf("DeleteMemory: %v", err)
	}
	if !deleted {
		t.Fatalf("DeleteMemory: expected true")
	}

	// A previously-used key must remain writable after its memory is deleted.
	second, err := svc.SaveMemory(ctx, user.ID, types.MemoryTypePreference, "tone", "casual", 1.0)
	if err != nil {
		t.Fatalf("SaveMemory after delete: %v", err)
	}
	if second.Value != "casual" {
		t.Fatalf("resaved memory: %+v", second)
	}

	if err := svc.ClearAll(ctx, user.ID); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if _, err := svc.SaveMemory(ctx, user.ID, types.MemoryTypePreference, "tone", "direct", 1.0); err != nil {
		t.Fatalf("SaveMemory after ClearAll: %v", err)
	}
}

func TestMemoryServiceConversationChronology(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, tx, "chronology@example.com")
	svc := newMemoryServiceOverTx(t, tx)

	base := time.Now().UTC().Add(-time.Hour)
	seedTurnAt(t, ctx, tx, user.ID, "s1", types.ChatRoleUser, "first", base)
	seedTurnAt(t, ctx, tx, user.ID, "s1", types.ChatRoleAssistant, "second", base.Add(time.Minute))
	seedTurnAt(t, ctx, tx, user.ID, "s1", types.ChatRoleUser, "third", base.Add(2*time.Minute))
	seedTurnAt(t, ctx, tx, user.ID, "s2", types.ChatRoleUser, "elsewhere", base.Add(3*time.Minute))

	// The repo hands back newest-first; the service must return oldest-first.
	recent, err := svc.GetRecentConversations(ctx, user.ID, 10, "s1")
	if err != nil {
		t.Fatalf("GetRecentConversations: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("turns=%d, want 3", len(recent))
	}
	for i, want := range []string{"first", "second", "third"} {
		if recent[i].Message != want {
			t.Fatalf("turn %d = %q, want %q", i, recent[i].Message, want)
		}
	}

	// The limit keeps the newest turns, still in chronological order.
	limited, err := svc.GetRecentConversations(ctx, user.ID, 2, "s1")
	if err != nil {
		t.Fatalf("GetRecentConversations (limited): %v", err)
	}
	if len(limited) != 2 || limited[0].Message != "second" || limited[1].Message != "third" {
		t.Fatalf("limited turns: %+v", limited)
	}

	history, err := svc.GetSessionHistory(ctx, user.ID, "s1")
	if err != nil {
		t.Fatalf("GetSessionHistory: %v", err)
	}
	if len(history) != 3 || history[0].Message != "first" || history[2].Message != "third" {
		t.Fatalf("session history: %+v", history)
	}
}

func TestMemoryServiceGetAllMemoriesBuckets(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, tx, "buckets@example.com")
	svc := newMemoryServiceOverTx(t, tx)

	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypePreference, "tone", "concise", 1)
	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypePattern, "standup", "daily at 9", 1)
	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypeGoal, "q3", "ship the report", 1)

	organized, err := svc.GetAllMemories(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetAllMemories: %v", err)
	}
	for _, bucket := range []string{"preferences", "patterns", "insights", "goals"} {
		if _, ok := organized[bucket]; !ok {
			t.Fatalf("bucket %q missing", bucket)
		}
	}
	if len(organized["preferences"]) != 1 || len(organized["patterns"]) != 1 || len(organized["goals"]) != 1 {
		t.Fatalf("bucket sizes: %v", organized)
	}
	if len(organized["insights"]) != 0 {
		t.Fatalf("insights should be empty: %v", organized["insights"])
	}
}

func TestMemoryServiceGetMemoryTouchesAccess(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, tx, "touch@example.com")
	svc := newMemoryServiceOverTx(t, tx)

	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypeInsight, "focus", "mornings are best", 1)

	got, err := svc.GetMemory(ctx, user.ID, types.MemoryTypeInsight, "focus")
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}
	if got == nil || got.AccessCount != 1 {
		t.Fatalf("memory after read: %+v", got)
	}

	missing, err := svc.GetMemory(ctx, user.ID, types.MemoryTypeInsight, "nope")
	if err != nil {
		t.Fatalf("GetMemory (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for absent memory, got %+v", missing)
	}
}

func TestMemoryServiceBuildAIContext(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, tx, "context@example.com")
	svc := newMemoryServiceOverTx(t, tx)

	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypePreference, "tone", "concise", 1)
	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypePattern, "schedule", "deadline reviews on friday", 0.8)
	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypeInsight, "coffee", "café orders for standups", 0.9)
	testutil.SeedTask(t, ctx, tx, user.ID, types.TaskStatusTodo, true, nil)
	testutil.SeedConversation(t, ctx, tx, user.ID, "s1", types.ChatRoleUser, "hello")

	aiContext, err := svc.BuildAIContext(ctx, user.ID, "when is the café deadline", "s1")
	if err != nil {
		t.Fatalf("BuildAIContext: %v", err)
	}
	if aiContext.UserProfile == nil || aiContext.UserProfile.Name != "A B" {
		t.Fatalf("user profile: %+v", aiContext.UserProfile)
	}
	if len(aiContext.Preferences) != 1 || aiContext.Preferences[0] != "tone: concise" {
		t.Fatalf("preferences: %v", aiContext.Preferences)
	}
	if len(aiContext.ActiveTasks) != 1 {
		t.Fatalf("active tasks: %d", len(aiContext.ActiveTasks))
	}
	if len(aiContext.RecentConversations) != 1 {
		t.Fatalf("conversations: %d", len(aiContext.RecentConversations))
	}
	// "deadline" is the only keyword: "café" is four characters, so the
	// café memory must not surface.
	if len(aiContext.RelevantMemories) != 1 || aiContext.RelevantMemories[0].Key != "schedule" {
		t.Fatalf("relevant memories: %v", aiContext.RelevantMemories)
	}
}

func TestMemoryServiceStatsAndClearAll(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, tx, "stats@example.com")
	svc := newMemoryServiceOverTx(t, tx)

	testutil.SeedConversation(t, ctx, tx, user.ID, "s1", types.ChatRoleUser, "one")
	testutil.SeedConversation(t, ctx, tx, user.ID, "s2", types.ChatRoleUser, "two")
	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypeGoal, "q3", "ship", 1)
	testutil.SeedSummary(t, ctx, tx, user.ID, "daily", time.Now().UTC())

	stats, err := svc.GetMemoryStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetMemoryStats: %v", err)
	}
	if stats.TotalConversations != 2 || stats.TotalSessions != 2 || stats.TotalMemories != 1 || stats.TotalSummaries != 1 {
		t.Fatalf("stats: %+v", stats)
	}
	if stats.MemoryByType[types.MemoryTypeGoal] != 1 {
		t.Fatalf("by-type counts: %v", stats.MemoryByType)
	}

	if err := svc.ClearAll(ctx, user.ID); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	after, err := svc.GetMemoryStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetMemoryStats (after clear): %v", err)
	}
	if after.TotalConversations != 0 || after.TotalMemories != 0 || after.TotalSummaries != 0 {
		t.Fatalf("data survived ClearAll: %+v", after)
	}
}
