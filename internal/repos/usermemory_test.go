package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/alexhq/alex-backend/internal/repos/testutil"
	"github.com/alexhq/alex-backend/internal/types"
)

func TestUserMemoryRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserMemoryRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "memoryrepo@example.com")

	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypePreference, "communication_style", "prefers short answers", 0.5)
	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypeInsight, "deadlines", "tends to batch work before deadlines", 0.9)
	testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypeGoal, "quarter", "ship the reporting feature", 0.7)

	got, err := repo.GetByKey(ctx, tx, user.ID, types.MemoryTypePreference, "communication_style")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if got.Value != "prefers short answers" {
		t.Fatalf("GetByKey: unexpected value %q", got.Value)
	}

	// Search matches value or key, ordered most-confident first.
	results, err := repo.SearchByValue(ctx, tx, user.ID, "deadline", 10)
	if err != nil {
		t.Fatalf("SearchByValue: %v", err)
	}
	if len(results) != 1 || results[0].Key != "deadlines" {
		t.Fatalf("SearchByValue: unexpected results: %+v", results)
	}

	all, err := repo.SearchByValue(ctx, tx, user.ID, "e", 10)
	if err != nil {
		t.Fatalf("SearchByValue (broad): %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Confidence > all[i-1].Confidence {
			t.Fatalf("SearchByValue: not ordered by confidence: %+v", all)
		}
	}

	if err := repo.TouchAccess(ctx, tx, []uuid.UUID{got.ID}); err != nil {
		t.Fatalf("TouchAccess: %v", err)
	}
	touched, err := repo.GetByKey(ctx, tx, user.ID, types.MemoryTypePreference, "communication_style")
	if err != nil {
		t.Fatalf("GetByKey after touch: %v", err)
	}
	if touched.AccessCount != got.AccessCount+1 {
		t.Fatalf("TouchAccess: access_count=%d, want %d", touched.AccessCount, got.AccessCount+1)
	}

	total, err := repo.CountByUser(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if total != 3 {
		t.Fatalf("CountByUser: got %d, want 3", total)
	}

	byType, err := repo.CountByType(ctx, tx, user.ID, types.MemoryTypePreference)
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if byType != 1 {
		t.Fatalf("CountByType: got %d, want 1", byType)
	}

	deleted, err := repo.DeleteByID(ctx, tx, user.ID, got.ID)
	if err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if !deleted {
		t.Fatalf("DeleteByID: expected true")
	}
	deleted, err = repo.DeleteByID(ctx, tx, user.ID, got.ID)
	if err != nil {
		t.Fatalf("DeleteByID (repeat): %v", err)
	}
	if deleted {
		t.Fatalf("DeleteByID (repeat): expected false")
	}
}

func TestUserMemoryRepoDeleteFreesKey(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserMemoryRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "memoryresave@example.com")
	memory := testutil.SeedMemory(t, ctx, tx, user.ID, types.MemoryTypePreference, "tone", "formal", 1.0)

	deleted, err := repo.DeleteByID(ctx, tx, user.ID, memory.ID)
	if err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if !deleted {
		t.Fatalf("DeleteByID: expected true")
	}

	// The delete must free the (user_id, memory_type, key) slot: a fresh row
	// for the same triple has to insert cleanly.
	recreated, err := repo.Create(ctx, tx, []*types.UserMemory{{
		ID:         uuid.New(),
		UserID:     user.ID,
		MemoryType: types.MemoryTypePreference,
		Key:        "tone",
		Value:      "casual",
		Confidence: 1.0,
	}})
	if err != nil {
		t.Fatalf("Create after delete: %v", err)
	}
	if recreated[0].ID == memory.ID {
		t.Fatalf("Create after delete: reused the deleted row")
	}

	got, err := repo.GetByKey(ctx, tx, user.ID, types.MemoryTypePreference, "tone")
	if err != nil {
		t.Fatalf("GetByKey after resave: %v", err)
	}
	if got.Value != "casual" {
		t.Fatalf("GetByKey after resave: value=%q", got.Value)
	}
}

func TestUserMemoryRepoScopedToUser(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserMemoryRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "memoryowner@example.com")
	other := testutil.SeedUser(t, ctx, tx, "memoryother@example.com")
	memory := testutil.SeedMemory(t, ctx, tx, owner.ID, types.MemoryTypePattern, "mornings", "most responsive before noon", 1.0)

	// A different user must not be able to delete someone else's memory.
	deleted, err := repo.DeleteByID(ctx, tx, other.ID, memory.ID)
	if err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if deleted {
		t.Fatalf("DeleteByID: cross-user delete succeeded")
	}

	results, err := repo.SearchByValue(ctx, tx, other.ID, "noon", 10)
	if err != nil {
		t.Fatalf("SearchByValue: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("SearchByValue: leaked another user's memories: %+v", results)
	}
}
