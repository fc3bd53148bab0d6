package repos

import (
	"context"
	"testing"
	"time"

	"github.com/alexhq/alex-backend/internal/repos/testutil"
	"github.com/alexhq/alex-backend/internal/types"
)

func TestTaskRepoListActiveByAssignee(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewTaskRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "taskrepo@example.com")

	soon := time.Now().UTC().Add(24 * time.Hour)
	later := time.Now().UTC().Add(72 * time.Hour)

	calm := testutil.SeedTask(t, ctx, tx, user.ID, types.TaskStatusTodo, false, &soon)
	urgentLate := testutil.SeedTask(t, ctx, tx, user.ID, types.TaskStatusInProgress, true, &later)
	urgentSoon := testutil.SeedTask(t, ctx, tx, user.ID, types.TaskStatusTodo, true, &soon)
	testutil.SeedTask(t, ctx, tx, user.ID, types.TaskStatusDone, true, &soon)

	active, err := repo.ListActiveByAssignee(ctx, tx, user.ID, 10)
	if err != nil {
		t.Fatalf("ListActiveByAssignee: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("ListActiveByAssignee: got %d tasks, want 3 (done excluded)", len(active))
	}
	if active[0].ID != urgentSoon.ID || active[1].ID != urgentLate.ID || active[2].ID != calm.ID {
		t.Fatalf("ListActiveByAssignee: wrong order: %v, %v, %v", active[0].ID, active[1].ID, active[2].ID)
	}
}

func TestTaskRepoListByAssigneeStatusFilter(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewTaskRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "taskfilter@example.com")
	testutil.SeedTask(t, ctx, tx, user.ID, types.TaskStatusTodo, false, nil)
	testutil.SeedTask(t, ctx, tx, user.ID, types.TaskStatusDone, false, nil)

	todos, err := repo.ListByAssignee(ctx, tx, user.ID, types.TaskStatusTodo)
	if err != nil {
		t.Fatalf("ListByAssignee: %v", err)
	}
	if len(todos) != 1 || todos[0].Status != types.TaskStatusTodo {
		t.Fatalf("ListByAssignee: unexpected result: %+v", todos)
	}

	all, err := repo.ListByAssignee(ctx, tx, user.ID, "")
	if err != nil {
		t.Fatalf("ListByAssignee (all): %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListByAssignee (all): got %d, want 2", len(all))
	}
}
