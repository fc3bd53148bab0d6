package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemorySessionStoreStableWithinTTL(t *testing.T) {
	store := NewMemorySessionStore(time.Hour).(*memorySessionStore)
	ctx := context.Background()
	userID := uuid.New()

	first, err := store.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := store.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate (repeat): %v", err)
	}
	if first != second {
		t.Fatalf("session changed within TTL: %q vs %q", first, second)
	}

	other, err := store.GetOrCreate(ctx, uuid.New())
	if err != nil {
		t.Fatalf("GetOrCreate (other user): %v", err)
	}
	if other == first {
		t.Fatalf("two users share a session")
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(time.Hour).(*memorySessionStore)
	current := time.Now()
	store.now = func() time.Time { return current }

	ctx := context.Background()
	userID := uuid.New()

	first, _ := store.GetOrCreate(ctx, userID)

	// An access inside the TTL refreshes it.
	current = current.Add(50 * time.Minute)
	refreshed, _ := store.GetOrCreate(ctx, userID)
	if refreshed != first {
		t.Fatalf("session rotated before expiry")
	}

	current = current.Add(61 * time.Minute)
	expired, _ := store.GetOrCreate(ctx, userID)
	if expired == first {
		t.Fatalf("expired session was reused")
	}
}

func TestMemorySessionStoreClear(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	first, _ := store.GetOrCreate(ctx, userID)
	if err := store.Clear(ctx, userID); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	second, _ := store.GetOrCreate(ctx, userID)
	if second == first {
		t.Fatalf("cleared session was reused")
	}
}
