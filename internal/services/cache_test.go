package services

import (
	"testing"
	"time"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/providers"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestAICacheHitAndKeySensitivity(t *testing.T) {
	cache := NewAICache(time.Hour, testLogger(t))
	result := &providers.ChatResult{Response: "answer"}

	cache.Set("what is up", "phi3", result)

	got, ok := cache.Get("what is up", "phi3")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.Response != "answer" {
		t.Fatalf("got %q, want %q", got.Response, "answer")
	}

	// Any difference in prompt or model misses.
	if _, ok := cache.Get("what is up?", "phi3"); ok {
		t.Fatalf("prompt variant should miss")
	}
	if _, ok := cache.Get("what is up", "llama3"); ok {
		t.Fatalf("model variant should miss")
	}
}

func TestAICacheExpiry(t *testing.T) {
	cache := NewAICache(time.Hour, testLogger(t))
	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Set("prompt", "model", &providers.ChatResult{Response: "r"})

	current = current.Add(59 * time.Minute)
	if _, ok := cache.Get("prompt", "model"); !ok {
		t.Fatalf("entry expired before TTL")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := cache.Get("prompt", "model"); ok {
		t.Fatalf("entry survived past TTL")
	}

	// Lazy eviction: the expired lookup removed the entry.
	if stats := cache.Stats(); stats.Size != 0 {
		t.Fatalf("size=%d after expired lookup, want 0", stats.Size)
	}
}

func TestAICacheStatsAndClear(t *testing.T) {
	cache := NewAICache(90*time.Second, testLogger(t))

	cache.Set("a", "m", &providers.ChatResult{})
	cache.Set("b", "m", &providers.ChatResult{})

	stats := cache.Stats()
	if stats.Size != 2 {
		t.Fatalf("size=%d, want 2", stats.Size)
	}
	if stats.TTL != 90 {
		t.Fatalf("ttl=%v, want 90 seconds", stats.TTL)
	}

	cache.Clear()
	if stats := cache.Stats(); stats.Size != 0 {
		t.Fatalf("size=%d after clear, want 0", stats.Size)
	}
}
