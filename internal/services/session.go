package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alexhq/alex-backend/internal/logger"
)

// SessionStore maps a user to their current conversation session id. The
// session groups a contiguous exchange of turns; losing it just starts a new
// session, so entries carry a TTL rather than living forever.
type SessionStore interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (string, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

const (
	defaultSessionTTL = 24 * time.Hour
	sessionKeyPrefix  = "ai:session:"
)

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration, log *logger.Logger) SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &redisSessionStore{
		client: client,
		ttl:    ttl,
		log:    log.With("service", "RedisSessionStore"),
	}
}

func (s *redisSessionStore) GetOrCreate(ctx context.Context, userID uuid.UUID) (string, error) {
	key := sessionKeyPrefix + userID.String()

	sessionID, err := s.client.Get(ctx, key).Result()
	if err == nil {
		// Refresh the TTL so an active conversation keeps its session.
		_ = s.client.Expire(ctx, key, s.ttl).Err()
		return sessionID, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.log.Error("Failed to read session from redis", "error", err, "user_id", userID)
		return "", err
	}

	sessionID = uuid.NewString()
	// SetNX so two concurrent requests for the same user agree on one session.
	ok, err := s.client.SetNX(ctx, key, sessionID, s.ttl).Result()
	if err != nil {
		s.log.Error("Failed to store session in redis", "error", err, "user_id", userID)
		return "", err
	}
	if !ok {
		if existing, err := s.client.Get(ctx, key).Result(); err == nil {
			return existing, nil
		}
	}
	return sessionID, nil
}

func (s *redisSessionStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, sessionKeyPrefix+userID.String()).Err()
}

type memorySessionEntry struct {
	sessionID string
	expiresAt time.Time
}

type memorySessionStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memorySessionEntry
	ttl     time.Duration

	now func() time.Time
}

// NewMemorySessionStore is the single-process fallback used when redis is not
// configured, and in tests.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &memorySessionStore{
		entries: make(map[uuid.UUID]memorySessionEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *memorySessionStore) GetOrCreate(_ context.Context, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if ok && s.now().Before(entry.expiresAt) {
		entry.expiresAt = s.now().Add(s.ttl)
		s.entries[userID] = entry
		return entry.sessionID, nil
	}

	sessionID := uuid.NewString()
	s.entries[userID] = memorySessionEntry{
		sessionID: sessionID,
		expiresAt: s.now().Add(s.ttl),
	}
	return sessionID, nil
}

func (s *memorySessionStore) Clear(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}
