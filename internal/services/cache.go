package services

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
	"time"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/providers"
)

const defaultCacheTTL = time.Hour

type cacheEntry struct {
	response  *providers.ChatResult
	timestamp time.Time
}

type CacheStats struct {
	Size int     `json:"size"`
	TTL  float64 `json:"ttl"`
}

// AICache is a process-lifetime response cache keyed by model and prompt.
// Expiry is lazy: an entry past its TTL is evicted when that key is next
// looked up, no background sweep.
type AICache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	log     *logger.Logger

	now func() time.Time
}

func NewAICache(ttl time.Duration, log *logger.Logger) *AICache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &AICache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		log:     log.With("service", "AICache"),
		now:     time.Now,
	}
}

// cacheKey hashes "model:prompt" so identical calls share an entry and any
// character difference misses.
func cacheKey(prompt, model string) string {
	sum := md5.Sum([]byte(model + ":" + prompt))
	return hex.EncodeToString(sum[:])
}

func (c *AICache) Get(prompt, model string) (*providers.ChatResult, bool) {
	key := cacheKey(prompt, model)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.timestamp) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	c.log.Info("Cache hit", "key_prefix", key[:8])
	return entry.response, true
}

func (c *AICache) Set(prompt, model string, response *providers.ChatResult) {
	key := cacheKey(prompt, model)

	c.mu.Lock()
	c.entries[key] = cacheEntry{response: response, timestamp: c.now()}
	c.mu.Unlock()

	c.log.Info("Cached response", "key_prefix", key[:8])
}

func (c *AICache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()

	c.log.Info("Cache cleared")
}

func (c *AICache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size: len(c.entries),
		TTL:  c.ttl.Seconds(),
	}
}
