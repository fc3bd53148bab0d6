package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/providers"
)

type Clients struct {
	Redis    *redis.Client
	Provider providers.Provider
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis is optional: without it sessions live in process memory.
	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, falling back to in-memory sessions", "error", err, "addr", cfg.RedisAddr)
			_ = redisClient.Close()
			redisClient = nil
		}
	}

	provider, err := wireProvider(log, cfg.AIProvider)
	if err != nil {
		return Clients{}, err
	}

	return Clients{
		Redis:    redisClient,
		Provider: provider,
	}, nil
}

// wireProvider selects exactly one LLM backend for the process lifetime.
func wireProvider(log *logger.Logger, name string) (providers.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case providers.NameOllama, "":
		return providers.NewOllamaProvider(log), nil
	case providers.NameLMStudio:
		return providers.NewLMStudioProvider(log), nil
	case providers.NameOpenAI:
		p, err := providers.NewOpenAIProvider(log)
		if err != nil {
			return nil, fmt.Errorf("init openai provider: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", name)
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
