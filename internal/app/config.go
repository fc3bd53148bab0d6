package app

import (
	"time"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/utils"
)

type Config struct {
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	AIProvider    string
	AICacheTTL    time.Duration
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	aiProvider := utils.GetEnv("AI_PROVIDER", "ollama", log)
	aiCacheTTLSeconds := utils.GetEnvAsInt("AI_CACHE_TTL", 3600, log)
	sessionTTLSeconds := utils.GetEnvAsInt("AI_SESSION_TTL", 86400, log)
	redisAddr := utils.GetEnv("REDIS_ADDR", "", nil)
	redisPassword := utils.GetEnv("REDIS_PASSWORD", "", nil)
	return Config{
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		AIProvider:      aiProvider,
		AICacheTTL:      time.Duration(aiCacheTTLSeconds) * time.Second,
		SessionTTL:      time.Duration(sessionTTLSeconds) * time.Second,
		RedisAddr:       redisAddr,
		RedisPassword:   redisPassword,
	}
}
