package app

import (
	"strings"
	"time"

	"github.com/auditnet/validator-backend/internal/platform/envutil"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

type Config struct {
	Port                string
	Environment         string
	ServiceName         string
	RedisAddr           string
	LeaderboardCacheTTL time.Duration
	CORSAllowOrigins    []string
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.GetEnv("PORT", "8080", log)
	environment := envutil.GetEnv("ENVIRONMENT", "development", log)
	serviceName := envutil.GetEnv("OTEL_SERVICE_NAME", "audit-validator-backend", log)
	redisAddr := envutil.GetEnv("REDIS_ADDR", "", log)
	cacheTTLSeconds := envutil.GetEnvAsInt("LEADERBOARD_CACHE_TTL_SECONDS", 30, log)

	var origins []string
	if raw := envutil.GetEnv("CORS_ALLOW_ORIGINS", "", log); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		Port:                port,
		Environment:         environment,
		ServiceName:         serviceName,
		RedisAddr:           redisAddr,
		LeaderboardCacheTTL: time.Duration(cacheTTLSeconds) * time.Second,
		CORSAllowOrigins:    origins,
	}
}
