package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bullionbook/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(Provide),
)

// Provide returns nil unless the limit is enabled and Redis is configured.
func Provide(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *WriteLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if !cfg.RateLimitEnabled || addr == "" {
		log.Info("write rate limit disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	log.Info("write rate limit enabled",
		zap.Float64("rate", cfg.RateLimitWriteRate),
		zap.Int("burst", cfg.RateLimitWriteBurst),
	)
	return NewWriteLimiter(NewTokenBucket(client), cfg.RateLimitWriteRate, cfg.RateLimitWriteBurst)
}
