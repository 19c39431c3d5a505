package lock

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bullionbook/internal/config"
	"github.com/smallbiznis/bullionbook/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Provide picks the Redis locker when REDIS_ADDR is set so several API
// instances serialize on the same customer, and the in-process one otherwise.
func Provide(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) domain.Locker {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Info("ledger lock: in-process")
		return NewLocal()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Info("ledger lock: redis", zap.String("addr", addr))
	return NewRedis(client, 0)
}
