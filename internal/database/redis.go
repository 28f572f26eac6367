package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/adstudio/backend/internal/config"
)

// InitRedis connects to Redis. It returns nil when the server is unreachable;
// every caller treats a nil client as "feature disabled".
func InitRedis(ctx context.Context, cfg config.RedisConfig, logger logrus.FieldLogger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis connection failed, continuing without Redis")
		rdb.Close()
		return nil
	}

	logger.WithField("addr", cfg.Addr()).Info("Redis connection established")
	return rdb
}
