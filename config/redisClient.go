package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis initializes the Redis client used by the issue rate limiter.
// It returns nil when no address is configured.
func ConnectRedis(ctx context.Context, cfg RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if cfg.Address == "" {
		log.Info("REDIS_ADDRESS not set, issue rate limiting disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       0, // default DB
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("connected to Redis", zap.String("address", cfg.Address))
	return client, nil
}
