package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/retail-receipt-ingest/internal/config"
)

// NewRedisClient opens and pings the Redis connection backing the durable
// session store. Callers should only invoke this when cfg.Addr is set; an
// empty address means the deployment runs on the in-process store.
func NewRedisClient(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Connected to Redis", "addr", cfg.Addr)
	return client, nil
}
