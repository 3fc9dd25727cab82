package database

import (
	"context"
	"fmt"
	"time"

	"storefront-catalog/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates a go-redis client. Connections are dialed lazily, so an
// unreachable server surfaces on first use or through PingRedis.
func NewRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// PingRedis validates connectivity at startup.
func PingRedis(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis at %s: %w", rdb.Options().Addr, err)
	}
	return nil
}
