// Package cache holds the Redis-backed webhook de-duplication guard.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/money-transfer-wallet/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "webhook:paystack:"

// Deduper claims a key for a limited time. A false claim means someone already holds it.
type Deduper interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// redisClient is the subset of *redis.Client the guard needs
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

type RedisDeduper struct {
	client redisClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisDeduper(client redisClient, ttl time.Duration, logger *slog.Logger) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl, logger: logger}
}

func (d *RedisDeduper) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		d.logger.Error("Failed to claim webhook key", "key", key, "error", err)
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim so a later delivery can try again.
func (d *RedisDeduper) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		d.logger.Error("Failed to release webhook key", "key", key, "error", err)
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	return nil
}

// Nop claims everything. Used when Redis is disabled; the ledger's unique reference still holds.
type Nop struct{}

func (Nop) Claim(context.Context, string) (bool, error) { return true, nil }
func (Nop) Release(context.Context, string) error       { return nil }
