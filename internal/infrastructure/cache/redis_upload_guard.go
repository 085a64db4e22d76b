package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/orderhub/backend/internal/domain/ingest"
	"github.com/redis/go-redis/v9"
)

// RedisUploadGuard implements ingest.UploadGuard using Redis so that
// resubmission marks are shared across instances
type RedisUploadGuard struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisUploadGuard creates a Redis-backed upload guard
func NewRedisUploadGuard(cfg RedisConfig) (*RedisUploadGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisUploadGuard{
		client:    client,
		keyPrefix: "upload:guard:",
	}, nil
}

// NewRedisUploadGuardWithClient creates a guard with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisUploadGuardWithClient(client *redis.Client, keyPrefix string) *RedisUploadGuard {
	if keyPrefix == "" {
		keyPrefix = "upload:guard:"
	}
	return &RedisUploadGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire marks a fingerprint with a TTL using SETNX so that concurrent
// uploads of the same file race safely: exactly one wins.
func (g *RedisUploadGuard) Acquire(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	key := g.keyPrefix + fingerprint

	result, err := g.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark upload fingerprint: %w", err)
	}

	return result, nil
}

// Seen reports whether the fingerprint is currently marked
func (g *RedisUploadGuard) Seen(ctx context.Context, fingerprint string) (bool, error) {
	key := g.keyPrefix + fingerprint

	exists, err := g.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check upload fingerprint: %w", err)
	}

	return exists > 0, nil
}

// Close closes the Redis client
func (g *RedisUploadGuard) Close() error {
	return g.client.Close()
}

var _ ingest.UploadGuard = (*RedisUploadGuard)(nil)
