// Package cache keeps fetched metal payloads for the revalidation window.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"svacron-metals/internal/models"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// MetalCache is implemented by both cache tiers
type MetalCache interface {
	Get(ctx context.Context, metal models.MetalType) (*models.MetalData, error)
	Set(ctx context.Context, metal models.MetalType, data *models.MetalData, ttl time.Duration) error
	Delete(ctx context.Context, metal models.MetalType) error
	Tier() string
}

// Open builds the configured backend. For redis the connected client is
// returned too so callers can share it with the publisher; it is nil for
// the memory backend.
func Open(ctx context.Context, backend string, opts *redis.Options, logger *logrus.Logger) (MetalCache, *redis.Client, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryMetalCache(), nil, nil
	case BackendRedis:
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("Redis connected successfully")
		return NewRedisMetalCache(client, logger), client, nil
	}
	return nil, nil, fmt.Errorf("unknown cache backend %q", backend)
}
