package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"svacron-metals/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "metal:"

// ErrMiss is returned by Get when nothing fresh is cached for a metal
var ErrMiss = errors.New("cache miss")

// RedisMetalCache stores fetched metal payloads in Redis with a TTL
type RedisMetalCache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisMetalCache(client *redis.Client, logger *logrus.Logger) *RedisMetalCache {
	return &RedisMetalCache{
		client: client,
		logger: logger,
	}
}

// Tier names this cache in metrics
func (c *RedisMetalCache) Tier() string {
	return "redis"
}

// Set caches metal data until ttl elapses
func (c *RedisMetalCache) Set(ctx context.Context, metal models.MetalType, data *models.MetalData, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, keyPrefix+string(metal), payload, ttl).Err()
}

// Get retrieves cached metal data
func (c *RedisMetalCache) Get(ctx context.Context, metal models.MetalType) (*models.MetalData, error) {
	payload, err := c.client.Get(ctx, keyPrefix+string(metal)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var data models.MetalData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, err
	}

	return &data, nil
}

// Delete removes a metal from cache
func (c *RedisMetalCache) Delete(ctx context.Context, metal models.MetalType) error {
	return c.client.Del(ctx, keyPrefix+string(metal)).Err()
}
