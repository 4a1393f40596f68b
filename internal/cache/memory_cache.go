package cache

import (
	"context"
	"sync"
	"time"

	"svacron-metals/internal/models"
)

type memoryEntry struct {
	data      *models.MetalData
	expiresAt time.Time
}

// MemoryMetalCache is an in-process cache for single-instance deployments
type MemoryMetalCache struct {
	mu      sync.RWMutex
	entries map[models.MetalType]memoryEntry
	now     func() time.Time
}

func NewMemoryMetalCache() *MemoryMetalCache {
	return &MemoryMetalCache{
		entries: make(map[models.MetalType]memoryEntry),
		now:     time.Now,
	}
}

// Tier names this cache in metrics
func (c *MemoryMetalCache) Tier() string {
	return "memory"
}

// Set caches metal data until ttl elapses
func (c *MemoryMetalCache) Set(_ context.Context, metal models.MetalType, data *models.MetalData, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[metal] = memoryEntry{
		data:      data,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Get returns the cached value, or ErrMiss once it has expired
func (c *MemoryMetalCache) Get(_ context.Context, metal models.MetalType) (*models.MetalData, error) {
	c.mu.RLock()
	entry, ok := c.entries[metal]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, ErrMiss
	}
	return entry.data, nil
}

// Delete removes a metal from cache
func (c *MemoryMetalCache) Delete(_ context.Context, metal models.MetalType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, metal)
	return nil
}
