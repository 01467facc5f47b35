package environment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"climateguard/models"
)

// Cache stores generated readings per key with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) (models.EnvironmentalReading, bool, error)
	Set(ctx context.Context, key string, r models.EnvironmentalReading, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	reading models.EnvironmentalReading
	expires time.Time
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryCache returns an empty cache. A nil clock uses time.Now.
func NewMemoryCache(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{now: now, entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (models.EnvironmentalReading, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return models.EnvironmentalReading{}, false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return models.EnvironmentalReading{}, false, nil
	}
	return e.reading, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, r models.EnvironmentalReading, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{reading: r, expires: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// RedisCache shares readings between instances through Redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func redisKey(key string) string { return fmt.Sprintf("environment:reading:%s", key) }

func (c *RedisCache) Get(ctx context.Context, key string) (models.EnvironmentalReading, bool, error) {
	val, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if err == redis.Nil {
		return models.EnvironmentalReading{}, false, nil
	}
	if err != nil {
		return models.EnvironmentalReading{}, false, fmt.Errorf("failed to get reading: %w", err)
	}
	var r models.EnvironmentalReading
	if err := json.Unmarshal(val, &r); err != nil {
		return models.EnvironmentalReading{}, false, fmt.Errorf("decode reading: %w", err)
	}
	return r, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, r models.EnvironmentalReading, ttl time.Duration) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}
	return c.client.Set(ctx, redisKey(key), b, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, redisKey(key)).Err()
}
