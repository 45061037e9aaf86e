package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the Redis store behind stock status reads. Kiosk dashboards poll
// status constantly; serving them from Redis keeps that traffic off the
// stock_levels table. Adjustments delete the pair's entry, so a stale TTL
// is the worst case, never a stale write. Implements usecase.Cache.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache creates a Cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		prefix: "cache:",
	}
}

// Get returns the cached value, or redis.Nil error on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, c.prefix+key).Bytes()
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete drops key, invalidating the cached entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
