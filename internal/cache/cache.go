package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a small JSON cache over Redis, used for dashboard statistics.
// All operations degrade to a miss when Redis is unreachable; callers
// recompute rather than fail the request.
type Cache struct {
	Client *redis.Client
}

// New connects to redis with short timeouts.
func New(addr string) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Cache{Client: client}
}

// Healthy verifies redis connectivity.
func (c *Cache) Healthy(ctx context.Context) bool {
	if c == nil || c.Client == nil {
		return false
	}
	return c.Client.Ping(ctx).Err() == nil
}

// GetJSON loads key into dest. Returns false on miss, error, or bad payload.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil || c.Client == nil {
		return false
	}
	raw, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores value under key with the given TTL. Errors are ignored;
// the cache is advisory.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.Client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.Client.Set(ctx, key, raw, ttl).Err()
}
