package httpmiddleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter enforces a per-client request budget over fixed one-minute
// windows. Counters live in Redis (INCR + EXPIRE on the first hit) so the
// budget holds across instances; when Redis is unreachable the limiter falls
// back to an in-process window for the same key.
type Limiter struct {
	client *redis.Client
	limit  int

	mu    sync.Mutex
	local map[string]*localWindow
	now   func() time.Time
}

type localWindow struct {
	count   int
	resetAt time.Time
}

const windowLength = time.Minute

// NewLimiter creates a limiter allowing perMinute requests per key. client
// may be nil; counting is then in-process only.
func NewLimiter(client *redis.Client, perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &Limiter{
		client: client,
		limit:  perMinute,
		local:  make(map[string]*localWindow),
		now:    time.Now,
	}
}

// GinMiddleware returns a gin handler enforcing per-IP limits.
func (l *Limiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(c.Request.Context(), ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

// Allow consumes one request from the key's window.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.client != nil {
		if ok, counted := l.allowRedis(ctx, key); counted {
			return ok
		}
	}
	return l.allowLocal(key)
}

func (l *Limiter) allowRedis(ctx context.Context, key string) (ok, counted bool) {
	redisKey := "rollcall:ratelimit:" + key
	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, false
	}
	if n == 1 {
		_ = l.client.Expire(ctx, redisKey, windowLength).Err()
	}
	return n <= int64(l.limit), true
}

func (l *Limiter) allowLocal(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	w, existing := l.local[key]
	if !existing || now.After(w.resetAt) {
		l.local[key] = &localWindow{count: 1, resetAt: now.Add(windowLength)}
		return true
	}
	w.count++
	return w.count <= l.limit
}
