// Package ratelimit limits request rates per client key.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request for key is allowed. When it is
// not, the returned duration is how long the caller should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration)
}

// =============================================================================
// SlidingWindowLimiter - Redis sliding window
// =============================================================================

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local max_requests = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)
	if count < max_requests then
		redis.call('ZADD', key, now, now .. '-' .. math.random())
		redis.call('PEXPIRE', key, window_ms * 2)
		return 1
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if #oldest > 0 then
		return -(oldest[2] + window_ms - now)
	end
	return 0
`)

// SlidingWindowLimiter implements sliding window rate limiting using Redis.
// Redis errors let the request through.
type SlidingWindowLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func NewSlidingWindowLimiter(redisClient *redis.Client, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l.redis == nil || l.limit <= 0 {
		return true, 0
	}

	now := time.Now()
	result, err := slidingWindowScript.Run(ctx, l.redis, []string{fmt.Sprintf("ratelimit:%s", key)},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
	).Int64()
	if err != nil {
		return true, 0
	}

	if result == 1 {
		return true, 0
	}
	if result < 0 {
		return false, time.Duration(-result) * time.Millisecond
	}
	return false, l.window
}

// =============================================================================
// MemoryLimiter - in-process fixed window, used when Redis is not configured
// =============================================================================

type window struct {
	count     int
	expiresAt time.Time
}

// MemoryLimiter counts requests per key in fixed windows.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	size    time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(limit int, size time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		size:    size,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		l.sweep(now)
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.size)}
		return true, 0
	}
	if w.count >= l.limit {
		return false, w.expiresAt.Sub(now)
	}
	w.count++
	return true, 0
}

// sweep drops expired windows. Caller holds mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}

// New returns a Redis limiter when a client is available, otherwise an
// in-memory one.
func New(redisClient *redis.Client, limit int, size time.Duration) Limiter {
	if redisClient != nil {
		return NewSlidingWindowLimiter(redisClient, limit, size)
	}
	return NewMemoryLimiter(limit, size)
}
