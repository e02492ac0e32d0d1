package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitResult describes the outcome of one Allow call.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}

// NewRateLimiter returns a Redis-backed limiter, or an in-memory one when
// client is nil.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) RateLimiter {
	if client == nil {
		return NewMemoryRateLimiter(limit, window, time.Now)
	}
	return &RedisRateLimiter{redis: client, limit: limit, window: window, now: time.Now}
}

// RedisRateLimiter shares counters across instances through Redis.
type RedisRateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (RateLimitResult, error) {
	windowStart := l.now().Truncate(l.window)
	redisKey := "taskflow:ratelimit:" + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitResult{}, err
	}

	return newResult(int(incr.Val()), l.limit, windowStart.Add(l.window)), nil
}

// MemoryRateLimiter keeps counters in process memory.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	current time.Time
	counts  map[string]int
}

// NewMemoryRateLimiter creates a MemoryRateLimiter.
func NewMemoryRateLimiter(limit int, window time.Duration, now func() time.Time) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limit:  limit,
		window: window,
		now:    now,
		counts: make(map[string]int),
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := l.now().Truncate(l.window)
	if !windowStart.Equal(l.current) {
		l.current = windowStart
		l.counts = make(map[string]int)
	}
	l.counts[key]++

	return newResult(l.counts[key], l.limit, windowStart.Add(l.window)), nil
}

func newResult(count, limit int, resetAt time.Time) RateLimitResult {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
