package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taskflow/taskflow-api/internal/models"
)

// StatsCache keeps per-user task stats in Redis. With a nil client or a zero
// TTL every method is a no-op, so callers always fall through to the database.
type StatsCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStatsCache creates a StatsCache using the provided Redis client and TTL.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl < 0 {
		ttl = 0
	}
	return &StatsCache{redis: client, ttl: ttl}
}

// Get returns cached stats for userID, if present.
func (c *StatsCache) Get(ctx context.Context, userID uint64) (models.TaskStats, bool) {
	if c.redis == nil || c.ttl == 0 {
		return models.TaskStats{}, false
	}

	data, err := c.redis.Get(ctx, statsCacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On redis errors fall back to the database without failing.
			_ = c.redis.Del(ctx, statsCacheKey(userID)).Err()
		}
		return models.TaskStats{}, false
	}

	var stats models.TaskStats
	if err := json.Unmarshal(data, &stats); err != nil {
		_ = c.redis.Del(ctx, statsCacheKey(userID)).Err()
		return models.TaskStats{}, false
	}
	return stats, true
}

// Set stores stats for userID.
func (c *StatsCache) Set(ctx context.Context, userID uint64, stats models.TaskStats) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, statsCacheKey(userID), data, c.ttl).Err()
}

// Evict drops cached stats for userID.
func (c *StatsCache) Evict(ctx context.Context, userID uint64) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, statsCacheKey(userID)).Err()
}

func statsCacheKey(userID uint64) string {
	return "taskflow:stats:" + strconv.FormatUint(userID, 10)
}
