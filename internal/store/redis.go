package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the shared redis client used for the report cache, the
// invalidation queue and the worker's daily auto-clock-out latch.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// AcquireDailyLatch takes a per-day latch so a job runs at most once
// per reference-timezone day across worker replicas. The latch expires
// on its own after ttl.
func (r *Redis) AcquireDailyLatch(ctx context.Context, name, dayKey string, ttl time.Duration) (bool, error) {
	key := "latch:" + name + ":" + dayKey
	return r.Client.SetNX(ctx, key, "1", ttl).Result()
}
