// Package cache keeps rendered reconciliation reports in redis so the
// engine does not recompute a term's worth of days on every request.
// Keys are tracked per (student, term) so a clock-event edit can drop
// exactly the reports it staled.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Reports is a redis-backed report cache.
type Reports struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a cache with the given entry TTL.
func New(client *redis.Client, ttl time.Duration) *Reports {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Reports{client: client, ttl: ttl}
}

func reportKey(studentID, termID, name string) string {
	return "report:" + studentID + ":" + termID + ":" + name
}

func indexKey(studentID, termID string) string {
	return "reportkeys:" + studentID + ":" + termID
}

// Get unmarshals a cached report into dest. found is false on a miss;
// redis errors degrade to a miss so the caller just recomputes.
func (r *Reports) Get(ctx context.Context, studentID, termID, name string, dest any) (found bool) {
	if r == nil || r.client == nil {
		return false
	}
	raw, err := r.client.Get(ctx, reportKey(studentID, termID, name)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores a report and records its key in the student/term index so
// Invalidate can find it later.
func (r *Reports) Set(ctx context.Context, studentID, termID, name string, value any) error {
	if r == nil || r.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	key := reportKey(studentID, termID, name)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, raw, r.ttl)
	pipe.SAdd(ctx, indexKey(studentID, termID), key)
	// The index outlives its members slightly; stale members are
	// harmless to delete.
	pipe.Expire(ctx, indexKey(studentID, termID), r.ttl*2)
	_, err = pipe.Exec(ctx)
	return err
}

// Invalidate drops every cached report for one student/term. Called
// after any clock-event mutation.
func (r *Reports) Invalidate(ctx context.Context, studentID, termID string) error {
	if r == nil || r.client == nil {
		return nil
	}
	idx := indexKey(studentID, termID)
	keys, err := r.client.SMembers(ctx, idx).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	keys = append(keys, idx)
	return r.client.Del(ctx, keys...).Err()
}
