package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	genKey      = "stockbook:snapshot:gen"
	snapshotTTL = 10 * time.Minute
)

// Redis shares the projection between several API processes. Snapshots are keyed by a
// generation counter; Invalidate bumps the counter and old generations expire on their own.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, ttl: snapshotTTL}
}

func snapshotKey(gen int64) string { return "stockbook:snapshot:" + strconv.FormatInt(gen, 10) }

func (r *Redis) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *Redis) Get(ctx context.Context, load Loader) (Snapshot, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot generation: %w", err)
	}
	raw, err := r.client.Get(ctx, snapshotKey(gen)).Bytes()
	if err == nil {
		var s Snapshot
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return Snapshot{}, fmt.Errorf("snapshot get: %w", err)
	}

	s, err := load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot encode: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey(gen), b, r.ttl).Err(); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot set: %w", err)
	}
	return s, nil
}

func (r *Redis) Invalidate(ctx context.Context) error {
	return r.client.Incr(ctx, genKey).Err()
}
