package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Cache on a go-redis client.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps an existing Redis client.  The client may not be
// nil; callers that failed to connect should skip constructing a
// cache and run the aggregator uncached instead.
func NewRedis(rdb *redis.Client) *Redis {
	if rdb == nil {
		panic("nil redis client passed to NewRedis")
	}
	return &Redis{rdb: rdb}
}

// Get fetches a key, mapping redis.Nil to ErrMiss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	bs, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return bs, nil
}

// Set stores a value with an expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.SetEx(ctx, key, value, ttl).Err()
}

// DeleteByPattern walks the keyspace with SCAN and deletes matches in
// batches.  SCAN keeps the server responsive; the number of snapshot
// keys is small, so a full walk is cheap.
func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
