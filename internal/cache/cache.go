// Package cache defines the snapshot cache used by the availability
// aggregator.  The interface is injected explicitly so tests can use
// an in-memory fake and so no global client leaks into the engine.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a byte-oriented key/value store with TTLs and bulk
// pattern deletion.  Implementations must treat every operation as
// best-effort from the caller's point of view: the aggregator
// degrades to recomputation on any error.
type Cache interface {
	// Get returns the cached value or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteByPattern removes every key matching the glob-style
	// pattern (e.g. "avail:ONLINE:*").
	DeleteByPattern(ctx context.Context, pattern string) error
}
