// Package cache is the TTL cache in front of the aggregate queries.
//
// Values are JSON-encoded on the way in and decoded on the way out so the
// in-process and Redis backends behave identically, including the subtle
// cases (a cached value never aliases live engine state).
package cache

import (
	"context"
	"time"
)

// Cache is a read-through aggregate cache keyed by query signature.
// Implementations must tolerate concurrent use. Set and Delete failures are
// absorbed by the implementation (a cache that cannot write degrades to a
// miss, never to an error on the read path).
type Cache interface {
	// Get decodes the cached value for key into dest and reports a hit.
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
	// Flush invalidates every key at once. Callers rely on this being
	// all-or-nothing so a refresh never leaves the dashboard half-stale.
	Flush(ctx context.Context)
}
