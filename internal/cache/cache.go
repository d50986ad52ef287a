// Package cache provides the distributed token cache consumed by the
// token-exchange service. The cache is a performance optimization, never a
// correctness dependency: every failure degrades to a miss (read) or a
// skipped write, and the caller goes back to the source.
package cache

import (
	"context"
	"time"
)

// TokenCache is a key-value store with per-entry TTL, shared across
// processes. Interactions are full reads or full unconditional overwrites;
// concurrent duplicate writers are safe because values for the same key are
// interchangeable.
type TokenCache interface {
	// Get reads the value under key into dest; false means miss
	Get(ctx context.Context, key string, dest interface{}) bool
	// Set writes value under key with the given TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	// Delete removes a single key
	Delete(ctx context.Context, key string)
	// DeleteByPrefix removes every key under prefix and returns the count
	DeleteByPrefix(ctx context.Context, prefix string) int
	// Stats returns hit/miss counters
	Stats() Stats
}

// Stats contains cache statistics
type Stats struct {
	Hits    uint64
	Misses  uint64
	HitRate float64
}
