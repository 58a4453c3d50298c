// Package cache stores registry responses between cdnm runs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under the user cache directory
//     (~/.cache/cdnm/), the default for the CLI
//   - [RedisCache]: a shared Redis instance, for CI fleets that update many
//     documents against the same registry
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys are opaque strings; callers namespace them with [Scoped] (e.g. "npm:").
// Values are raw bytes with a per-entry TTL. A TTL of 0 means no expiry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Implementations must be safe for concurrent use: the resolver fetches
// packages from many goroutines at once.
type Cache interface {
	// Get returns the stored value and true on a hit, or false on a miss.
	// Expired and unreadable entries are misses, not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 stores the entry without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
