package cache

import (
	"context"
	"time"
)

// ScopedCache prefixes every key before delegating to an inner Cache.
// It lets several registries share one backend without key collisions.
//
// Example usage:
//
//	npm := cache.Scoped(base, "npm:")
//	npm.Set(ctx, "react", data, ttl) // stored as "npm:react"
type ScopedCache struct {
	inner  Cache
	prefix string
}

// Scoped returns a view of c with prefix prepended to all keys.
// Scopes nest: Scoped(Scoped(c, "a:"), "b:") uses the prefix "a:b:".
// A nil inner cache is replaced by a NullCache.
func Scoped(c Cache, prefix string) Cache {
	if c == nil {
		c = NewNullCache()
	}
	if s, ok := c.(*ScopedCache); ok {
		return &ScopedCache{inner: s.inner, prefix: s.prefix + prefix}
	}
	return &ScopedCache{inner: c, prefix: prefix}
}

// Prefix returns the key prefix of this scope.
func (s *ScopedCache) Prefix() string { return s.prefix }

// Get retrieves a prefixed key from the inner cache.
func (s *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set stores a prefixed key in the inner cache.
func (s *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

// Delete removes a prefixed key from the inner cache.
func (s *ScopedCache) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the inner cache.
func (s *ScopedCache) Close() error { return s.inner.Close() }

var _ Cache = (*ScopedCache)(nil)
