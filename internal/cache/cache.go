// Package cache provides a small TTL memoization cache used to absorb
// rerun storms against rate-limited upstreams.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	expiresAt time.Time
	value     V
}

// Cache memoizes computed values per key for a TTL. Expired entries are
// recomputed lazily on the next access, never refreshed pre-emptively.
// Concurrent misses for the same key are collapsed into one computation.
type Cache[V any] struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]entry[V]
	group singleflight.Group
}

// New creates a cache with the given TTL. A non-positive TTL disables
// caching entirely; GetOrCompute then always calls through.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{ttl: ttl, items: make(map[string]entry[V])}
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. Errors are not cached; the next access recomputes.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if c.ttl <= 0 {
		return compute()
	}
	if v, ok := c.get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.items[key] = entry[V]{expiresAt: time.Now().Add(c.ttl), value: v}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

func (c *Cache[V]) get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Invalidate drops the entry for key if present.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}
