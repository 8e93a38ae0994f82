// Package cache provides an explicit in-memory result cache with time- and
// count-based eviction. Entries are keyed by the literal call argument; no
// normalization happens at this layer.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL matches the upstream API's informal freshness window.
const DefaultTTL = time.Hour

// DefaultMaxEntries bounds memory for long-lived interactive sessions.
const DefaultMaxEntries = 100

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is a process-lifetime map of key to (value, insertion time).
// Reads evict expired entries; writes past the entry cap evict the oldest
// insertion. Safe for concurrent use.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// Option configures the cache.
type Option[V any] func(*Cache[V])

// WithTTL sets the entry lifetime. Zero or negative disables expiry.
func WithTTL[V any](ttl time.Duration) Option[V] {
	return func(c *Cache[V]) {
		c.ttl = ttl
	}
}

// WithMaxEntries sets the entry cap. Zero or negative means unbounded.
func WithMaxEntries[V any](max int) Option[V] {
	return func(c *Cache[V]) {
		c.maxEntries = max
	}
}

// WithClock injects a time source for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) {
		c.now = now
	}
}

// New creates a cache with the default TTL and entry cap.
func New[V any](opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		entries:    make(map[string]entry[V]),
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the cached value for key, evicting it first if expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	if c.ttl > 0 && c.now().Sub(e.insertedAt) > c.ttl {
		delete(c.entries, key)
		return zero, false
	}

	return e.value, true
}

// Put stores a value under key. When the cap is reached the oldest entry is
// evicted first.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
}

// Len returns the current entry count.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true

	for key, e := range c.entries {
		if first || e.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.insertedAt
			first = false
		}
	}

	if !first {
		delete(c.entries, oldestKey)
	}
}
