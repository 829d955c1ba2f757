package cache

import (
	"sync"
	"time"
)

// entry pairs a stored value with the time it was written.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a concurrency-safe key/value store where entries expire after a
// fixed TTL. Expired entries are not physically evicted; they are simply
// reported as absent by Get and superseded by the next Put. The key space in
// this service is small and fixed (one key per known device plus the device
// list), so the map stays bounded for the life of the process.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration

	// now is swappable in tests.
	now func() time.Time
}

// New creates a Cache whose entries are valid for ttl after each Put.
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value for key and whether a still-valid entry exists.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, replacing any previous entry.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}
