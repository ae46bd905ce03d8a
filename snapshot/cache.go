package snapshot

import (
	"sync"
	"time"
)

// ============================================================================
// CACHE — In-process TTL cache
// ============================================================================

// Observer is told about every lookup. The API wires it to prometheus.
type Observer interface {
	Hit()
	Miss()
}

type entry[T any] struct {
	value   T
	expires time.Time
}

// Cache is a TTL map safe for concurrent use. Values are stored as given;
// callers must only cache immutable values.
type Cache[T any] struct {
	mu       sync.RWMutex
	ttl      time.Duration
	entries  map[string]entry[T]
	observer Observer
	now      func() time.Time
}

// NewCache creates a cache whose entries live for ttl. A zero ttl never
// expires. observer may be nil.
func NewCache[T any](ttl time.Duration, observer Observer) *Cache[T] {
	return &Cache[T]{
		ttl:      ttl,
		entries:  make(map[string]entry[T]),
		observer: observer,
		now:      time.Now,
	}
}

// Get returns the live value for key.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.expired(e) {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && c.expired(cur) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		ok = false
	}

	if c.observer != nil {
		if ok {
			c.observer.Hit()
		} else {
			c.observer.Miss()
		}
	}
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, replacing any previous entry.
func (c *Cache[T]) Put(key string, value T) {
	e := entry[T]{value: value}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Delete drops key.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len counts stored entries, expired ones included until their next lookup.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[T]) expired(e entry[T]) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}
