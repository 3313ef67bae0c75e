// Package cache provides the bounded lookup cache mapping an external key
// (e.g. a request fingerprint) to a resolved stage component.
package cache

import (
	"sync"
	"time"
)

// DefaultCapacity is the entry limit used when none is configured.
const DefaultCapacity = 1000

// hitRefreshInterval controls how often a hit refreshes the entry timestamp.
// Refreshing on every access would make eviction strict LRU at the cost of a
// timestamp write per read; every 10th hit is a cheap approximation.
const hitRefreshInterval = 10

// Entry is a resolved component with bookkeeping for eviction.
type Entry struct {
	Component string    `json:"component"`
	Timestamp time.Time `json:"timestamp"`
	Hits      uint64    `json:"hits"`
}

// Cache is a bounded key→component map. When the entry limit is exceeded the
// single oldest entry by timestamp is evicted. Safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	capacity int

	onHit  func()
	onMiss func()

	now func() time.Time
}

// New creates a cache with the given capacity; capacity <= 0 falls back to
// DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[string]*Entry),
		capacity: capacity,
		now:      time.Now,
	}
}

// OnHit registers a hook invoked once per cache hit.
func (c *Cache) OnHit(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHit = fn
}

// OnMiss registers a hook invoked once per cache miss.
func (c *Cache) OnMiss(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMiss = fn
}

// Put inserts or overwrites an entry with a fresh timestamp and zero hits.
// If the cache then exceeds its capacity, the oldest entry is evicted. The
// O(n) scan is fine at the stated scale.
func (c *Cache) Put(key, component string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &Entry{
		Component: component,
		Timestamp: c.now(),
	}

	if len(c.entries) > c.capacity {
		c.evictOldestLocked()
	}
}

// Get returns the component for key and whether it was present. A hit
// increments the hit count and refreshes the timestamp every 10th hit; a
// miss has no side effects.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		if c.onMiss != nil {
			c.onMiss()
		}
		return "", false
	}

	entry.Hits++
	if entry.Hits%hitRefreshInterval == 0 {
		entry.Timestamp = c.now()
	}
	if c.onHit != nil {
		c.onHit()
	}
	return entry.Component, true
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a copy of the cache table, used for snapshot export.
func (c *Cache) Entries() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Entry, len(c.entries))
	for k, e := range c.entries {
		out[k] = *e
	}
	return out
}

// Restore replaces the cache table verbatim, preserving timestamps and hit
// counts. Used for snapshot import.
func (c *Cache) Restore(entries map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry, len(entries))
	for k, e := range entries {
		entry := e
		c.entries[k] = &entry
	}
}

// evictOldestLocked removes the entry with the oldest timestamp. Caller must
// hold the write lock.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.Timestamp.Before(oldest) {
			oldestKey = k
			oldest = e.Timestamp
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
