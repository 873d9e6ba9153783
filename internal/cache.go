package internal

import "sync"

// recordCache is an exact-match in-memory cache owned by a single
// adapter instance. Entries are inserted on first load and served
// verbatim until the whole cache is cleared; there is no per-entry
// invalidation, because a raw file-change event carries no information
// about which entries it affects.
type recordCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

func newRecordCache[V any]() *recordCache[V] {
	return &recordCache[V]{entries: make(map[string]V)}
}

// Get retrieves a cached value by key.
func (c *recordCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a value under key.
func (c *recordCache[V]) Put(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

// Clear drops every entry.
func (c *recordCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]V)
}

// Len returns the number of cached entries.
func (c *recordCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
