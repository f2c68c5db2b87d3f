package util

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// LRU is a typed, concurrency-safe LRU cache holding at most a fixed number
// of entries.
type LRU[K comparable, V any] struct {
	cache *lru.Cache
}

// NewLRU returns a new LRU cache with the given capacity. Capacity must be
// positive.
func NewLRU[K comparable, V any](capacity int) (*LRU[K, V], error) {
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &LRU[K, V]{cache: cache}, nil
}

// Put adds a new key-value pair to the cache, evicting the least recently used
// entry if the cache is full. If the key already exists, the value is updated.
func (c *LRU[K, V]) Put(key K, value V) {
	c.cache.Add(key, value)
}

// Get returns the value associated with the given key. The second return value
// is true if the key exists in the cache.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Remove drops a key from the cache.
func (c *LRU[K, V]) Remove(key K) {
	c.cache.Remove(key)
}

// Keys returns the cached keys from least to most recently used.
func (c *LRU[K, V]) Keys() []K {
	raw := c.cache.Keys()
	keys := make([]K, len(raw))
	for i, k := range raw {
		keys[i] = k.(K)
	}
	return keys
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	return c.cache.Len()
}

// Reset clears the cache.
func (c *LRU[K, V]) Reset() {
	c.cache.Purge()
}
