// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"sync"
	"sync/atomic"
)

const (
	// DefaultCacheCapacity is the entry count above which eviction runs.
	DefaultCacheCapacity = 1000

	// cacheKeyPrefixLen is how many runes of each text form the key.
	cacheKeyPrefixLen = 100
)

// SimilarityCache memoizes pairwise similarity values.
//
// Eviction is insertion-ordered, not LRU: once an insert pushes the size
// above capacity, the oldest half of the entries is dropped. Entries are
// idempotent so losing one only costs a recomputation.
type SimilarityCache struct {
	mu       sync.Mutex
	entries  map[string]float64
	order    []string
	capacity int

	hits   atomic.Int64
	misses atomic.Int64
}

// NewSimilarityCache creates a cache bounded by capacity.
// A non-positive capacity selects DefaultCacheCapacity.
func NewSimilarityCache(capacity int) *SimilarityCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &SimilarityCache{
		entries:  make(map[string]float64, capacity+1),
		order:    make([]string, 0, capacity+1),
		capacity: capacity,
	}
}

// Get returns the cached value for key.
func (c *SimilarityCache) Get(key string) (float64, bool) {
	c.mu.Lock()
	v, ok := c.entries[key]
	c.mu.Unlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put stores value under key and evicts the oldest half when the cache
// grows past capacity.
func (c *SimilarityCache) Put(key string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = value
		return
	}
	c.entries[key] = value
	c.order = append(c.order, key)

	if len(c.entries) > c.capacity {
		c.evictOldestHalfLocked()
	}
}

// evictOldestHalfLocked removes floor(size/2) entries in insertion order.
func (c *SimilarityCache) evictOldestHalfLocked() {
	n := len(c.order) / 2
	for _, key := range c.order[:n] {
		delete(c.entries, key)
	}
	remaining := make([]string, len(c.order)-n, c.capacity+1)
	copy(remaining, c.order[n:])
	c.order = remaining
}

// Len returns the number of cached entries.
func (c *SimilarityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the eviction threshold.
func (c *SimilarityCache) Capacity() int {
	return c.capacity
}

// Clear drops every entry and resets the hit counters.
func (c *SimilarityCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]float64, c.capacity+1)
	c.order = make([]string, 0, c.capacity+1)
	c.mu.Unlock()

	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns a snapshot of cache occupancy and hit counters.
func (c *SimilarityCache) Stats() CacheStats {
	return CacheStats{
		Size:     c.Len(),
		Capacity: c.capacity,
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
	}
}

// pairKey builds an order-independent key from the first runes of each text.
func pairKey(a, b string) string {
	a = runePrefix(a, cacheKeyPrefixLen)
	b = runePrefix(b, cacheKeyPrefixLen)
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

func runePrefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
