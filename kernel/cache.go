// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheEntry holds a cached value plus the bookkeeping needed for
// access-frequency-aware eviction.
type CacheEntry struct {
	Value       any
	Quality     float64
	CreatedAt   time.Time
	AccessCount uint64
}

// CacheStats summarizes cache activity for the benchmarking layer (C9).
type CacheStats struct {
	Size        int
	Hits        uint64
	Misses      uint64
	Evictions   uint64
}

// Cache is a bounded fingerprint-keyed store shared by the Committee and
// the Action Validator. Eviction approximates LRU by preferring zero-access
// entries first: once the cache hits capacity, up to 100
// never-accessed entries are dropped before any insertion proceeds.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*CacheEntry

	hitCount, missCount, evictCount atomic.Uint64

	hits, misses, evictions prometheus.Counter
}

// NewCache creates a cache bounded at capacity (spec default: 1000).
func NewCache(capacity int, reg prometheus.Registerer) *Cache {
	if capacity <= 0 {
		capacity = 1000
	}
	c := &Cache{
		capacity: capacity,
		entries:  make(map[string]*CacheEntry),
	}
	if reg != nil {
		c.hits = mustCounter(reg, "cognitive_core_cache_hits_total", "Cache hits.")
		c.misses = mustCounter(reg, "cognitive_core_cache_misses_total", "Cache misses.")
		c.evictions = mustCounter(reg, "cognitive_core_cache_evictions_total", "Cache evictions.")
	}
	return c
}

func mustCounter(reg prometheus.Registerer, name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
	}
	return c
}

// Get returns the cached value for key, if present, bumping its access
// count (so it is less likely to be evicted next).
func (c *Cache) Get(key string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.missCount.Add(1)
		if c.misses != nil {
			c.misses.Inc()
		}
		return CacheEntry{}, false
	}
	e.AccessCount++
	c.hitCount.Add(1)
	if c.hits != nil {
		c.hits.Inc()
	}
	return *e, true
}

// Put inserts or overwrites key, evicting up to 100 zero-access entries
// first if the cache is at capacity. Returns ErrCacheFull when eviction
// occurred; the error carries no count, the running eviction total is
// reported by Stats().Evictions.
func (c *Cache) Put(key string, value any, quality float64, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		evicted := c.evictLocked(100)
		c.evictCount.Add(uint64(evicted))
		if c.evictions != nil {
			c.evictions.Add(float64(evicted))
		}
		c.entries[key] = &CacheEntry{Value: value, Quality: quality, CreatedAt: now}
		if evicted > 0 {
			return ErrCacheFull
		}
		return nil
	}
	c.entries[key] = &CacheEntry{Value: value, Quality: quality, CreatedAt: now}
	return nil
}

// evictLocked removes up to max entries with AccessCount == 0, oldest
// first; if no entry qualifies it removes up to max of the oldest entries
// regardless of access count, to guarantee forward progress. Caller must
// hold c.mu.
func (c *Cache) evictLocked(max int) int {
	type kv struct {
		key       string
		entry     *CacheEntry
	}
	candidates := make([]kv, 0, len(c.entries))
	for k, e := range c.entries {
		if e.AccessCount == 0 {
			candidates = append(candidates, kv{k, e})
		}
	}
	if len(candidates) == 0 {
		for k, e := range c.entries {
			candidates = append(candidates, kv{k, e})
		}
	}
	// Oldest first.
	for i := 1; i < len(candidates); i++ {
		j := i
		for j > 0 && candidates[j-1].entry.CreatedAt.After(candidates[j].entry.CreatedAt) {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
			j--
		}
	}
	evicted := 0
	for _, c2 := range candidates {
		if evicted >= max {
			break
		}
		delete(c.entries, c2.key)
		evicted++
	}
	return evicted
}

// Stats reports the current size together with the running hit, miss and
// eviction totals, which are kept alongside the Prometheus counters
// registered at construction.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()
	return CacheStats{
		Size:      size,
		Hits:      c.hitCount.Load(),
		Misses:    c.missCount.Load(),
		Evictions: c.evictCount.Load(),
	}
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
