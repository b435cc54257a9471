// Package aggcache memoizes windowed metric computations. Entries are
// keyed by metric, grouping dimension, window and the data version of
// the store at compute time, so a bumped version naturally misses and
// recomputes without any explicit invalidation.
package aggcache

import (
	"container/list"
	"sync"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/schema"
)

// LRUCache is an in-process cache with optional capacity-based
// eviction. Concurrent requests for the same key are serialized so a
// computation runs at most once; requests for different keys proceed
// in parallel.
type LRUCache struct {
	mu       sync.Mutex
	capacity int // 0 = unbounded
	entries  map[contract.CacheKey]*list.Element
	order    *list.List // front = most recently used

	inflight map[contract.CacheKey]*sync.Mutex
}

var _ contract.MetricCache = &LRUCache{} // Compile-time check

type cacheEntry struct {
	key     contract.CacheKey
	results []schema.MetricResult
}

// NewLRUCache builds a cache holding at most capacity entries.
// A capacity of zero disables eviction.
func NewLRUCache(capacity int) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		entries:  make(map[contract.CacheKey]*list.Element),
		order:    list.New(),
		inflight: make(map[contract.CacheKey]*sync.Mutex),
	}
}

// GetOrCompute returns the cached results for key, or runs compute and
// stores its output. A failed compute stores nothing, so the next
// caller retries.
func (c *LRUCache) GetOrCompute(key contract.CacheKey, compute func() ([]schema.MetricResult, error)) ([]schema.MetricResult, error) {
	// 1. Fast path under the cache lock.
	c.mu.Lock()
	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		results := elem.Value.(*cacheEntry).results
		c.mu.Unlock()
		return results, nil
	}

	// 2. Claim the per-key compute lock, then release the cache lock so
	// other keys are not blocked while compute runs.
	keyMu, ok := c.inflight[key]
	if !ok {
		keyMu = &sync.Mutex{}
		c.inflight[key] = keyMu
	}
	c.mu.Unlock()

	keyMu.Lock()
	defer keyMu.Unlock()

	// 3. Re-check: a concurrent caller holding the key lock first may
	// have already stored the results.
	c.mu.Lock()
	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		results := elem.Value.(*cacheEntry).results
		c.mu.Unlock()
		return results, nil
	}
	c.mu.Unlock()

	results, err := compute()
	if err != nil {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.store(key, results)
	delete(c.inflight, key)
	c.mu.Unlock()
	return results, nil
}

// store inserts an entry and evicts the least recently used one when
// over capacity. Callers hold c.mu.
func (c *LRUCache) store(key contract.CacheKey, results []schema.MetricResult) {
	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).results = results
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, results: results})
	if c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of live cache entries.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops all cached entries.
func (c *LRUCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[contract.CacheKey]*list.Element)
	c.order.Init()
}
