// Package sequencecache implements an in-memory fast path: a per-name
// pre-allocated range consumed via CAS, so the common case of ID
// generation costs an atomic increment rather than a storage round-trip.
package sequencecache

import (
	"sync"
	"sync/atomic"

	"github.com/idbuilder/worker/internal/domain"
)

// CachedSequence is a lock-free atomic counter over a fixed pre-allocated
// range. Grounded on carloslenz-idgen's atomic add-and-return counter idiom,
// generalized here to support an arbitrary (possibly negative) step and an
// exhaustion boundary.
type CachedSequence struct {
	current atomic.Int64
	max     int64
	step    int64
}

// NewCachedSequence seeds a cache entry from a freshly allocated storage
// range.
func NewCachedSequence(r domain.SequenceRange) *CachedSequence {
	c := &CachedSequence{max: r.End, step: r.Step}
	c.current.Store(r.Start)
	return c
}

func (c *CachedSequence) exhausted(v int64) bool {
	if c.step > 0 {
		return v > c.max
	}
	return v < c.max
}

// Next performs the CAS loop: read current, fail if exhausted, otherwise
// attempt to advance by step and retry on contention.
// Returns the pre-swap value and ok=true on success.
func (c *CachedSequence) Next() (int64, bool) {
	for {
		v := c.current.Load()
		if c.exhausted(v) {
			return 0, false
		}
		if c.current.CompareAndSwap(v, v+c.step) {
			return v, true
		}
	}
}

// Remaining returns the count of values still available in this entry.
func (c *CachedSequence) Remaining() int64 {
	v := c.current.Load()
	if c.exhausted(v) {
		return 0
	}
	step := c.step
	if step < 0 {
		step = -step
	}
	diff := c.max - v
	if diff < 0 {
		diff = -diff
	}
	return diff/step + 1
}

// NeedsRefill reports whether fewer than threshold values remain.
func (c *CachedSequence) NeedsRefill(threshold int64) bool {
	return c.Remaining() < threshold
}

// Cache is a name-keyed map of CachedSequence entries behind a read/write
// lock; the entries themselves are mutated lock-free via CAS.
type Cache struct {
	mu               sync.RWMutex
	entries          map[string]*CachedSequence
	prefetchThreshold int64
}

// New creates an empty cache. prefetchThreshold is the default refill
// trigger used by NeedsPrefetch.
func New(prefetchThreshold int64) *Cache {
	return &Cache{
		entries:           make(map[string]*CachedSequence),
		prefetchThreshold: prefetchThreshold,
	}
}

// Get returns exactly `count` values for name, or ok=false with the shortfall
// if the cached entry is missing or cannot serve the full count.
func (c *Cache) Get(name string, count uint32) (values []int64, missing uint32, ok bool) {
	c.mu.RLock()
	entry, found := c.entries[name]
	c.mu.RUnlock()

	if !found {
		return nil, count, false
	}

	values = make([]int64, 0, count)
	for uint32(len(values)) < count {
		v, next := entry.Next()
		if !next {
			break
		}
		values = append(values, v)
	}

	if uint32(len(values)) < count {
		return nil, count - uint32(len(values)), false
	}
	return values, 0, true
}

// Put installs (replacing any prior entry) a freshly allocated range as the
// cache entry for name.
func (c *Cache) Put(name string, r domain.SequenceRange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = NewCachedSequence(r)
}

// Remove evicts the cache entry for name, used by delete_config.
func (c *Cache) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// NeedsPrefetch reports whether the cache entry for name has fewer than the
// configured prefetch threshold of values remaining. A missing entry does
// not need prefetch (it needs a synchronous refill instead, handled by Get's
// miss path).
func (c *Cache) NeedsPrefetch(name string) bool {
	c.mu.RLock()
	entry, found := c.entries[name]
	c.mu.RUnlock()
	if !found {
		return false
	}
	return entry.NeedsRefill(c.prefetchThreshold)
}
