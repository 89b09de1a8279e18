package status

import (
	"container/list"
	"sync"

	"github.com/snapfs/snapfs/pkg/object"
)

// Default cache bounds, overridable through configuration.
const (
	DefaultMaxSizeBytes = 1 << 20
	DefaultMinimumItems = 0
)

// CacheConfig bounds a Cache.
type CacheConfig struct {
	// MaxSizeBytes is the accounted-cost ceiling that triggers
	// eviction. Defaults to DefaultMaxSizeBytes when zero.
	MaxSizeBytes int

	// MinimumItems is the floor of completed entries eviction will
	// not go below.
	MinimumItems int
}

// Cache memoizes status computations keyed by commit identity.
//
// A key may simultaneously hold a completed result and one in-flight
// promise at a newer sequence. Completed entries participate in LRU
// eviction; promises are pinned and invisible to Contains. Staleness
// is decided by journal sequence numbers: an insert at a sequence not
// greater than the stored one is silently dropped.
//
// All public operations take one exclusive critical section; futures
// returned by Get never block inside the cache.
type Cache struct {
	mu sync.Mutex

	maxSize  int
	minItems int

	entries   map[object.Hash]*cacheEntry
	lru       *list.List // of object.Hash; front is most recently used
	totalCost int
}

type cacheEntry struct {
	completed *SeqStatusPair
	cost      int
	elem      *list.Element // non-nil iff completed is

	pending *Promise
}

// NewCache creates a Cache with the given bounds.
func NewCache(cfg CacheConfig) *Cache {
	maxSize := cfg.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeBytes
	}
	minItems := cfg.MinimumItems
	if minItems < 0 {
		minItems = 0
	}
	return &Cache{
		maxSize:  maxSize,
		minItems: minItems,
		entries:  make(map[object.Hash]*cacheEntry),
		lru:      list.New(),
	}
}

// Get returns either a Future carrying the cached (or in-flight)
// result, or a fresh Promise the caller must eventually fulfill via
// Insert or abandon via DropPromise. Exactly one of the results is
// non-nil.
func (c *Cache) Get(key object.Hash, seq uint64) (*Future, *Promise) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.entries[key]
	if entry != nil && entry.completed != nil && entry.completed.Seq >= seq {
		c.lru.MoveToFront(entry.elem)
		return readyFuture(entry.completed.Status), nil
	}
	if entry != nil && entry.pending != nil && entry.pending.seq == seq {
		return entry.pending.Future(), nil
	}

	promise := newPromise(seq)
	if entry == nil {
		entry = &cacheEntry{}
		c.entries[key] = entry
	}
	entry.pending = promise
	return nil, promise
}

// Insert installs a completed result for key. A pair whose sequence is
// not greater than the stored one is dropped silently. An in-flight
// promise registered at exactly pair.Seq is fulfilled and cleared.
// After installing, least-recently-used completed entries are evicted
// until the total cost fits MaxSizeBytes or only MinimumItems remain.
func (c *Cache) Insert(key object.Hash, pair SeqStatusPair) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.entries[key]
	if entry == nil {
		entry = &cacheEntry{}
		c.entries[key] = entry
	}

	if entry.pending != nil && entry.pending.seq == pair.Seq {
		entry.pending.Fulfill(pair.Status)
		entry.pending = nil
	}

	if entry.completed != nil && pair.Seq <= entry.completed.Seq {
		// Stale insert: keep the newer stored value.
		return
	}

	if entry.completed != nil {
		c.totalCost -= entry.cost
		c.lru.MoveToFront(entry.elem)
	} else {
		entry.elem = c.lru.PushFront(key)
	}
	entry.completed = &pair
	entry.cost = pair.Cost()
	c.totalCost += entry.cost

	c.evictLocked()
}

// DropPromise removes the in-flight registration for (key, seq) if
// one exists at exactly that sequence. Futures already chained to the
// promise stay valid and complete if the promise is later fulfilled.
func (c *Cache) DropPromise(key object.Hash, seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.entries[key]
	if entry == nil || entry.pending == nil || entry.pending.seq != seq {
		return
	}
	entry.pending = nil
	if entry.completed == nil {
		delete(c.entries, key)
	}
}

// Contains reports whether a completed entry exists for key. In-flight
// promises do not count.
func (c *Cache) Contains(key object.Hash) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.entries[key]
	return entry != nil && entry.completed != nil
}

// ObjectCount returns the number of completed entries.
func (c *Cache) ObjectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// TotalCost returns the accounted size of all completed entries.
func (c *Cache) TotalCost() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCost
}

func (c *Cache) evictLocked() {
	for c.totalCost > c.maxSize && c.lru.Len() > c.minItems {
		back := c.lru.Back()
		key := back.Value.(object.Hash)
		entry := c.entries[key]

		c.totalCost -= entry.cost
		c.lru.Remove(back)
		entry.completed = nil
		entry.cost = 0
		entry.elem = nil
		if entry.pending == nil {
			delete(c.entries, key)
		}
	}
}
