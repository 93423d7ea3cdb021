package raster

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Cache is a size-bounded LRU that never evicts while a frame is open.
//
// Between BeginFrame and EndFrame every Get or Add pins its key and the cache
// grows past its limit instead of evicting. EndFrame releases the pins and
// trims back to the limit, dropping the least recently used keys.
// Cache is not safe for concurrent use; it belongs to the loop goroutine.
type Cache[K comparable, V any] struct {
	lru     *simplelru.LRU[K, V]
	limit   int
	inFrame bool
	pinned  map[K]struct{}

	evictions int
}

// NewCache creates a cache holding at most limit entries between frames.
func NewCache[K comparable, V any](limit int) *Cache[K, V] {
	if limit < 1 {
		limit = 1
	}
	c := &Cache[K, V]{
		limit:  limit,
		pinned: make(map[K]struct{}),
	}
	// NewLRU only fails for a non-positive size
	c.lru, _ = simplelru.NewLRU[K, V](limit, func(K, V) { c.evictions++ })
	return c
}

// Get returns the value for key and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.pin(key)
	}
	return v, ok
}

// Peek returns the value for key without touching recency or pins.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	return c.lru.Peek(key)
}

// Add inserts or replaces the value for key.
func (c *Cache[K, V]) Add(key K, value V) {
	if c.inFrame && !c.lru.Contains(key) && c.lru.Len() >= c.capacity() {
		c.lru.Resize(c.lru.Len() + 1)
	}
	c.lru.Add(key, value)
	c.pin(key)
}

func (c *Cache[K, V]) pin(key K) {
	if c.inFrame {
		c.pinned[key] = struct{}{}
	}
}

// capacity is the current allowed size, which may exceed limit inside a frame.
func (c *Cache[K, V]) capacity() int {
	return max(c.limit, c.lru.Len())
}

// BeginFrame opens a frame; nothing is evicted until EndFrame.
func (c *Cache[K, V]) BeginFrame() {
	c.inFrame = true
}

// EndFrame releases this frame's pins and trims the cache to its limit.
func (c *Cache[K, V]) EndFrame() {
	c.inFrame = false
	clear(c.pinned)
	c.Trim()
}

// Trim evicts least recently used entries beyond the limit. Inside a frame
// it is a no-op.
func (c *Cache[K, V]) Trim() {
	if c.inFrame {
		return
	}
	c.lru.Resize(c.limit)
}

// SetLimit changes the between-frames limit. Outside a frame the cache is
// trimmed immediately, otherwise at EndFrame.
func (c *Cache[K, V]) SetLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	c.limit = limit
	c.Trim()
}

// Pinned reports whether key was touched in the open frame.
func (c *Cache[K, V]) Pinned(key K) bool {
	_, ok := c.pinned[key]
	return ok
}

// Contains reports whether key is cached.
func (c *Cache[K, V]) Contains(key K) bool {
	return c.lru.Contains(key)
}

// Purge removes every entry.
func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// Limit returns the between-frames size limit.
func (c *Cache[K, V]) Limit() int {
	return c.limit
}

// Evictions returns the number of entries dropped since creation, by trimming or purging.
func (c *Cache[K, V]) Evictions() int {
	return c.evictions
}
