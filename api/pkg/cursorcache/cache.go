package cursorcache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MaxItems bounds the number of distinct cursors a client-side cache may
// hold, independent of their size.
const MaxItems = 256

// DefaultMaxBytes bounds the total encoded size of cached cursors. The
// hashicorp LRU only enforces an item-count ceiling, so Cache layers its
// own byte accounting and evicts further, via RemoveOldest, whenever an
// insert would push total bytes over budget even though the count ceiling
// hasn't been reached.
const DefaultMaxBytes = 16 * 1024 * 1024

// Cache is a bounded LRU of cursor items, shared by one cursor-channel
// client. It is safe for concurrent use: inserts and lookups typically run
// on the channel's worker, but invalidation can be triggered from the main
// dispatcher thread.
type Cache struct {
	mu           sync.Mutex
	maxBytes     int
	usedBytes    int
	lru          *lru.Cache[uint64, *Item]
	onInvalidate func()
}

// New creates a Cache bounded by MaxItems entries and maxBytes of encoded
// cursor data. maxBytes <= 0 selects DefaultMaxBytes.
func New(maxBytes int) *Cache {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	c := &Cache{maxBytes: maxBytes}

	inner, err := lru.NewWithEvict[uint64, *Item](MaxItems, func(_ uint64, it *Item) {
		c.usedBytes -= it.Size
		it.Unref()
	})
	if err != nil {
		// MaxItems is a positive compile-time constant; NewWithEvict only
		// fails for a non-positive size.
		panic(err)
	}
	c.lru = inner
	return c
}

// Insert adds a cursor item to the cache, evicting the least recently used
// entries — by count and then by byte budget — until there is room. It
// reports whether the item was actually stored; an item larger than the
// entire byte budget is rejected rather than accepted and immediately
// evicted.
func (c *Cache) Insert(it *Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if it.Size > c.maxBytes {
		return false
	}

	// Replacing an existing ID releases the old entry through the eviction
	// callback so its bytes and reference are not counted twice.
	c.lru.Remove(it.ID)

	for c.usedBytes+it.Size > c.maxBytes && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}

	it.Ref()
	c.lru.Add(it.ID, it)
	c.usedBytes += it.Size
	return true
}

// Lookup returns the cached item for id, promoting it to most-recently-used,
// and reports whether it was present. A hit returns a new shared reference:
// the cache keeps its own, and the caller owns the one returned here and
// must Unref it once done (e.g. after handing it to a pipe item that will
// be marshalled onto the wire).
func (c *Cache) Lookup(id uint64) (*Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	it.Ref()
	return it, true
}

// Contains reports whether id is cached, without affecting LRU order —
// used to decide whether a cursor update can be sent by reference instead
// of re-encoding the full image.
func (c *Cache) Contains(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(id)
}

// InvalidateGroup evicts every cached item belonging to groupID, e.g. when
// the surface it was associated with is destroyed.
func (c *Cache) InvalidateGroup(groupID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.lru.Keys() {
		it, ok := c.lru.Peek(id)
		if ok && it.GroupID == groupID {
			c.lru.Remove(id)
		}
	}
}

// SetOnInvalidate registers the callback InvalidateAll fires after
// dropping every entry. The owning cursor channel uses this to enqueue an
// INVAL_CURSOR_CACHE pipe item on the relevant client, so the client can
// mirror the flush instead of being left holding stale cache state.
func (c *Cache) SetOnInvalidate(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInvalidate = fn
}

// InvalidateAll drops every cached entry, e.g. on client reconnect when the
// new connection can't be assumed to share the old one's cache contents,
// and fires the registered invalidation callback so the client-visible
// INVAL_CURSOR_CACHE notice actually gets sent.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.lru.Purge()
	fn := c.onInvalidate
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Len reports the number of cached items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// UsedBytes reports the total encoded size of cached items.
func (c *Cache) UsedBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usedBytes
}
