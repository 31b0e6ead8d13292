// Package translate implements the translation pipeline of the injected
// module: the translatability filter, the bounded write-through cache with
// its persistent format, and the request path to the orchestrator.
package translate

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// DefaultMaxCacheSize is the eviction threshold when none is configured
const DefaultMaxCacheSize = 10000

type cacheEntry struct {
	original   string
	translated string
}

// Cache is a bounded original-to-translated mapping. Eviction is least
// recently used; a Get refreshes the entry.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*list.Element
	order   *list.List // front is most recently used

	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxCacheSize
	}
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached translation for original
func (c *Cache) Get(original string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[original]
	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.order.MoveToFront(el)
	c.hits.Add(1)
	return el.Value.(*cacheEntry).translated, true
}

// Put stores a pair, evicting the least recently used entry when full
func (c *Cache) Put(original, translated string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[original]; ok {
		el.Value.(*cacheEntry).translated = translated
		c.order.MoveToFront(el)
		return
	}

	if len(c.entries) >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).original)
		}
	}

	c.entries[original] = c.order.PushFront(&cacheEntry{original: original, translated: translated})
}

// Contains reports whether original is cached, without touching recency
func (c *Cache) Contains(original string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[original]
	return ok
}

// Remove drops one entry
func (c *Cache) Remove(original string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[original]; ok {
		c.order.Remove(el)
		delete(c.entries, original)
	}
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Size returns the number of cached pairs
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Hits returns the monotonic hit counter
func (c *Cache) Hits() uint64 {
	return c.hits.Load()
}

// Misses returns the monotonic miss counter
func (c *Cache) Misses() uint64 {
	return c.misses.Load()
}

// Pairs copies the mapping for callers outside the package
func (c *Cache) Pairs() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]string, len(c.entries))
	for original, el := range c.entries {
		out[original] = el.Value.(*cacheEntry).translated
	}
	return out
}

// snapshot copies the mapping, most recently used first
func (c *Cache) snapshot() []cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]cacheEntry, 0, len(c.entries))
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*cacheEntry))
	}
	return out
}

// replace swaps in a fully loaded mapping; used by Load only
func (c *Cache) replace(pairs []cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element, len(pairs))
	c.order.Init()
	for _, pair := range pairs {
		if len(c.entries) >= c.maxSize {
			break
		}
		e := pair
		c.entries[e.original] = c.order.PushBack(&e)
	}
}
