package layout

import (
	"container/list"
	"sync"
)

type measureKey struct {
	text     string
	maxWidth int
	padding  int
}

// measureCache is an LRU of measured widths. Status modules re-measure the
// same short strings every tick.
type measureCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[measureKey]*list.Element
	lru     *list.List // front = most recently used
}

type cacheEntry struct {
	key   measureKey
	width int
}

func newMeasureCache(maxSize int) *measureCache {
	return &measureCache{
		maxSize: maxSize,
		entries: make(map[measureKey]*list.Element),
		lru:     list.New(),
	}
}

func (c *measureCache) get(key measureKey) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).width, true
	}
	return 0, false
}

func (c *measureCache) put(key measureKey, width int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).width = width
		return
	}
	for c.lru.Len() >= c.maxSize {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, width: width})
}

func (c *measureCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *measureCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[measureKey]*list.Element)
	c.lru.Init()
}
