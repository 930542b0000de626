package recommend

import "sync"

const DefaultCacheCapacity = 100

// Cache stores generated recommendation text keyed by input fingerprint.
type Cache interface {
	Get(fingerprint string) (string, bool)
	Put(fingerprint, text string)
}

// FIFOCache is a bounded in-memory Cache. When full it evicts the
// oldest-inserted entry, not the least recently used one: cached text for
// a bucket never changes, so insertion age is the only ordering that
// matters.
type FIFOCache struct {
	mu       sync.RWMutex
	entries  map[string]string
	order    []string
	capacity int
}

func NewFIFOCache(capacity int) *FIFOCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &FIFOCache{
		entries:  make(map[string]string, capacity),
		capacity: capacity,
	}
}

func (c *FIFOCache) Get(fingerprint string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	text, ok := c.entries[fingerprint]
	return text, ok
}

func (c *FIFOCache) Put(fingerprint, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[fingerprint]; exists {
		// Last write wins; insertion order is unchanged.
		c.entries[fingerprint] = text
		return
	}

	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[fingerprint] = text
	c.order = append(c.order, fingerprint)
}

func (c *FIFOCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
