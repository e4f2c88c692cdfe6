package dispatch

import "sync"

// CacheKey identifies one cached resolver.
type CacheKey struct {
	App      string
	Module   string
	Function string
}

// Cache memoizes resolvers per dispatch target. Each key is built at
// most once, then treated as immutable; concurrent requests for the
// same key wait for the single build because factory construction can
// trigger template loading and is not guaranteed idempotent.
type Cache struct {
	mu      sync.Mutex
	entries map[CacheKey]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	res  Resolver
}

// NewCache creates an empty resolver cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey]*cacheEntry)}
}

// Get returns the cached resolver for key, building it with build on
// first use.
func (c *Cache) Get(key CacheKey, build func() Resolver) Resolver {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.res = build()
	})
	return e.res
}

// Flush drops every cached resolver. Development deployments flush on
// code or template changes.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[CacheKey]*cacheEntry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
