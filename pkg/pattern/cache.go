package pattern

import "sync"

type cacheKey struct {
	raw    string
	strict bool
}

// Cache memoizes compiled patterns. Entries are never evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*Pattern
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*Pattern)}
}

// Get returns the compiled pattern for raw, compiling it on first use.
// Malformed patterns are not cached.
func (c *Cache) Get(raw string, strict bool) (*Pattern, error) {
	key := cacheKey{raw: raw, strict: strict}

	c.mu.RLock()
	p, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := Compile(raw, strict)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = p
	return p, nil
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var defaultCache = NewCache()

// Cached returns the compiled pattern from the process-wide cache.
func Cached(raw string, strict bool) (*Pattern, error) {
	return defaultCache.Get(raw, strict)
}
