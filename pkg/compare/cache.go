package compare

import (
	"sync"
)

// pairKey identifies a comparison by its ordered path pair
type pairKey struct {
	left  string
	right string
}

// cacheEntry holds the signatures observed at comparison time and the
// outcome. Entries are never evicted; they go stale when either file's
// current signature stops matching, which is detected at lookup time.
type cacheEntry struct {
	left  Signature
	right Signature
	equal bool
}

// Cache memoizes deep comparison results across calls. It is safe for
// concurrent use: lookup and store are each a single critical section,
// so two workers racing on the same stale pair may both recompute, but
// neither can observe or write a torn entry.
type Cache struct {
	mu      sync.Mutex
	entries map[pairKey]cacheEntry
}

// NewCache creates an empty comparison cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[pairKey]cacheEntry),
	}
}

// Lookup returns the cached outcome for (left, right) if an entry
// exists and both stored signatures still match the current ones.
// The second return value reports whether the cached result is usable.
func (c *Cache) Lookup(left, right string, s1, s2 Signature) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[pairKey{left, right}]
	if !ok {
		return false, false
	}
	if !entry.left.Equal(s1) || !entry.right.Equal(s2) {
		// Stale entry; left in place and overwritten by the next Store.
		return false, false
	}

	return entry.equal, true
}

// Store records the outcome of a deep comparison, overwriting any
// prior entry for the pair
func (c *Cache) Store(left, right string, s1, s2 Signature, equal bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[pairKey{left, right}] = cacheEntry{left: s1, right: s2, equal: equal}
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// defaultCache is the process-wide cache used when callers don't
// supply their own
var defaultCache = NewCache()

// DefaultCache returns the shared process-wide comparison cache
func DefaultCache() *Cache {
	return defaultCache
}
