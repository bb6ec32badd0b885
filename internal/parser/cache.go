package parser

import (
	"sync"

	"sourcelens/internal/types"
)

type cacheKey struct {
	fp   uint64
	lang types.Language
}

type cacheEntry struct {
	facts *types.ParseFacts
	hits  int
}

// Cache is a parse-result cache keyed by (ContentFp, Language), evicting the
// least-frequently-used entry (approximated by hit count, not a full LFU
// frequency-sketch) once Capacity is exceeded. Parsing is deterministic for
// a given key (§4.5), so a cache hit is always safe to reuse verbatim.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[cacheKey]*cacheEntry
}

// NewCache creates a Cache bounded to capacity entries.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  make(map[cacheKey]*cacheEntry),
	}
}

// Get returns the cached ParseFacts for (fp, lang), incrementing its hit
// counter, or (nil, false) on a miss.
func (c *Cache) Get(fp uint64, lang types.Language) (*types.ParseFacts, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey{fp, lang}]
	if !ok {
		return nil, false
	}
	entry.hits++
	return entry.facts, true
}

// Put stores facts for (fp, lang), evicting the lowest-hit entry first if
// the cache is at capacity.
func (c *Cache) Put(fp uint64, lang types.Language, facts *types.ParseFacts) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{fp, lang}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.entries[key] = &cacheEntry{facts: facts}
}

// evictLocked removes the entry with the fewest hits. Ties are broken by
// iteration order, which is randomized by Go's map semantics — acceptable
// since this is an approximation, not an exact LFU.
func (c *Cache) evictLocked() {
	var victim cacheKey
	victimHits := -1
	for k, e := range c.entries {
		if victimHits == -1 || e.hits < victimHits {
			victim = k
			victimHits = e.hits
		}
	}
	if victimHits != -1 {
		delete(c.entries, victim)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
