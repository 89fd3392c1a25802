package ai

import (
	"sync"

	"github.com/quillstack/sift/core"
)

// Cache is a bounded in-memory embedding cache keyed by content hash.
// When full, the oldest entry is evicted first. All methods are safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string][]float32
	order   []string
}

// NewCache creates a Cache holding at most maxSize embeddings. A maxSize of
// zero or less disables caching entirely.
func NewCache(maxSize int) *Cache {
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string][]float32),
	}
}

// Get returns the cached embedding for text, if present.
func (c *Cache) Get(text string) ([]float32, bool) {
	if c.maxSize <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	vec, ok := c.entries[core.HashContent([]byte(text))]
	return vec, ok
}

// Set stores the embedding for text, evicting the oldest entry when the
// cache is full.
func (c *Cache) Set(text string, vec []float32) {
	if c.maxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := core.HashContent([]byte(text))
	if _, ok := c.entries[key]; ok {
		c.entries[key] = vec
		return
	}

	if len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = vec
	c.order = append(c.order, key)
}

// Len returns the number of cached embeddings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
