package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TextCache memoizes values derived from source text, such as compiled
// templates, in a bounded LRU.
type TextCache[V any] struct {
	cache *lru.Cache[string, V]
	mu    sync.Mutex
}

// NewTextCache returns a cache holding at most size entries.
func NewTextCache[V any](size int) (*TextCache[V], error) {
	cache, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("text cache: %w", err)
	}
	return &TextCache[V]{cache: cache}, nil
}

// Get returns the value cached for text.
func (c *TextCache[V]) Get(text string) (V, bool) {
	return c.cache.Get(text)
}

// Add stores v for text, replacing any earlier value.
func (c *TextCache[V]) Add(text string, v V) {
	c.cache.Add(text, v)
}

// GetOrCompute returns the cached value for text, computing and storing it
// on a miss. Concurrent misses for the same text compute once.
func (c *TextCache[V]) GetOrCompute(text string, compute func(string) V) V {
	// Fast path without the compute lock
	if v, ok := c.cache.Get(text); ok {
		return v
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.cache.Get(text); ok {
		return v
	}
	v := compute(text)
	c.cache.Add(text, v)
	return v
}

// Resize changes the capacity, evicting the oldest entries if it shrinks.
func (c *TextCache[V]) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("text cache: size must be positive, got %d", size)
	}
	c.cache.Resize(size)
	return nil
}

// Len returns the number of cached entries.
func (c *TextCache[V]) Len() int {
	return c.cache.Len()
}

// Purge drops every entry.
func (c *TextCache[V]) Purge() {
	c.cache.Purge()
}
