package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Run("get returns stored embedding", func(t *testing.T) {
		cache := NewCache(10)
		cache.Set("hello", []float32{1, 2, 3})

		vec, ok := cache.Get("hello")
		require.True(t, ok)
		assert.Equal(t, []float32{1, 2, 3}, vec)
	})

	t.Run("miss on unknown text", func(t *testing.T) {
		cache := NewCache(10)
		_, ok := cache.Get("never stored")
		assert.False(t, ok)
	})

	t.Run("evicts oldest entry when full", func(t *testing.T) {
		cache := NewCache(2)
		cache.Set("first", []float32{1})
		cache.Set("second", []float32{2})
		cache.Set("third", []float32{3})

		_, ok := cache.Get("first")
		assert.False(t, ok, "oldest entry should be evicted")

		_, ok = cache.Get("second")
		assert.True(t, ok)
		_, ok = cache.Get("third")
		assert.True(t, ok)
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("overwrite does not grow cache", func(t *testing.T) {
		cache := NewCache(2)
		cache.Set("text", []float32{1})
		cache.Set("text", []float32{2})

		vec, ok := cache.Get("text")
		require.True(t, ok)
		assert.Equal(t, []float32{2}, vec)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("zero size disables caching", func(t *testing.T) {
		cache := NewCache(0)
		cache.Set("text", []float32{1})
		_, ok := cache.Get("text")
		assert.False(t, ok)
	})
}
