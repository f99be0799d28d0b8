package cache

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/hupe1980/content/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_SetGet(t *testing.T) {
	c := NewLRU(100, nil)

	c.Set("a", []byte("alpha"))
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", string(got))

	_, ok = c.Get("missing")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(30, nil)

	c.Set("a", make([]byte, 10))
	c.Set("b", make([]byte, 10))
	c.Set("c", make([]byte, 10))

	// Touch a so that b becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("d", make([]byte, 10))

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, int64(30), c.Size())
	assert.Equal(t, 3, c.Len())
}

func TestLRU_EdgeCases(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRU(50, rc)

	// Larger than capacity is never cached.
	c.Set("k", make([]byte, 60))
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())
	assert.Equal(t, int64(10), rc.MemoryUsage())

	c.Set("k", make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	assert.Equal(t, int64(20), rc.MemoryUsage())

	c.Set("k", make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())
	assert.Equal(t, int64(5), rc.MemoryUsage())

	// Growth denied by the controller keeps the old value.
	rc2 := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c2 := NewLRU(50, rc2)
	c2.Set("k", make([]byte, 8))
	c2.Set("k", make([]byte, 12))

	val, ok := c2.Get("k")
	require.True(t, ok)
	assert.Len(t, val, 8)
}

func TestLRU_RemoveAndInvalidate(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	c := NewLRU(1000, rc)

	for i := range 10 {
		c.Set(fmt.Sprintf("dir/%d", i), make([]byte, 10))
	}
	c.Set("other", make([]byte, 10))
	assert.Equal(t, int64(110), rc.MemoryUsage())

	assert.True(t, c.Remove("dir/0"))
	assert.False(t, c.Remove("dir/0"))

	c.Invalidate(func(key string) bool { return strings.HasPrefix(key, "dir/") })
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(10), c.Size())
	assert.Equal(t, int64(10), rc.MemoryUsage())
}

func TestShardedLRU(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	c := NewShardedLRU(64*1024, rc)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 100 {
				key := fmt.Sprintf("%d/%d", g, i)
				c.Set(key, []byte(key))
				got, ok := c.Get(key)
				if ok {
					assert.Equal(t, key, string(got))
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, c.Size(), rc.MemoryUsage())

	c.Invalidate(func(string) bool { return true })
	assert.Equal(t, int64(0), c.Size())
	assert.Equal(t, int64(0), rc.MemoryUsage())

	hits, _ := c.Stats()
	assert.Positive(t, hits)
}

func TestShardedLRU_ShardCapacity(t *testing.T) {
	c := NewShardedLRUN(40, 4, nil)

	c.Set("fits", make([]byte, 10))
	c.Set("too-big", make([]byte, 11))

	_, ok := c.Get("fits")
	assert.True(t, ok)
	_, ok = c.Get("too-big")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	assert.True(t, c.Remove("fits"))
	assert.Equal(t, int64(0), c.Size())
}

func TestLRU_OversizedReplacementDrops(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	c := NewLRU(10, rc)

	c.Set("k", make([]byte, 5))
	c.Set("k", make([]byte, 20))

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}
