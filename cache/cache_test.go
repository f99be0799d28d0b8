package cache

import (
	"sync"
	"testing"

	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type texture struct {
	resource.Base
	size int64
}

func (t *texture) OnCreate(resource.Host) error {
	t.SetMemory(t.size)
	return nil
}

func (*texture) OnDelete(resource.Host) {}

func newTexture(addr address.Address) *texture {
	t := &texture{size: 64}
	t.Init(addr, resource.Managed)
	return t
}

func TestCache_RoundTrip(t *testing.T) {
	c := New(newTexture)
	addr := address.Parse("pkg://ui/button.png")

	h1, ok := c.GetOrCreate(addr, true)
	require.True(t, ok)
	assert.Equal(t, resource.StatusIdle, h1.Status())

	h2, ok := c.GetOrCreate(addr, false)
	require.True(t, ok)
	assert.Same(t, h1.Get(), h2.Get())
	assert.Equal(t, 1, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCache_MissingWithoutCreate(t *testing.T) {
	c := New(newTexture)
	h, ok := c.GetOrCreate(address.Parse("pkg://nope.png"), false)
	assert.False(t, ok)
	assert.Nil(t, h)
	assert.Zero(t, c.Len())
}

func TestCache_KeyIgnoresScheme(t *testing.T) {
	c := New(newTexture)
	h1, _ := c.GetOrCreate(address.Parse("pkg://ui/button.png"), true)
	h2, _ := c.GetOrCreate(address.Parse("disk://ui/button.png"), true)
	assert.Same(t, h1.Get(), h2.Get())

	h3, _ := c.GetOrCreate(address.Parse("pkg://ui/button.png#hover"), true)
	assert.NotSame(t, h1.Get(), h3.Get())
}

func TestCache_ConcurrentGetOrCreate(t *testing.T) {
	c := New(newTexture)
	addr := address.Parse("pkg://models/hero.mesh")

	const n = 32
	handles := make([]*resource.Handle[*texture], n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], _ = c.GetOrCreate(addr, true)
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		assert.Same(t, handles[0].Get(), h.Get())
	}
	assert.Equal(t, int32(n), handles[0].Resource().Refs())
}

func TestCache_RemoveOnlyFinished(t *testing.T) {
	c := New(newTexture)
	addr := address.Parse("pkg://a.png")

	h, _ := c.GetOrCreate(addr, true)
	h.Resource().SetStatus(resource.StatusQueued)

	_, removed := c.Remove(addr)
	assert.False(t, removed, "in-flight entries stay")
	assert.Equal(t, 1, c.Len())

	h.Resource().SetStatus(resource.StatusFailed)
	got, removed := c.Remove(addr)
	assert.True(t, removed)
	assert.Same(t, h.Get(), got)
	assert.Zero(t, c.Len())

	_, removed = c.Remove(addr)
	assert.False(t, removed)
}

func TestCache_ResetOnlyCurrentEntry(t *testing.T) {
	c := New(newTexture)
	addr := address.Parse("pkg://a.png")

	h, _ := c.GetOrCreate(addr, true)
	defer h.Release()

	h.Resource().SetStatus(resource.StatusQueued)
	cached, reset := c.Reset(h.Get())
	assert.True(t, cached)
	assert.False(t, reset)

	h.Resource().SetStatus(resource.StatusCompleted)
	cached, reset = c.Reset(h.Get())
	assert.True(t, cached)
	assert.True(t, reset)
	assert.Equal(t, resource.StatusIdle, h.Status())

	h.Resource().SetStatus(resource.StatusCompleted)
	_, removed := c.Remove(addr)
	require.True(t, removed)

	cached, reset = c.Reset(h.Get())
	assert.False(t, cached)
	assert.False(t, reset)
	assert.Equal(t, resource.StatusCompleted, h.Status())

	fresh, _ := c.GetOrCreate(addr, true)
	defer fresh.Release()
	cached, _ = c.Reset(h.Get())
	assert.False(t, cached, "a replaced asset is not the entry")
}

func TestCache_PruneEvictionPolicy(t *testing.T) {
	c := New(newTexture)

	inFlight, _ := c.GetOrCreate(address.Parse("pkg://in-flight.png"), true)
	inFlight.Resource().SetStatus(resource.StatusQueued)
	inFlight.Release()

	held, _ := c.GetOrCreate(address.Parse("pkg://held.png"), true)
	held.Resource().SetStatus(resource.StatusCompleted)

	pinned, _ := c.GetOrCreate(address.Parse("pkg://pinned.png"), true)
	pinned.Resource().SetStatus(resource.StatusCompleted)
	pinned.Resource().SetPolicy(resource.Exclusive)
	pinned.Release()

	done, _ := c.GetOrCreate(address.Parse("pkg://done.png"), true)
	done.Resource().SetStatus(resource.StatusCompleted)
	done.Release()

	failed, _ := c.GetOrCreate(address.Parse("pkg://failed.png"), true)
	failed.Resource().SetStatus(resource.StatusFailed)
	failed.Release()

	var evicted []string
	n := c.Prune(false, func(tx *texture) {
		evicted = append(evicted, tx.Address().Path())
	})
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"done.png", "failed.png"}, evicted)
	assert.Equal(t, 3, c.Len())

	n = c.Prune(true, nil)
	assert.Equal(t, 3, n)
	assert.Zero(t, c.Len())
}

func TestCache_PruneCallbackMayReenter(t *testing.T) {
	c := New(newTexture)
	h, _ := c.GetOrCreate(address.Parse("pkg://a.png"), true)
	h.Resource().SetStatus(resource.StatusCompleted)
	h.Release()

	c.Prune(false, func(*texture) {
		assert.Zero(t, c.Len())
	})
}

func TestCache_MemoryAccessors(t *testing.T) {
	c := New(newTexture, WithMemoryLimit(128))
	assert.Equal(t, int64(128), c.MemoryLimit())

	h, _ := c.GetOrCreate(address.Parse("pkg://a.png"), true)
	require.NoError(t, resource.Create(h.Get(), c.Controller(), nil))
	assert.Equal(t, int64(64), c.MemoryUsage())

	resource.Delete(h.Get(), c.Controller(), nil)
	assert.Zero(t, c.MemoryUsage())

	c.SetMemoryLimit(1)
	c.SetMemoryUsage(5)
	assert.Equal(t, int64(1), c.MemoryLimit())
	assert.Equal(t, int64(5), c.MemoryUsage())
}

func TestCache_SharedController(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	a := New(newTexture, WithController(rc), WithPolicy(resource.Exclusive))
	b := New(newTexture, WithController(rc))
	assert.Same(t, a.Controller(), b.Controller())

	h, _ := a.GetOrCreate(address.Parse("pkg://a.png"), true)
	assert.Equal(t, resource.Exclusive, h.Resource().Policy())
}
