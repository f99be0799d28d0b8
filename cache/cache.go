package cache

import (
	"sync"
	"sync/atomic"

	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/resource"
)

// Cache is the registry for one asset type T.
type Cache[T resource.Asset] struct {
	mu      sync.Mutex
	entries map[string]T

	newFn  func(address.Address) T
	policy resource.Policy
	rc     *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	memoryLimit int64
	policy      resource.Policy
	rc          *resource.Controller
}

// WithMemoryLimit sets the advisory memory budget in bytes.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithPolicy sets the ownership policy of newly created entries.
func WithPolicy(p resource.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithController makes the cache account memory on rc instead of a private
// controller, e.g. to share one budget between asset types.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// New creates a cache that constructs missing entries with newFn. newFn must
// return an asset whose Base is initialized for the given address.
func New[T resource.Asset](newFn func(address.Address) T, optFns ...Option) *Cache[T] {
	o := options{policy: resource.Managed}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	rc := o.rc
	if rc == nil {
		rc = resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	} else if o.memoryLimit > 0 {
		rc.SetMemoryLimit(o.memoryLimit)
	}

	return &Cache[T]{
		entries: make(map[string]T),
		newFn:   newFn,
		policy:  o.policy,
		rc:      rc,
	}
}

// GetOrCreate returns a handle to the entry for addr.Path(). If there is no
// entry and create is true, a new Idle asset is constructed and registered.
// It returns nil, false if there is no entry and create is false.
//
// The caller owns the returned handle and must release it.
func (c *Cache[T]) GetOrCreate(addr address.Address, create bool) (*resource.Handle[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := addr.Path()
	if a, ok := c.entries[key]; ok {
		c.hits.Add(1)
		return resource.NewHandle(a), true
	}
	c.misses.Add(1)

	if !create {
		return nil, false
	}

	a := c.newFn(addr)
	a.Resource().SetPolicy(c.policy)
	c.entries[key] = a
	return resource.NewHandle(a), true
}

// Lookup returns the entry for addr.Path() without creating a handle.
func (c *Cache[T]) Lookup(addr address.Address) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.entries[addr.Path()]
	return a, ok
}

// Remove drops the entry for addr.Path() if it has finished. An entry in
// flight is never removed. It reports whether a removal happened; the
// removed asset is returned so the caller can delete it.
func (c *Cache[T]) Remove(addr address.Address) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	key := addr.Path()
	a, ok := c.entries[key]
	if !ok || !a.Resource().HasFinished() {
		return zero, false
	}

	delete(c.entries, key)
	return a, true
}

// Reset returns a to Idle if it is still the entry for its address and has
// finished. cached reports whether a is the current entry; an asset that was
// unloaded or replaced is never reset. Once Idle, a cannot be removed or
// pruned, except by a forced prune, until it finishes again.
func (c *Cache[T]) Reset(a T) (cached, reset bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := a.Resource()
	cur, ok := c.entries[b.Address().Path()]
	if !ok || cur.Resource() != b {
		return false, false
	}
	return true, b.Reset()
}

// Prune removes every entry when force is true, otherwise every finished,
// untracked, Managed entry. onEvict, if not nil, runs for each removed entry
// after the lock has been released. It returns the number of removals.
func (c *Cache[T]) Prune(force bool, onEvict func(T)) int {
	c.mu.Lock()
	var evicted []T
	for key, a := range c.entries {
		if force || evictable(a.Resource()) {
			delete(c.entries, key)
			evicted = append(evicted, a)
		}
	}
	c.mu.Unlock()

	if onEvict != nil {
		for _, a := range evicted {
			onEvict(a)
		}
	}
	return len(evicted)
}

func evictable(b *resource.Base) bool {
	return b.HasFinished() && !b.Tracked() && b.Policy() == resource.Managed
}

// Range calls fn for each entry until fn returns false. fn runs under the
// lock and must not call back into the cache.
func (c *Cache[T]) Range(fn func(T) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range c.entries {
		if !fn(a) {
			return
		}
	}
}

// Len returns the number of entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Controller returns the controller that accounts this cache's memory.
func (c *Cache[T]) Controller() *resource.Controller { return c.rc }

// MemoryUsage returns the bytes charged by finalized entries.
func (c *Cache[T]) MemoryUsage() int64 { return c.rc.MemoryUsage() }

// SetMemoryUsage overwrites the usage counter.
func (c *Cache[T]) SetMemoryUsage(bytes int64) { c.rc.SetMemoryUsage(bytes) }

// MemoryLimit returns the advisory budget (0 = unlimited).
func (c *Cache[T]) MemoryLimit() int64 { return c.rc.MemoryLimit() }

// SetMemoryLimit changes the advisory budget.
func (c *Cache[T]) SetMemoryLimit(bytes int64) { c.rc.SetMemoryLimit(bytes) }

// Stats returns lookup hits and misses.
func (c *Cache[T]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
