package cache

import (
	"sync"
	"sync/atomic"

	"github.com/hupe1980/content/resource"
)

// LRU is a byte-budgeted least-recently-used cache guarded by one mutex.
// Recency is tracked with an intrusive ring: root.next is the most recently
// used node, root.prev the eviction candidate.
type LRU struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	nodes    map[string]*node
	root     node
	rc       *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type node struct {
	key        string
	data       []byte
	prev, next *node
}

func (n *node) cost() int64 { return int64(len(n.data)) }

// NewLRU creates an LRU holding at most capacity bytes. When rc is non-nil,
// held bytes are acquired from it and released on eviction.
func NewLRU(capacity int64, rc *resource.Controller) *LRU {
	c := &LRU{
		capacity: capacity,
		nodes:    make(map[string]*node),
		rc:       rc,
	}
	c.root.prev, c.root.next = &c.root, &c.root
	return c
}

func (c *LRU) unlink(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

func (c *LRU) pushFront(n *node) {
	n.prev = &c.root
	n.next = c.root.next
	c.root.next.prev = n
	c.root.next = n
}

func (c *LRU) touch(n *node) {
	if c.root.next == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

// drop removes n and returns its bytes to the controller. Caller holds mu.
func (c *LRU) drop(n *node) {
	c.unlink(n)
	delete(c.nodes, n.key)
	c.size -= n.cost()
	if c.rc != nil {
		c.rc.ReleaseMemory(n.cost())
	}
}

// shrink evicts from the tail until need more bytes fit.
func (c *LRU) shrink(need int64) {
	for c.size+need > c.capacity && c.root.prev != &c.root {
		c.drop(c.root.prev)
	}
}

// Get returns the cached bytes for key and marks them recently used.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.touch(n)
	return n.data, true
}

// Set caches b under key. Values larger than the capacity are not cached,
// and a replacement the controller cannot fund leaves the old value in place.
func (c *LRU) Set(key string, b []byte) {
	cost := int64(len(b))

	c.mu.Lock()
	defer c.mu.Unlock()

	if cost > c.capacity {
		if n, ok := c.nodes[key]; ok {
			c.drop(n)
		}
		return
	}

	if n, ok := c.nodes[key]; ok {
		delta := cost - n.cost()
		if delta > 0 && c.rc != nil && !c.rc.TryAcquireMemory(delta) {
			return
		}
		if delta < 0 && c.rc != nil {
			c.rc.ReleaseMemory(-delta)
		}
		n.data = b
		c.size += delta
		c.touch(n)
		// The refreshed node is at the front, so shrinking cannot reach it.
		c.shrink(0)
		return
	}

	// Evict before acquiring so released bytes can be reused.
	c.shrink(cost)
	if c.rc != nil && !c.rc.TryAcquireMemory(cost) {
		return
	}

	n := &node{key: key, data: b}
	c.pushFront(n)
	c.nodes[key] = n
	c.size += cost
}

// Remove drops key. It reports whether the key was present.
func (c *LRU) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[key]
	if ok {
		c.drop(n)
	}
	return ok
}

// Invalidate drops every key for which match returns true.
func (c *LRU) Invalidate(match func(key string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for n := c.root.next; n != &c.root; {
		next := n.next
		if match(n.key) {
			c.drop(n)
		}
		n = next
	}
}

// Stats returns hit and miss counters.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the number of cached bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}
