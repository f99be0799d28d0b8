package cache

// ByteCache holds immutable blob contents keyed by blob name.
// Returned slices are shared and must not be modified.
type ByteCache interface {
	Get(name string) ([]byte, bool)
	// Set caches b. The caller gives up ownership of b.
	Set(name string, b []byte)
	// Remove drops one name and reports whether it was cached.
	Remove(name string) bool
	// Invalidate drops every name match accepts.
	Invalidate(match func(name string) bool)
	Stats() (hits, misses int64)
}

var (
	_ ByteCache = (*LRU)(nil)
	_ ByteCache = (*ShardedLRU)(nil)
)
