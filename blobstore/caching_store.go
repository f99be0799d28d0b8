package blobstore

import (
	"context"
	"sync"

	"github.com/hupe1980/content/internal/cache"
	"github.com/hupe1980/content/resource"
	"golang.org/x/sync/singleflight"
)

// CachingStore wraps a Store and keeps whole blobs in a byte LRU.
// Concurrent misses for the same name share one read of the inner store.
type CachingStore struct {
	inner       Store
	cache       cache.ByteCache
	maxBlobSize int64
	group       singleflight.Group

	// gen counts writes. A fill that started before a write must not
	// store what it read.
	mu  sync.Mutex
	gen uint64
}

// CachingOption configures a CachingStore.
type CachingOption func(*CachingStore)

// WithMaxBlobSize sets the largest blob that will be cached. Larger blobs
// are read through without caching. Default: the capacity of one shard of
// the default cache.
func WithMaxBlobSize(n int64) CachingOption {
	return func(s *CachingStore) {
		s.maxBlobSize = n
	}
}

// WithByteCache replaces the default sharded LRU.
func WithByteCache(c cache.ByteCache) CachingOption {
	return func(s *CachingStore) {
		s.cache = c
	}
}

// NewCachingStore creates a new CachingStore holding up to capacity bytes.
// If rc is non-nil, cached bytes are acquired from it.
func NewCachingStore(inner Store, capacity int64, rc *resource.Controller, optFns ...CachingOption) *CachingStore {
	s := &CachingStore{
		inner:       inner,
		maxBlobSize: capacity / cache.DefaultShards,
	}
	for _, fn := range optFns {
		fn(s)
	}
	if s.cache == nil {
		s.cache = cache.NewShardedLRU(capacity, rc)
	}
	return s
}

// Open serves a blob from the cache, loading it from the inner store on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	if data, ok := s.cache.Get(name); ok {
		return NewBytesBlob(data), nil
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		s.mu.Lock()
		gen := s.gen
		s.mu.Unlock()

		b, err := s.inner.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		defer func() { _ = b.Close() }()

		if s.maxBlobSize > 0 && b.Size() > s.maxBlobSize {
			return ReadBlob(b)
		}

		data, err := ReadBlob(b)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.gen == gen {
			s.cache.Set(name, data)
		}
		s.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return NewBytesBlob(v.([]byte)), nil
}

// Put invalidates the cached copy and writes through.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete invalidates the cached copy and deletes from the inner store.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List returns all blob names with the given prefix.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache hit and miss counters.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

func (s *CachingStore) invalidate(name string) {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()

	s.group.Forget(name)
	s.cache.Remove(name)
}
