package content

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/cache"
	"github.com/hupe1980/content/resource"
	"github.com/hupe1980/content/scope"
)

// registration is the type-erased view of one registered asset type.
type registration interface {
	name() string
	assetType() reflect.Type
	controller() *resource.Controller
	prune(s *Service, force bool) int
	stats() TypeStats
	assets(fn func(AssetInfo) bool) bool
}

type typed[T resource.Asset] struct {
	typ   reflect.Type
	cache *cache.Cache[T]
}

func (t *typed[T]) name() string { return strings.TrimPrefix(t.typ.String(), "*") }
func (t *typed[T]) assetType() reflect.Type { return t.typ }
func (t *typed[T]) controller() *resource.Controller { return t.cache.Controller() }

func (t *typed[T]) prune(s *Service, force bool) int {
	rc := t.cache.Controller()
	n := t.cache.Prune(force, func(a T) {
		resource.Delete(a, rc, s.opts.host)
		resource.Discard(a)
	})
	if n > 0 {
		s.metrics.RecordEvict(n)
		s.logger.LogEvict(s.ctx, t.name(), n, force)
	}
	return n
}

func (t *typed[T]) stats() TypeStats {
	hits, misses := t.cache.Stats()
	return TypeStats{
		Name:        t.name(),
		Entries:     t.cache.Len(),
		MemoryUsage: t.cache.MemoryUsage(),
		MemoryLimit: t.cache.MemoryLimit(),
		Hits:        hits,
		Misses:      misses,
	}
}

func (t *typed[T]) assets(fn func(AssetInfo) bool) bool {
	more := true
	name := t.name()
	t.cache.Range(func(a T) bool {
		more = fn(newAssetInfo(name, a.Resource()))
		return more
	})
	return more
}

// Register creates the cache for asset type T. newFn constructs an Idle
// asset for an address and must call Base.Init on it.
func Register[T resource.Asset](s *Service, newFn func(address.Address) T, optFns ...cache.Option) (*cache.Cache[T], error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	typ := reflect.TypeFor[T]()

	s.typesMu.Lock()
	defer s.typesMu.Unlock()

	if _, ok := s.types[typ]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, typ)
	}

	reg := &typed[T]{typ: typ, cache: cache.New(newFn, optFns...)}
	s.types[typ] = reg
	s.order = append(s.order, reg)

	s.logger.Debug("asset type registered", "type", reg.name())
	return reg.cache, nil
}

func lookup[T resource.Asset](s *Service) (*typed[T], error) {
	typ := reflect.TypeFor[T]()

	s.typesMu.RLock()
	reg, ok := s.types[typ]
	s.typesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, typ)
	}
	return reg.(*typed[T]), nil
}

// CacheOf returns the cache registered for T.
func CacheOf[T resource.Asset](s *Service) (*cache.Cache[T], error) {
	reg, err := lookup[T](s)
	if err != nil {
		return nil, err
	}
	return reg.cache, nil
}

// Load returns a handle to the asset at raw, creating the cache entry and
// scheduling a background load if the asset is Idle. Concurrent calls for
// one address share the entry and schedule at most one load.
//
// A decoder loading a dependency passes its request's Scope as parent. The
// dependency is then marked on parent whether or not this call scheduled
// it, and the parent is only finalized after the dependency completed.
//
// The returned handle must be released.
func Load[T resource.Asset](s *Service, raw string, parent *scope.Scope) (*resource.Handle[T], error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	addr := address.Parse(raw)
	if addr.IsZero() {
		return nil, ErrInvalidAddress
	}

	reg, err := lookup[T](s)
	if err != nil {
		return nil, err
	}

	h, _ := reg.cache.GetOrCreate(addr, true)
	a := h.Get()

	if parent != nil && resource.Asset(a) == parent.Owner() {
		h.Release()
		return nil, fmt.Errorf("%w: %s", ErrCyclicDependency, addr)
	}

	s.enqueue(reg, a)

	if parent != nil {
		if err := parent.Mark(a); err != nil {
			h.Release()
			return nil, err
		}
	}
	return h, nil
}

// Get returns a handle to the cached asset at raw without loading it.
func Get[T resource.Asset](s *Service, raw string) (*resource.Handle[T], bool) {
	reg, err := lookup[T](s)
	if err != nil {
		return nil, false
	}
	return reg.cache.GetOrCreate(address.Parse(raw), false)
}

// Reload deletes a finished asset and schedules it again. It returns
// ErrInFlight while the asset is Queued and ErrNotCached once the asset has
// left its cache.
func Reload[T resource.Asset](s *Service, h *resource.Handle[T]) error {
	if s.closed.Load() {
		return ErrClosed
	}

	reg, err := lookup[T](s)
	if err != nil {
		return err
	}

	a := h.Get()
	b := a.Resource()
	switch cached, reset := reg.cache.Reset(a); {
	case !cached:
		err = fmt.Errorf("%w: %s", ErrNotCached, b.Address())
	case !reset:
		err = fmt.Errorf("%w: %s", ErrInFlight, b.Address())
	default:
		resource.Delete(a, reg.cache.Controller(), s.opts.host)
		resource.Discard(a)
		if !s.enqueue(reg, a) {
			err = b.Err()
		}
	}

	s.logger.LogReload(s.ctx, b.Address(), err)
	return err
}

// Unload removes a finished asset from its cache and deletes it. An asset
// still in flight is left alone. It reports whether the asset was removed.
func Unload[T resource.Asset](s *Service, h *resource.Handle[T]) bool {
	reg, err := lookup[T](s)
	if err != nil {
		return false
	}

	addr := h.Resource().Address()
	a, ok := reg.cache.Remove(addr)
	if ok {
		resource.Delete(a, reg.cache.Controller(), s.opts.host)
		resource.Discard(a)
	}

	s.logger.LogUnload(s.ctx, addr, ok)
	return ok
}

// Prune evicts finished, untracked, Managed assets of type T, or every
// asset if force is set, deleting each. It returns the number evicted.
func Prune[T resource.Asset](s *Service, force bool) (int, error) {
	reg, err := lookup[T](s)
	if err != nil {
		return 0, err
	}
	return reg.prune(s, force), nil
}
