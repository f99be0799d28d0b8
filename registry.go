package content

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/blobstore"
	"github.com/hupe1980/content/resource"
)

// AnyExtension registers a decoder for every extension without a more
// specific one.
const AnyExtension = "*"

type decoder func(req *DecodeRequest, a resource.Asset) error

// LoaderRegistry maps file extensions to decoders, per asset type.
// Extensions are matched case-insensitively and without the leading dot.
type LoaderRegistry struct {
	mu       sync.RWMutex
	decoders map[reflect.Type]map[string]decoder
}

func newLoaderRegistry() *LoaderRegistry {
	return &LoaderRegistry{decoders: make(map[reflect.Type]map[string]decoder)}
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func (r *LoaderRegistry) register(t reflect.Type, fn decoder, exts []string) error {
	if len(exts) == 0 {
		return errors.New("content: decoder needs at least one extension")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byExt := r.decoders[t]
	if byExt == nil {
		byExt = make(map[string]decoder)
		r.decoders[t] = byExt
	}
	for _, ext := range exts {
		if _, ok := byExt[normalizeExt(ext)]; ok {
			return fmt.Errorf("%w: decoder for %q on %s", ErrAlreadyRegistered, ext, t)
		}
	}
	for _, ext := range exts {
		byExt[normalizeExt(ext)] = fn
	}
	return nil
}

func (r *LoaderRegistry) lookup(t reflect.Type, ext string) (decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byExt := r.decoders[t]
	if fn, ok := byExt[normalizeExt(ext)]; ok {
		return fn, true
	}
	fn, ok := byExt[AnyExtension]
	return fn, ok
}

// Extensions returns the sorted extensions registered for the type of a.
func (r *LoaderRegistry) Extensions(a resource.Asset) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var exts []string
	for ext := range r.decoders[reflect.TypeOf(a)] {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// BackendRegistry maps URI schemes to storage backends. Addresses without a
// scheme probe every backend in mount order.
type BackendRegistry struct {
	mu       sync.RWMutex
	byScheme map[string]blobstore.Store
	order    []string
}

func newBackendRegistry() *BackendRegistry {
	return &BackendRegistry{byScheme: make(map[string]blobstore.Store)}
}

// Mount registers store under scheme.
func (r *BackendRegistry) Mount(scheme string, store blobstore.Store) error {
	if scheme == "" {
		return errors.New("content: empty scheme")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byScheme[scheme]; ok {
		return fmt.Errorf("%w: scheme %q", ErrAlreadyRegistered, scheme)
	}
	r.byScheme[scheme] = store
	r.order = append(r.order, scheme)
	return nil
}

// Unmount removes the backend for scheme. It reports whether one was mounted.
func (r *BackendRegistry) Unmount(scheme string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byScheme[scheme]; !ok {
		return false
	}
	delete(r.byScheme, scheme)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == scheme })
	return true
}

// Lookup returns the backend mounted under scheme.
func (r *BackendRegistry) Lookup(scheme string) (blobstore.Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byScheme[scheme]
	return s, ok
}

// Schemes returns the mounted schemes in mount order.
func (r *BackendRegistry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// snapshot returns the backends in mount order.
func (r *BackendRegistry) snapshot() []blobstore.Store {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stores := make([]blobstore.Store, len(r.order))
	for i, scheme := range r.order {
		stores[i] = r.byScheme[scheme]
	}
	return stores
}

// Resolve returns the backend that serves addr. With a scheme this is a
// plain lookup; without one, backends are probed in mount order and the
// first one that has addr.BasePath() wins.
func (r *BackendRegistry) Resolve(ctx context.Context, addr address.Address) (blobstore.Store, error) {
	if scheme := addr.Scheme(); scheme != "" {
		s, ok := r.Lookup(scheme)
		if !ok {
			return nil, fmt.Errorf("%w: scheme %q", ErrBackendNotFound, scheme)
		}
		return s, nil
	}

	for _, s := range r.snapshot() {
		b, err := s.Open(ctx, addr.BasePath())
		if err != nil {
			if errors.Is(err, blobstore.ErrNotFound) {
				continue
			}
			return nil, err
		}
		_ = b.Close()
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, addr)
}

// open resolves the backend and opens addr.BasePath() on it.
func (r *BackendRegistry) open(ctx context.Context, addr address.Address) (blobstore.Blob, error) {
	if addr.Scheme() != "" {
		s, err := r.Resolve(ctx, addr)
		if err != nil {
			return nil, err
		}
		b, err := s.Open(ctx, addr.BasePath())
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", ErrBackendNotFound, addr, err)
		}
		return b, err
	}

	// Probe without reopening the winner.
	for _, s := range r.snapshot() {
		b, err := s.Open(ctx, addr.BasePath())
		if err != nil {
			if errors.Is(err, blobstore.ErrNotFound) {
				continue
			}
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, addr)
}
