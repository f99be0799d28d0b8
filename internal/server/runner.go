package server

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hupe1980/content"
	"github.com/hupe1980/content/formats"
	"github.com/hupe1980/content/resource"
)

// Asset kinds accepted by Runner.Load.
const (
	KindBlob   = "blob"
	KindBundle = "bundle"
)

var (
	// ErrUnknownKind is returned for an asset kind Runner does not know.
	ErrUnknownKind = errors.New("server: unknown asset kind")

	// ErrNotPinned is returned for an address that was not loaded through
	// the runner.
	ErrNotPinned = errors.New("server: asset not pinned")

	// ErrStopped is returned once Run has returned.
	ErrStopped = errors.New("server: runner stopped")
)

// pin keeps a handle loaded over HTTP alive until it is unloaded.
type pin struct {
	kind    string
	release func()
	unload  func() bool
	reload  func() error
}

// Runner owns the tick thread of a service. Everything that may run
// OnCreate or OnDelete goes through Do and executes on that thread.
type Runner struct {
	svc      *content.Service
	interval time.Duration

	cmds    chan func()
	stopped chan struct{}

	mu     sync.Mutex
	pinned map[string]pin
}

// NewRunner creates a runner that ticks svc every interval.
func NewRunner(svc *content.Service, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Runner{
		svc:      svc,
		interval: interval,
		cmds:     make(chan func()),
		stopped:  make(chan struct{}),
		pinned:   make(map[string]pin),
	}
}

// Service returns the driven service.
func (r *Runner) Service() *content.Service { return r.svc }

// Run ticks until ctx is done, then releases every pin and closes the
// service on the same thread.
func (r *Runner) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.stopped)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.releaseAll()
			return r.svc.Close()
		case fn := <-r.cmds:
			fn()
		case <-ticker.C:
			r.svc.Tick()
		}
	}
}

// Do runs fn on the tick thread and waits for it.
func (r *Runner) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	cmd := func() {
		defer close(done)
		fn()
	}

	select {
	case r.cmds <- cmd:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted, fn runs to completion.
	<-done
	return nil
}

// Load loads raw as kind and pins it. Loading a pinned address again is a
// no-op.
func (r *Runner) Load(kind, raw string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pinned[raw]; ok {
		return nil
	}

	var (
		p   pin
		err error
	)
	switch kind {
	case KindBlob:
		p, err = pinAsset[*formats.Blob](r.svc, kind, raw)
	case KindBundle:
		p, err = pinAsset[*formats.Bundle](r.svc, kind, raw)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return err
	}

	r.pinned[raw] = p
	return nil
}

// Unload drops the pin on raw and unloads the asset if it has finished. If
// the tick thread cannot take the request, the pin's reference is still
// released.
func (r *Runner) Unload(ctx context.Context, raw string) (bool, error) {
	p, ok := r.unpin(raw)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotPinned, raw)
	}

	var removed bool
	if err := r.Do(ctx, func() {
		p.release()
		removed = p.unload()
	}); err != nil {
		// The pin is gone either way; drop its reference so a later prune
		// can evict the asset.
		p.release()
		return false, err
	}
	return removed, nil
}

// Reload reloads a pinned asset.
func (r *Runner) Reload(ctx context.Context, raw string) error {
	r.mu.Lock()
	p, ok := r.pinned[raw]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotPinned, raw)
	}

	var rerr error
	if err := r.Do(ctx, func() { rerr = p.reload() }); err != nil {
		return err
	}
	return rerr
}

// Prune prunes every cache on the tick thread.
func (r *Runner) Prune(ctx context.Context, force bool) (int, error) {
	var n int
	err := r.Do(ctx, func() { n = r.svc.PruneAll(force) })
	return n, err
}

// Pinned returns the pinned addresses by kind.
func (r *Runner) Pinned() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]string, len(r.pinned))
	for raw, p := range r.pinned {
		out[raw] = p.kind
	}
	return out
}

func (r *Runner) unpin(raw string) (pin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pinned[raw]
	if ok {
		delete(r.pinned, raw)
	}
	return p, ok
}

func (r *Runner) releaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for raw, p := range r.pinned {
		p.release()
		delete(r.pinned, raw)
	}
}

func pinAsset[T resource.Asset](svc *content.Service, kind, raw string) (pin, error) {
	h, err := content.Load[T](svc, raw, nil)
	if err != nil {
		return pin{}, err
	}
	return pin{
		kind:    kind,
		release: h.Release,
		unload:  func() bool { return content.Unload(svc, h) },
		reload:  func() error { return content.Reload(svc, h) },
	}, nil
}
