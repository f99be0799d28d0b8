package resource

import "sync/atomic"

// Handle is one external reference to a cached asset. While any handle is
// unreleased the asset counts as tracked and a non-forced prune keeps it.
//
// Handles are cheap; every Load returns a new one. Release each exactly once
// when done (extra calls are ignored).
type Handle[T Asset] struct {
	asset    T
	released atomic.Bool
}

// NewHandle retains a and returns a handle owning that reference.
func NewHandle[T Asset](a T) *Handle[T] {
	a.Resource().Retain()
	return &Handle[T]{asset: a}
}

// Get returns the asset. It remains valid after Release, but may then be
// evicted and deleted at any time.
func (h *Handle[T]) Get() T { return h.asset }

// Resource is a shortcut for h.Get().Resource().
func (h *Handle[T]) Resource() *Base { return h.asset.Resource() }

// Status is a shortcut for h.Resource().Status().
func (h *Handle[T]) Status() Status { return h.asset.Resource().Status() }

// Release drops the reference. It is idempotent.
func (h *Handle[T]) Release() {
	if h.released.CompareAndSwap(false, true) {
		h.asset.Resource().Release()
	}
}

// Clone returns a second, independent handle to the same asset.
func (h *Handle[T]) Clone() *Handle[T] { return NewHandle(h.asset) }
