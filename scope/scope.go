// Package scope tracks the dependencies of one in-flight load job.
//
// A Scope is created when a job is enqueued and closed when the job reaches
// finalization. Decoders mark every nested dependency on it; the tick thread
// polls it once per tick until all dependencies have completed. Polling
// never blocks, so a slow dependency only delays its own dependents.
package scope

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/content/resource"
)

// MaxDependencies bounds the dependency fan-out of a single job.
const MaxDependencies = 64

// ErrTooManyDependencies is returned by Mark when a scope is full.
var ErrTooManyDependencies = fmt.Errorf("scope: more than %d dependencies", MaxDependencies)

// ErrClosed is returned by Mark after Close.
var ErrClosed = errors.New("scope: closed")

// Scope binds a job's own asset to the assets it depends on. It holds a
// reference on each of them until Close.
//
// Mark may be called from the decoding worker while the tick thread polls.
type Scope struct {
	owner resource.Asset

	mu      sync.Mutex
	pending []resource.Asset
	closed  bool
}

// New returns a scope owned by the job for owner, retaining owner.
func New(owner resource.Asset) *Scope {
	owner.Resource().Retain()
	return &Scope{
		owner:   owner,
		pending: make([]resource.Asset, 0, 4),
	}
}

// Owner returns the asset the job loads.
func (s *Scope) Owner() resource.Asset { return s.owner }

// Mark records dep as a dependency, retaining it until it completes or the
// scope closes. Already completed assets are recorded too; the next Poll
// drops them.
func (s *Scope) Mark(dep resource.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if len(s.pending) >= MaxDependencies {
		return ErrTooManyDependencies
	}

	dep.Resource().Retain()
	s.pending = append(s.pending, dep)
	return nil
}

// Poll drops every completed dependency and reports whether none are left.
// Once it has returned true it keeps returning true until Mark is called.
func (s *Scope) Poll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < len(s.pending); {
		dep := s.pending[i]
		if !dep.Resource().HasCompleted() {
			i++
			continue
		}

		last := len(s.pending) - 1
		s.pending[i] = s.pending[last]
		s.pending[last] = nil
		s.pending = s.pending[:last]
		dep.Resource().Release()
	}

	return len(s.pending) == 0
}

// Failed returns a pending dependency that failed, if any.
func (s *Scope) Failed() (resource.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dep := range s.pending {
		if dep.Resource().HasFailed() {
			return dep, true
		}
	}
	return nil, false
}

// Pending returns the number of dependencies not yet seen completed.
func (s *Scope) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close releases the references held on the owner and on every pending
// dependency. It is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for i, dep := range s.pending {
		dep.Resource().Release()
		s.pending[i] = nil
	}
	s.pending = nil
	s.owner.Resource().Release()
}
