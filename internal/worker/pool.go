// Package worker provides a fixed pool of goroutines draining an unbounded
// work list.
package worker

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("worker: pool closed")

// Pool runs handle on submitted items with a fixed number of goroutines.
//
// Submit never blocks: the work list grows as needed. Idle workers wait on a
// condition variable until the list is non-empty or the pool is closed.
type Pool[J any] struct {
	handle func(J)

	mu      sync.Mutex
	cond    *sync.Cond
	work    []J
	stopped bool

	numWorkers int
	active     atomic.Int64
	closed     atomic.Bool
	wg         sync.WaitGroup
}

// NewPool starts numWorkers goroutines running handle.
// If numWorkers <= 0, runtime.GOMAXPROCS(0) is used.
func NewPool[J any](numWorkers int, handle func(J)) *Pool[J] {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool[J]{
		handle:     handle,
		numWorkers: numWorkers,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool[J]) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.work) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped {
			p.mu.Unlock()
			return
		}

		j := p.work[0]
		var zero J
		p.work[0] = zero
		p.work = p.work[1:]
		p.active.Add(1)
		p.mu.Unlock()

		p.handle(j)
		p.active.Add(-1)
	}
}

// Submit appends j to the work list and wakes one worker.
func (p *Pool[J]) Submit(j J) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrClosed
	}
	p.work = append(p.work, j)
	p.mu.Unlock()

	p.cond.Signal()
	return nil
}

// Queued returns the number of items waiting for a worker.
func (p *Pool[J]) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.work)
}

// Active returns the number of items being handled right now.
func (p *Pool[J]) Active() int { return int(p.active.Load()) }

// Workers returns the pool size.
func (p *Pool[J]) Workers() int { return p.numWorkers }

// Close stops the workers and waits for them to exit. Items still queued
// are not handled; they are returned to the caller. Close is idempotent.
func (p *Pool[J]) Close() []J {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.mu.Lock()
	p.stopped = true
	abandoned := p.work
	p.work = nil
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()

	return abandoned
}
