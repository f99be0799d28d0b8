package resource

import (
	"sync/atomic"

	"github.com/hupe1980/content/address"
)

// Base is the lifecycle state embedded by every concrete asset.
//
// Status is the only field mutated across goroutines while a load is in
// flight. Go atomics are sequentially consistent, so everything a worker
// wrote before publishing a status is visible to whoever observes it.
type Base struct {
	addr   address.Address
	status atomic.Uint32
	policy atomic.Uint32

	memory  atomic.Int64
	charged atomic.Int64
	created atomic.Bool

	refs atomic.Int32
	err  atomic.Pointer[error]
}

// Init sets the identity and ownership policy. It must be called once, before
// the asset is shared.
func (b *Base) Init(addr address.Address, policy Policy) {
	b.addr = addr
	b.policy.Store(uint32(policy))
}

// Resource returns b. Embedding Base makes a type satisfy the Resource half
// of the Asset interface.
func (b *Base) Resource() *Base { return b }

// Address returns the identity of the asset.
func (b *Base) Address() address.Address { return b.addr }

// Status returns the current status.
func (b *Base) Status() Status { return Status(b.status.Load()) }

// SetStatus stores s unconditionally.
func (b *Base) SetStatus(s Status) { b.status.Store(uint32(s)) }

// TryTransition moves the status from from to to. It returns false, and
// changes nothing, if the current status is not from.
func (b *Base) TryTransition(from, to Status) bool {
	return b.status.CompareAndSwap(uint32(from), uint32(to))
}

// HasFinished reports whether the status is Completed or Failed.
func (b *Base) HasFinished() bool { return b.Status().Finished() }

// HasCompleted reports whether the status is Completed.
func (b *Base) HasCompleted() bool { return b.Status() == StatusCompleted }

// HasFailed reports whether the status is Failed.
func (b *Base) HasFailed() bool { return b.Status() == StatusFailed }

// Fail records err and marks the asset Failed.
func (b *Base) Fail(err error) {
	if err != nil {
		b.err.Store(&err)
	}
	b.SetStatus(StatusFailed)
}

// Err returns the reason of the last failure, or nil.
func (b *Base) Err() error {
	if p := b.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Reset returns a finished asset to Idle and clears the failure reason.
// It reports false, changing nothing, if the asset is Idle or Queued. Only a
// reload calls it, after the asset has been deleted.
func (b *Base) Reset() bool {
	for {
		s := b.Status()
		if !s.Finished() {
			return false
		}
		if b.status.CompareAndSwap(uint32(s), uint32(StatusIdle)) {
			b.err.Store(nil)
			return true
		}
	}
}

// Policy returns the ownership policy.
func (b *Base) Policy() Policy { return Policy(b.policy.Load()) }

// SetPolicy changes the ownership policy, e.g. to pin a loaded asset.
func (b *Base) SetPolicy(p Policy) { b.policy.Store(uint32(p)) }

// Created reports whether a successful Create has not been undone by Delete.
func (b *Base) Created() bool { return b.created.Load() }

// Memory returns the footprint estimate in bytes.
func (b *Base) Memory() int64 { return b.memory.Load() }

// SetMemory records the footprint estimate. Concrete assets call it from
// OnCreate; Create charges whatever value is set when OnCreate returns.
func (b *Base) SetMemory(n int64) { b.memory.Store(n) }

// Retain registers one external holder.
func (b *Base) Retain() { b.refs.Add(1) }

// Release drops one external holder.
func (b *Base) Release() {
	if b.refs.Add(-1) < 0 {
		panic("resource: release of unretained asset " + b.addr.String())
	}
}

// Refs returns the number of external holders.
func (b *Base) Refs() int32 { return b.refs.Load() }

// Tracked reports whether anyone besides the cache still holds the asset.
func (b *Base) Tracked() bool { return b.Refs() > 0 }
