package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the advisory memory budget. Charges never fail on
	// it; OverBudget and TryAcquireMemory consult it. 0 means unlimited.
	MemoryLimitBytes int64

	// MaxConcurrentReads bounds simultaneous backend reads.
	// If 0, reads are not bounded.
	MaxConcurrentReads int64

	// IOLimitBytesPerSec is the maximum read throughput from backends.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller tracks memory and governs backend IO.
type Controller struct {
	// Memory
	memLimit atomic.Int64
	memUsed  atomic.Int64

	// Concurrency
	readSem *semaphore.Weighted // nil if unbounded

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{}
	c.memLimit.Store(cfg.MemoryLimitBytes)

	if cfg.MaxConcurrentReads > 0 {
		c.readSem = semaphore.NewWeighted(cfg.MaxConcurrentReads)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// ChargeMemory adds bytes to the usage unconditionally.
func (c *Controller) ChargeMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	c.memUsed.Add(bytes)
}

// TryAcquireMemory charges bytes only if the limit allows it.
// Returns true if acquired, false if the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	for {
		used := c.memUsed.Load()
		limit := c.memLimit.Load()
		if limit > 0 && used+bytes > limit {
			return false
		}
		if c.memUsed.CompareAndSwap(used, used+bytes) {
			return true
		}
	}
}

// ReleaseMemory releases charged memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// SetMemoryUsage overwrites the usage counter.
func (c *Controller) SetMemoryUsage(bytes int64) {
	if c == nil {
		return
	}
	c.memUsed.Store(bytes)
}

// MemoryLimit returns the advisory limit in bytes (0 = unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.memLimit.Load()
}

// SetMemoryLimit changes the advisory limit.
func (c *Controller) SetMemoryLimit(bytes int64) {
	if c == nil {
		return
	}
	c.memLimit.Store(bytes)
}

// OverBudget reports whether usage exceeds a configured limit.
func (c *Controller) OverBudget() bool {
	limit := c.MemoryLimit()
	return limit > 0 && c.MemoryUsage() > limit
}

// AcquireRead reserves a backend read slot, blocking while all are busy.
func (c *Controller) AcquireRead(ctx context.Context) error {
	if c == nil || c.readSem == nil {
		return nil
	}
	return c.readSem.Acquire(ctx, 1)
}

// ReleaseRead releases a backend read slot.
func (c *Controller) ReleaseRead() {
	if c == nil || c.readSem == nil {
		return
	}
	c.readSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}

// ioBurst caps a single wait to the limiter's bucket size.
func (c *Controller) ioBurst(n int) int {
	if c == nil || c.ioLimiter == nil {
		return n
	}
	if b := c.ioLimiter.Burst(); n > b {
		return b
	}
	return n
}
