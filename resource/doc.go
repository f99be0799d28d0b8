// Package resource implements the lifecycle shared by every loadable asset and
// the accounting that goes with it.
//
// # Lifecycle
//
// Every asset embeds a Base. Its Status only ever moves forward:
//
//	Idle ──TryTransition──▶ Queued ──Create──▶ Completed
//	                           │
//	                           └──────────────▶ Failed
//
// Queued is the only state from which a load may proceed, and the Idle→Queued
// compare-and-swap is the sole guard against enqueuing an asset twice. A
// finished asset re-enters Idle only through an explicit reload.
//
// # Hooks
//
// Concrete assets implement Asset: OnCreate turns decoded bytes into a usable
// asset on the owning thread (device upload, for example) and OnDelete
// releases it. Create and Delete wrap the hooks once for all asset types and
// keep the memory counter of a Controller balanced:
//
//	┌───────────────┐  OnCreate ok  ┌──────────────────────────┐
//	│    Create     │──────────────▶│ Controller.ChargeMemory  │
//	├───────────────┤               ├──────────────────────────┤
//	│    Delete     │──────────────▶│ Controller.ReleaseMemory │
//	└───────────────┘ (first)       └──────────────────────────┘
//
// A Delete only ever releases what a prior successful Create charged.
//
// # Controller
//
// Controller tracks memory against an advisory limit, rate-limits backend IO
// with a token bucket and bounds concurrent backend reads with a semaphore:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   256 << 20,
//	    IOLimitBytesPerSec: 64 << 20,
//	    MaxConcurrentReads: 4,
//	})
//
// All Controller methods handle a nil receiver as "unlimited".
package resource
