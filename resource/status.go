package resource

// Status is the load state of an asset.
type Status uint32

const (
	// StatusIdle means not requested, or reset for a reload.
	StatusIdle Status = iota
	// StatusQueued means enqueued exactly once and in flight: reading,
	// decoding or awaiting finalization.
	StatusQueued
	// StatusCompleted means finalized and ready for use.
	StatusCompleted
	// StatusFailed means the load stopped; Base.Err holds the reason.
	StatusFailed
)

// String returns the lower-case name of s.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusQueued:
		return "queued"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Finished reports whether s is terminal.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Policy decides who owns an asset's lifetime.
type Policy uint32

const (
	// Managed assets are owned by their cache and may be evicted by Prune.
	Managed Policy = iota
	// Exclusive assets are never evicted automatically, only by a forced
	// prune or an explicit unload.
	Exclusive
)

// String returns the lower-case name of p.
func (p Policy) String() string {
	if p == Exclusive {
		return "exclusive"
	}
	return "managed"
}
