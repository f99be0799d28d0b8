// Package cache provides the per-asset-type registry of loaded assets.
//
// A Cache maps an address path to the single shared instance of an asset.
// It owns one reference to every entry; external holders own Handles. An
// entry is eligible for reclamation once it is no longer in flight and no
// handle or dependency scope references it:
//
//	Prune(false):  finished  &&  !tracked  &&  policy == Managed
//	Prune(true):   every entry (teardown)
//
// The memory counter lives in a resource.Controller. It is only moved by
// resource.Create and resource.Delete; the limit is advisory and enforcing
// it (by pruning) is the caller's job.
//
// Every method takes the same single lock. Critical sections do no I/O and
// never call into assets, so a Cache is safe to use from workers and the
// tick thread alike.
package cache
