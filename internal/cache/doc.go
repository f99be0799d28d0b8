// Package cache provides byte-budgeted LRU caches for raw blob contents.
//
// LRU is a single-lock cache; ShardedLRU spreads names over several LRU shards to
// reduce contention when many workers read through the same cache.
//
// Both integrate with resource.Controller: bytes held by the cache are
// acquired from the controller and released on eviction, so a shared memory
// budget covers decoded assets and cached raw bytes alike.
package cache
