package cache

import (
	"hash/maphash"

	"github.com/hupe1980/content/resource"
)

// DefaultShards is the shard count NewShardedLRU uses.
const DefaultShards = 16

// ShardedLRU spreads names over independent LRUs so that concurrent workers
// rarely contend on one lock. Each shard gets an equal share of the capacity,
// so a single blob may not exceed capacity/shards bytes.
type ShardedLRU struct {
	shards []*LRU
	seed   maphash.Seed
}

// NewShardedLRU creates a ShardedLRU with DefaultShards shards.
func NewShardedLRU(capacity int64, rc *resource.Controller) *ShardedLRU {
	return NewShardedLRUN(capacity, DefaultShards, rc)
}

// NewShardedLRUN creates a ShardedLRU with n shards (at least one).
func NewShardedLRUN(capacity int64, n int, rc *resource.Controller) *ShardedLRU {
	n = max(n, 1)
	per := max(capacity/int64(n), 1)

	s := &ShardedLRU{
		shards: make([]*LRU, n),
		seed:   maphash.MakeSeed(),
	}
	for i := range s.shards {
		s.shards[i] = NewLRU(per, rc)
	}
	return s
}

func (s *ShardedLRU) shard(name string) *LRU {
	return s.shards[maphash.String(s.seed, name)%uint64(len(s.shards))]
}

func (s *ShardedLRU) Get(name string) ([]byte, bool) { return s.shard(name).Get(name) }

func (s *ShardedLRU) Set(name string, b []byte) { s.shard(name).Set(name, b) }

func (s *ShardedLRU) Remove(name string) bool { return s.shard(name).Remove(name) }

// Invalidate visits every shard in turn.
func (s *ShardedLRU) Invalidate(match func(name string) bool) {
	for _, sh := range s.shards {
		sh.Invalidate(match)
	}
}

// Stats sums the counters of all shards.
func (s *ShardedLRU) Stats() (hits, misses int64) {
	for _, sh := range s.shards {
		h, m := sh.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size returns the bytes held across all shards.
func (s *ShardedLRU) Size() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.Size()
	}
	return total
}

// Len returns the entries held across all shards.
func (s *ShardedLRU) Len() int {
	var total int
	for _, sh := range s.shards {
		total += sh.Len()
	}
	return total
}
