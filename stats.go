package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/resource"
)

// TypeStats describes the cache of one asset type.
type TypeStats struct {
	Name        string `json:"name"`
	Entries     int    `json:"entries"`
	MemoryUsage int64  `json:"memory_usage"`
	MemoryLimit int64  `json:"memory_limit"`
	Hits        int64  `json:"hits"`
	Misses      int64  `json:"misses"`
}

// Stats is a snapshot of the service.
type Stats struct {
	Workers  int         `json:"workers"`
	Queued   int         `json:"queued"`
	Active   int         `json:"active"`
	Awaiting int         `json:"awaiting"`
	Types    []TypeStats `json:"types"`
}

// Stats returns a snapshot of the worker pool, the finalize queue and every
// registered cache, in registration order.
func (s *Service) Stats() Stats {
	st := Stats{
		Workers: s.pool.Workers(),
		Queued:  s.pool.Queued(),
		Active:  s.pool.Active(),
	}

	s.finalizeMu.Lock()
	st.Awaiting = len(s.awaiting)
	s.finalizeMu.Unlock()

	for _, reg := range s.registrations() {
		st.Types = append(st.Types, reg.stats())
	}
	return st
}

// AssetInfo describes one cached asset.
type AssetInfo struct {
	Type    string `json:"type"`
	Address string `json:"address"`
	Status  string `json:"status"`
	Policy  string `json:"policy"`
	Memory  int64  `json:"memory"`
	Refs    int32  `json:"refs"`
	Error   string `json:"error,omitempty"`
}

func newAssetInfo(typ string, b *resource.Base) AssetInfo {
	info := AssetInfo{
		Type:    typ,
		Address: b.Address().String(),
		Status:  b.Status().String(),
		Policy:  b.Policy().String(),
		Memory:  b.Memory(),
		Refs:    b.Refs(),
	}
	if err := b.Err(); err != nil {
		info.Error = err.Error()
	}
	return info
}

// Assets returns every cached asset of every registered type.
func (s *Service) Assets() []AssetInfo {
	var infos []AssetInfo
	for _, reg := range s.registrations() {
		reg.assets(func(info AssetInfo) bool {
			infos = append(infos, info)
			return true
		})
	}
	return infos
}

// JobInfo describes a job awaiting finalization.
type JobInfo struct {
	ID      uuid.UUID       `json:"id"`
	Address address.Address `json:"-"`
	Pending int             `json:"pending"`
	Age     time.Duration   `json:"age"`
}

// Jobs returns the jobs that are decoded but not yet finalized, typically
// because a dependency is still loading.
func (s *Service) Jobs() []JobInfo {
	now := time.Now()

	s.finalizeMu.Lock()
	defer s.finalizeMu.Unlock()

	infos := make([]JobInfo, 0, len(s.awaiting))
	for _, j := range s.awaiting {
		infos = append(infos, JobInfo{
			ID:      j.id,
			Address: j.asset.Resource().Address(),
			Pending: j.scope.Pending(),
			Age:     now.Sub(j.enqueued),
		})
	}
	return infos
}
