package content

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    decodeHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordDecode(d time.Duration, bytes int, err error) {
//	    p.decodeHistogram.Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordEnqueue is called when a load schedules a background job.
	RecordEnqueue()

	// RecordDecode is called after the background read and decode of a job.
	// bytes is the number of bytes read, err is nil if successful.
	RecordDecode(duration time.Duration, bytes int, err error)

	// RecordFinalize is called after a job was finalized on the owning thread.
	RecordFinalize(duration time.Duration, err error)

	// RecordEvict is called after a prune pass with the number of removed entries.
	RecordEvict(count int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEnqueue()                         {}
func (NoopMetricsCollector) RecordDecode(time.Duration, int, error) {}
func (NoopMetricsCollector) RecordFinalize(time.Duration, error)    {}
func (NoopMetricsCollector) RecordEvict(int)                        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EnqueueCount       atomic.Int64
	DecodeCount        atomic.Int64
	DecodeErrors       atomic.Int64
	DecodeBytes        atomic.Int64
	DecodeTotalNanos   atomic.Int64
	FinalizeCount      atomic.Int64
	FinalizeErrors     atomic.Int64
	FinalizeTotalNanos atomic.Int64
	EvictCount         atomic.Int64
}

// RecordEnqueue implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEnqueue() {
	b.EnqueueCount.Add(1)
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(duration time.Duration, bytes int, err error) {
	b.DecodeCount.Add(1)
	b.DecodeTotalNanos.Add(duration.Nanoseconds())
	b.DecodeBytes.Add(int64(bytes))
	if err != nil {
		b.DecodeErrors.Add(1)
	}
}

// RecordFinalize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFinalize(duration time.Duration, err error) {
	b.FinalizeCount.Add(1)
	b.FinalizeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FinalizeErrors.Add(1)
	}
}

// RecordEvict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvict(count int) {
	b.EvictCount.Add(int64(count))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EnqueueCount:     b.EnqueueCount.Load(),
		DecodeCount:      b.DecodeCount.Load(),
		DecodeErrors:     b.DecodeErrors.Load(),
		DecodeBytes:      b.DecodeBytes.Load(),
		DecodeAvgNanos:   avg(b.DecodeTotalNanos.Load(), b.DecodeCount.Load()),
		FinalizeCount:    b.FinalizeCount.Load(),
		FinalizeErrors:   b.FinalizeErrors.Load(),
		FinalizeAvgNanos: avg(b.FinalizeTotalNanos.Load(), b.FinalizeCount.Load()),
		EvictCount:       b.EvictCount.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EnqueueCount     int64
	DecodeCount      int64
	DecodeErrors     int64
	DecodeBytes      int64
	DecodeAvgNanos   int64
	FinalizeCount    int64
	FinalizeErrors   int64
	FinalizeAvgNanos int64
	EvictCount       int64
}
