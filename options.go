package content

import (
	"log/slog"
	"time"

	"github.com/hupe1980/content/resource"
)

type options struct {
	workers            int
	host               resource.Host
	metricsCollector   MetricsCollector
	logger             *Logger
	ioLimitBytesPerSec int64
	maxConcurrentReads int64
	autoPrune          bool
	flushInterval      time.Duration
}

// Option configures a Service.
type Option func(*options)

// WithWorkers sets the number of background decode workers.
// If n <= 0, runtime.GOMAXPROCS(0) is used.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithHost sets the value handed to OnCreate and OnDelete, typically the
// graphics or audio device owned by the tick thread.
func WithHost(host resource.Host) Option {
	return func(o *options) {
		o.host = host
	}
}

// WithMetricsCollector configures metrics collection for load operations.
//
//	metrics := &content.BasicMetricsCollector{}
//	svc := content.New(content.WithMetricsCollector(metrics))
//	// ... load things ...
//	stats := metrics.GetStats()
//	fmt.Printf("Decodes: %d, Avg latency: %dns\n", stats.DecodeCount, stats.DecodeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := content.NewJSONLogger(slog.LevelInfo)
//	svc := content.New(content.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithIOLimit caps the combined backend read throughput in bytes per second.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimitBytesPerSec = bytesPerSec
	}
}

// WithMaxConcurrentReads bounds how many workers may read from backends at
// the same time. Decoding is not bounded by it.
func WithMaxConcurrentReads(n int64) Option {
	return func(o *options) {
		o.maxConcurrentReads = n
	}
}

// WithAutoPrune makes Tick run a non-forced prune on every cache whose
// memory usage exceeds its limit.
func WithAutoPrune() Option {
	return func(o *options) {
		o.autoPrune = true
	}
}

// WithFlushInterval sets how long Flush sleeps between ticks. Default: 1ms.
func WithFlushInterval(d time.Duration) Option {
	return func(o *options) {
		o.flushInterval = d
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		flushInterval:    time.Millisecond,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.flushInterval <= 0 {
		o.flushInterval = time.Millisecond
	}
	return o
}
