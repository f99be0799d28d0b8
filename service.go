package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/blobstore"
	"github.com/hupe1980/content/internal/worker"
	"github.com/hupe1980/content/resource"
	"github.com/hupe1980/content/scope"
)

// Service loads, decodes, caches and retires assets.
//
// Load may be called from any goroutine, including decoders running on the
// worker pool. Tick, Flush, Reload, Unload, Prune, PruneAll and Close run
// OnCreate/OnDelete hooks and must be called from the owning thread, the one
// that may use the configured Host.
type Service struct {
	opts    options
	logger  *Logger
	metrics MetricsCollector
	rc      *resource.Controller

	loaders  *LoaderRegistry
	backends *BackendRegistry

	typesMu sync.RWMutex
	types   map[reflect.Type]registration
	order   []registration

	pool *worker.Pool[*job]

	finalizeMu sync.Mutex
	awaiting   []*job

	closed atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
}

// job is one background load: the asset being loaded and the scope that
// collects its dependencies.
type job struct {
	id       uuid.UUID
	asset    resource.Asset
	reg      registration
	scope    *scope.Scope
	enqueued time.Time
}

// New creates a Service and starts its worker pool.
func New(optFns ...Option) *Service {
	opts := applyOptions(optFns)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		opts:    opts,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
		rc: resource.NewController(resource.Config{
			MaxConcurrentReads: opts.maxConcurrentReads,
			IOLimitBytesPerSec: opts.ioLimitBytesPerSec,
		}),
		loaders:  newLoaderRegistry(),
		backends: newBackendRegistry(),
		types:    make(map[reflect.Type]registration),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.pool = worker.NewPool(opts.workers, s.process)

	s.logger.Debug("content service started", "workers", s.pool.Workers())
	return s
}

// Host returns the value handed to OnCreate and OnDelete.
func (s *Service) Host() resource.Host { return s.opts.host }

// Logger returns the service logger.
func (s *Service) Logger() *Logger { return s.logger }

// Loaders returns the decoder registry.
func (s *Service) Loaders() *LoaderRegistry { return s.loaders }

// Backends returns the backend registry.
func (s *Service) Backends() *BackendRegistry { return s.backends }

// Mount registers a storage backend under scheme.
func (s *Service) Mount(scheme string, store blobstore.Store) error {
	return s.backends.Mount(scheme, store)
}

// Unmount removes the backend mounted under scheme.
func (s *Service) Unmount(scheme string) bool {
	return s.backends.Unmount(scheme)
}

func (s *Service) registrations() []registration {
	s.typesMu.RLock()
	defer s.typesMu.RUnlock()
	return append([]registration(nil), s.order...)
}

// enqueue schedules a background job for a if it is Idle. Of any number of
// concurrent callers for the same asset, exactly one gets true.
func (s *Service) enqueue(reg registration, a resource.Asset) bool {
	b := a.Resource()
	if !b.TryTransition(resource.StatusIdle, resource.StatusQueued) {
		return false
	}

	j := &job{
		id:       uuid.New(),
		asset:    a,
		reg:      reg,
		scope:    scope.New(a),
		enqueued: time.Now(),
	}
	if err := s.pool.Submit(j); err != nil {
		s.fail(j, ErrClosed)
		return false
	}

	s.metrics.RecordEnqueue()
	s.logger.LogEnqueue(s.ctx, j.id, b.Address())
	return true
}

// process runs on a worker: read, decode, then hand over to the tick thread.
// A panic anywhere in the job fails it with a DecodeError.
func (s *Service) process(j *job) {
	if s.ctx.Err() != nil {
		s.fail(j, ErrClosed)
		return
	}

	start := time.Now()
	addr := j.asset.Resource().Address()

	defer func() {
		if r := recover(); r != nil {
			err := &DecodeError{Address: addr, cause: fmt.Errorf("panic: %v", r)}
			s.logger.LogDecode(s.ctx, j.id, addr, 0, time.Since(start), err)
			s.fail(j, err)
		}
	}()

	n, err := s.decode(j)

	duration := time.Since(start)
	s.metrics.RecordDecode(duration, n, err)
	s.logger.LogDecode(s.ctx, j.id, addr, n, duration, err)

	if err != nil {
		s.fail(j, err)
		return
	}

	s.finalizeMu.Lock()
	s.awaiting = append(s.awaiting, j)
	s.finalizeMu.Unlock()
}

func (s *Service) decode(j *job) (int, error) {
	addr := j.asset.Resource().Address()

	dec, ok := s.loaders.lookup(j.reg.assetType(), addr.Extension())
	if !ok {
		return 0, fmt.Errorf("%w: %q (%s)", ErrDecoderNotFound, addr.Extension(), addr)
	}

	data, err := s.read(s.ctx, addr)
	if err != nil {
		return 0, err
	}

	req := &DecodeRequest{
		Service: s,
		Scope:   j.scope,
		Address: addr,
		Data:    data,
		JobID:   j.id,
		ctx:     s.ctx,
	}
	if err := dec(req, j.asset); err != nil {
		return len(data), &DecodeError{Address: addr, cause: err}
	}
	return len(data), nil
}

// read fetches the bytes behind addr, bounded by the read slots and the IO
// rate limit.
func (s *Service) read(ctx context.Context, addr address.Address) ([]byte, error) {
	if err := s.rc.AcquireRead(ctx); err != nil {
		return nil, err
	}
	defer s.rc.ReleaseRead()

	b, err := s.backends.open(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	buf := bytes.NewBuffer(make([]byte, 0, max(b.Size(), 0)))
	if _, err := buf.ReadFrom(resource.NewRateLimitedReader(ctx, b, s.rc)); err != nil {
		return nil, fmt.Errorf("read %s: %w", addr, err)
	}
	return buf.Bytes(), nil
}

// fail marks the job's asset Failed and ends the job.
func (s *Service) fail(j *job, err error) {
	j.asset.Resource().Fail(err)
	j.scope.Close()
}

type readyJob struct {
	job *job
	err error
}

// Tick polls every job awaiting finalization and finalizes those whose
// dependencies have all completed. A job with a failed dependency fails with
// ErrDependencyFailed. It returns the number of jobs that left the queue.
func (s *Service) Tick() int {
	s.finalizeMu.Lock()
	var ready []readyJob
	for i := 0; i < len(s.awaiting); {
		j := s.awaiting[i]

		var err error
		if !j.scope.Poll() {
			dep, failed := j.scope.Failed()
			if !failed {
				i++
				continue
			}
			err = &DependencyError{
				Address:    j.asset.Resource().Address(),
				Dependency: dep.Resource().Address(),
				cause:      dep.Resource().Err(),
			}
		}

		last := len(s.awaiting) - 1
		s.awaiting[i] = s.awaiting[last]
		s.awaiting[last] = nil
		s.awaiting = s.awaiting[:last]
		ready = append(ready, readyJob{job: j, err: err})
	}
	s.finalizeMu.Unlock()

	for _, r := range ready {
		s.finalize(r.job, r.err)
	}

	if s.opts.autoPrune {
		s.pruneOverBudget()
	}
	return len(ready)
}

// finalize creates the asset on the owning thread, or fails it with depErr.
func (s *Service) finalize(j *job, depErr error) {
	start := time.Now()
	b := j.asset.Resource()

	err := depErr
	if err == nil {
		if cerr := resource.Create(j.asset, j.reg.controller(), s.opts.host); cerr != nil {
			err = &FinalizeError{Address: b.Address(), cause: cerr}
		}
	}

	if err != nil {
		b.Fail(err)
	} else {
		b.SetStatus(resource.StatusCompleted)
	}
	j.scope.Close()

	s.metrics.RecordFinalize(time.Since(start), err)
	s.logger.LogFinalize(s.ctx, j.id, b.Address(), b.Memory(), err)
}

func (s *Service) pruneOverBudget() {
	for _, reg := range s.registrations() {
		if reg.controller().OverBudget() {
			reg.prune(s, false)
		}
	}
}

// PruneAll prunes every registered cache and returns the number of removed
// entries.
func (s *Service) PruneAll(force bool) int {
	var n int
	for _, reg := range s.registrations() {
		n += reg.prune(s, force)
	}
	return n
}

// Pending returns the number of jobs queued, decoding or awaiting
// finalization.
func (s *Service) Pending() int {
	queued := s.pool.Queued()
	active := s.pool.Active()

	s.finalizeMu.Lock()
	awaiting := len(s.awaiting)
	s.finalizeMu.Unlock()

	return queued + active + awaiting
}

// Flush ticks until no job is pending or ctx is done.
func (s *Service) Flush(ctx context.Context) error {
	for {
		s.Tick()
		if s.Pending() == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.flushInterval):
		}
	}
}

// Store writes data to the backend that serves raw. Without a scheme, the
// first mounted backend is used. Cached assets are not reloaded.
func (s *Service) Store(ctx context.Context, raw string, data []byte) error {
	addr := address.Parse(raw)
	if addr.IsZero() {
		return ErrInvalidAddress
	}

	store, err := s.writeTarget(addr)
	if err != nil {
		return err
	}
	return store.Put(ctx, addr.BasePath(), data)
}

// Remove deletes the blob behind raw from its backend.
func (s *Service) Remove(ctx context.Context, raw string) error {
	addr := address.Parse(raw)
	if addr.IsZero() {
		return ErrInvalidAddress
	}

	store, err := s.backends.Resolve(ctx, addr)
	if err != nil {
		if addr.Scheme() == "" && errors.Is(err, ErrBackendNotFound) {
			return nil
		}
		return err
	}
	return store.Delete(ctx, addr.BasePath())
}

func (s *Service) writeTarget(addr address.Address) (blobstore.Store, error) {
	if scheme := addr.Scheme(); scheme != "" {
		store, ok := s.backends.Lookup(scheme)
		if !ok {
			return nil, fmt.Errorf("%w: scheme %q", ErrBackendNotFound, scheme)
		}
		return store, nil
	}

	schemes := s.backends.Schemes()
	if len(schemes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, addr)
	}
	store, _ := s.backends.Lookup(schemes[0])
	return store, nil
}

// Close stops the workers, fails every job that did not finish with
// ErrClosed and force-prunes all caches. It is idempotent.
func (s *Service) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.cancel()
	abandoned := s.pool.Close()

	s.finalizeMu.Lock()
	abandoned = append(abandoned, s.awaiting...)
	s.awaiting = nil
	s.finalizeMu.Unlock()

	for _, j := range abandoned {
		s.fail(j, ErrClosed)
	}

	evicted := s.PruneAll(true)
	s.logger.Info("content service closed",
		"abandoned", len(abandoned),
		"evicted", evicted,
	)
	return nil
}
