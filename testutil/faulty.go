package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/content/blobstore"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("testutil: injected fault")

// Fault defines specific failure behavior.
type Fault struct {
	FailOnOpen     bool
	FailAfterBytes int64 // Fail reads after this many bytes. 0 disables.
	FailOnPut      bool
	Delay          time.Duration // Delay before Open returns; honors ctx.
	Err            error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyStore is a blobstore.Store wrapper that can inject errors.
type FaultyStore struct {
	blobstore.Store

	mu    sync.Mutex
	rules map[string]Fault // Name pattern -> Fault
	opens map[string]int
}

var _ blobstore.Store = (*FaultyStore)(nil)

// NewFaultyStore creates a new FaultyStore wrapping s.
func NewFaultyStore(s blobstore.Store) *FaultyStore {
	return &FaultyStore{
		Store: s,
		rules: make(map[string]Fault),
		opens: make(map[string]int),
	}
}

// AddRule adds a fault injection rule for names containing pattern.
func (f *FaultyStore) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// ClearRules removes all rules.
func (f *FaultyStore) ClearRules() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.rules)
}

// Opens returns how often name was opened.
func (f *FaultyStore) Opens(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[name]
}

func (f *FaultyStore) match(name string) (Fault, bool) {
	// Longest matching pattern wins.
	var (
		fault Fault
		best  = -1
	)
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) && len(pattern) > best {
			fault, best = rule, len(pattern)
		}
	}
	return fault, best >= 0
}

// Open opens name, applying the matching rule.
func (f *FaultyStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	f.mu.Lock()
	f.opens[name]++
	fault, ok := f.match(name)
	f.mu.Unlock()

	if ok && fault.Delay > 0 {
		timer := time.NewTimer(fault.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if ok && fault.FailOnOpen {
		return nil, fault.err()
	}

	b, err := f.Store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	if ok && fault.FailAfterBytes > 0 {
		return &faultyBlob{Blob: b, fault: fault}, nil
	}
	return b, nil
}

// Put writes name unless a rule fails puts.
func (f *FaultyStore) Put(ctx context.Context, name string, data []byte) error {
	f.mu.Lock()
	fault, ok := f.match(name)
	f.mu.Unlock()

	if ok && fault.FailOnPut {
		return fault.err()
	}
	return f.Store.Put(ctx, name, data)
}

type faultyBlob struct {
	blobstore.Blob
	fault Fault
	read  int64
}

func (fb *faultyBlob) Read(p []byte) (int, error) {
	remaining := fb.fault.FailAfterBytes - fb.read
	if remaining <= 0 {
		return 0, fb.fault.err()
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := fb.Blob.Read(p)
	fb.read += int64(n)
	return n, err
}
