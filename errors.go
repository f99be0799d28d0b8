package content

import (
	"errors"
	"fmt"

	"github.com/hupe1980/content/address"
)

var (
	// ErrClosed is returned by operations on a closed Service. Jobs abandoned
	// by Close fail with it.
	ErrClosed = errors.New("content: service closed")

	// ErrNotRegistered is returned when an asset type has no cache.
	ErrNotRegistered = errors.New("content: asset type not registered")

	// ErrAlreadyRegistered is returned when an asset type, decoder extension
	// or backend scheme is registered twice.
	ErrAlreadyRegistered = errors.New("content: already registered")

	// ErrInvalidAddress is returned for an empty address.
	ErrInvalidAddress = errors.New("content: invalid address")

	// ErrInFlight is returned by Reload for an asset that has not finished.
	ErrInFlight = errors.New("content: asset still in flight")

	// ErrNotCached is returned by Reload for an asset that was unloaded or
	// pruned from its cache.
	ErrNotCached = errors.New("content: asset not cached")

	// ErrBackendNotFound means no mounted backend claims the address.
	ErrBackendNotFound = errors.New("content: no backend for address")

	// ErrDecoderNotFound means no decoder is registered for the extension.
	ErrDecoderNotFound = errors.New("content: no decoder for extension")

	// ErrDependencyFailed is the failure of an asset whose dependency failed.
	ErrDependencyFailed = errors.New("content: dependency failed")

	// ErrCyclicDependency is returned when an asset is marked as its own
	// dependency.
	ErrCyclicDependency = errors.New("content: asset depends on itself")

	// ErrTypeMismatch means a decoder received an asset of another type.
	ErrTypeMismatch = errors.New("content: asset type mismatch")
)

// DecodeError indicates that a backend returned bytes the decoder rejected.
//
// The original underlying error can be accessed via errors.Unwrap.
type DecodeError struct {
	Address address.Address
	cause   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Address, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// FinalizeError indicates that OnCreate failed on the owning thread.
//
// The original underlying error can be accessed via errors.Unwrap.
type FinalizeError struct {
	Address address.Address
	cause   error
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("finalize %s: %v", e.Address, e.cause)
}

func (e *FinalizeError) Unwrap() error { return e.cause }

// DependencyError reports which dependency made an asset fail.
// It matches ErrDependencyFailed with errors.Is.
type DependencyError struct {
	Address    address.Address
	Dependency address.Address
	cause      error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: dependency %s failed: %v", e.Address, e.Dependency, e.cause)
}

func (e *DependencyError) Is(target error) bool { return target == ErrDependencyFailed }

func (e *DependencyError) Unwrap() error { return e.cause }
