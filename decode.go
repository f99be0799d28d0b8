package content

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/resource"
	"github.com/hupe1980/content/scope"
)

// DecodeRequest is what a decoder gets to populate one asset.
type DecodeRequest struct {
	// Service is the service running the job. Decoders load nested
	// dependencies through it with Load(req.Service, addr, req.Scope).
	Service *Service

	// Scope collects the job's dependencies.
	Scope *scope.Scope

	// Address is the address of the asset being decoded.
	Address address.Address

	// Data holds the bytes read from the backend for Address.BasePath().
	Data []byte

	// JobID identifies the job in logs and in Service.Jobs.
	JobID uuid.UUID

	ctx context.Context
}

// Context is canceled when the service closes.
func (r *DecodeRequest) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// DecoderFunc populates asset from req.Data. It runs on a worker goroutine
// and must not touch the Host; that is what OnCreate is for.
type DecoderFunc[T resource.Asset] func(req *DecodeRequest, asset T) error

// RegisterDecoder registers fn for assets of type T at the given extensions.
// AnyExtension registers a fallback for extensions without a decoder.
func RegisterDecoder[T resource.Asset](s *Service, fn DecoderFunc[T], exts ...string) error {
	typ := reflect.TypeFor[T]()
	return s.loaders.register(typ, func(req *DecodeRequest, a resource.Asset) error {
		asset, ok := a.(T)
		if !ok {
			return fmt.Errorf("%w: want %s, got %T", ErrTypeMismatch, typ, a)
		}
		return fn(req, asset)
	}, exts)
}
