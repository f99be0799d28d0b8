package server

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/content"
	"github.com/hupe1980/content/blobstore"
	"github.com/hupe1980/content/blobstore/archive"
	"github.com/hupe1980/content/blobstore/minio"
	"github.com/hupe1980/content/blobstore/s3"
	"github.com/hupe1980/content/internal/config"
	"github.com/hupe1980/content/resource"
)

// OpenStore builds the backend described by m. Compression and caching wrap
// the base store in that order, so cached bytes are already decompressed.
// The returned closer releases backend resources and may be nil.
func OpenStore(ctx context.Context, m config.MountConfig, rc *resource.Controller) (blobstore.Store, io.Closer, error) {
	var (
		store  blobstore.Store
		closer io.Closer
	)

	switch m.Type {
	case config.MountLocal:
		store = blobstore.NewLocalStore(m.Root)
	case config.MountMemory:
		store = blobstore.NewMemoryStore()
	case config.MountZip:
		zs, err := archive.OpenFile(m.Root)
		if err != nil {
			return nil, nil, fmt.Errorf("open archive %s: %w", m.Root, err)
		}
		store, closer = zs, zs
	case config.MountMinio:
		ms, err := minio.Connect(ctx, minio.Config{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Secure:    m.UseSSL,
			Region:    m.Region,
			Bucket:    m.Bucket,
			Prefix:    m.Prefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect minio %s: %w", m.Endpoint, err)
		}
		store = ms
	case config.MountS3:
		optFns := []s3.Option{s3.WithPrefix(m.Prefix)}
		if m.Region != "" {
			optFns = append(optFns, s3.WithRegion(m.Region))
		}
		if m.Endpoint != "" {
			optFns = append(optFns, s3.WithEndpoint(m.Endpoint))
		}
		ss, err := s3.New(ctx, m.Bucket, optFns...)
		if err != nil {
			return nil, nil, fmt.Errorf("connect s3 %s: %w", m.Bucket, err)
		}
		store = ss
	default:
		return nil, nil, fmt.Errorf("unknown mount type %q", m.Type)
	}

	compression, err := config.ParseCompression(m.Compression)
	if err != nil {
		return nil, closer, err
	}
	if compression != blobstore.CompressionNone {
		store = blobstore.NewCompressedStore(store, compression)
	}

	if size := m.CacheSize.Int64(); size > 0 {
		store = blobstore.NewCachingStore(store, size, rc)
	}
	return store, closer, nil
}

// MountAll opens every configured backend and mounts it on svc, then copies
// blobs into mounts that set MirrorFrom. On error the stores opened so far
// are closed.
func MountAll(ctx context.Context, svc *content.Service, mounts []config.MountConfig) ([]io.Closer, error) {
	var closers []io.Closer
	stores := make(map[string]blobstore.Store, len(mounts))
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	for _, m := range mounts {
		store, closer, err := OpenStore(ctx, m, nil)
		if closer != nil {
			closers = append(closers, closer)
		}
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("mount %s: %w", m.Scheme, err)
		}
		if err := svc.Mount(m.Scheme, store); err != nil {
			closeAll()
			return nil, err
		}
		stores[m.Scheme] = store
		svc.Logger().Info("backend mounted",
			"scheme", m.Scheme,
			"type", m.Type,
			"compression", m.Compression,
			"cache_size", m.CacheSize.Int64(),
		)

		if m.MirrorFrom == "" {
			continue
		}
		src, ok := stores[m.MirrorFrom]
		if !ok || m.MirrorFrom == m.Scheme {
			closeAll()
			return nil, fmt.Errorf("mount %s: mirror source %q is not an earlier mount", m.Scheme, m.MirrorFrom)
		}
		n, err := blobstore.Mirror(ctx, store, src, m.MirrorPrefix, m.MirrorConcurrency)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("mount %s: mirror from %s: %w", m.Scheme, m.MirrorFrom, err)
		}
		svc.Logger().Info("backend mirrored",
			"scheme", m.Scheme,
			"from", m.MirrorFrom,
			"prefix", m.MirrorPrefix,
			"blobs", n,
		)
	}
	return closers, nil
}
