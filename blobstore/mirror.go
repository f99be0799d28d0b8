package blobstore

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Mirror copies every blob under prefix from src to dst using up to
// concurrency parallel transfers. It returns the number of blobs copied.
func Mirror(ctx context.Context, dst, src Store, prefix string, concurrency int) (int, error) {
	names, err := src.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	if concurrency <= 0 {
		concurrency = 4
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var copied atomic.Int64
	for _, name := range names {
		g.Go(func() error {
			data, err := ReadAll(ctx, src, name)
			if err != nil {
				return err
			}
			if err := dst.Put(ctx, name, data); err != nil {
				return err
			}
			copied.Add(1)
			return nil
		})
	}

	err = g.Wait()
	return int(copied.Load()), err
}
