// Package blobstore provides the storage backends that content is read from.
//
// Store is the interface for reading and writing raw content blobs. Names are
// slash-separated paths relative to the store root (the path part of a
// content address, without scheme and fragment).
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory map, for embedded content and tests
//   - FilesystemStore: any go-billy filesystem (NewLocalStore for disk, NewMemFSStore for memfs)
//   - CompressedStore: zstd or lz4 at rest on top of another Store
//   - CachingStore: whole-blob LRU with request coalescing in front of a slow Store
//   - archive.Store: read-only zip archives
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Read-only backends return ErrReadOnly from Put and Delete.
package blobstore
