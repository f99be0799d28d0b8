package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrReadOnly is returned by stores that do not support writes.
var ErrReadOnly = errors.New("blobstore: read-only store")

// Store is an abstraction for reading and writing raw content blobs.
// Names are slash-separated paths relative to the store root.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.ReadCloser
	// Size returns the size of the blob in bytes.
	Size() int64
}

// ReadAll opens name and reads it to the end.
func ReadAll(ctx context.Context, s Store, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	return ReadBlob(b)
}

// ReadBlob reads an already opened blob to the end, sizing the buffer from Size.
func ReadBlob(b Blob) ([]byte, error) {
	size := b.Size()
	if size < 0 {
		return io.ReadAll(b)
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := buf.ReadFrom(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewBytesBlob returns a Blob reading from data. data must not be modified
// while the blob is in use.
func NewBytesBlob(data []byte) Blob {
	return &bytesBlob{Reader: bytes.NewReader(data), size: int64(len(data))}
}

type bytesBlob struct {
	*bytes.Reader
	size int64
}

func (b *bytesBlob) Close() error { return nil }

func (b *bytesBlob) Size() int64 { return b.size }
