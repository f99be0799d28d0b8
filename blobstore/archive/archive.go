// Package archive provides a read-only blobstore.Store over a zip archive.
//
// Archives are the usual way to ship packed content next to a binary: mount
// one under a scheme and address its entries by their path inside the zip.
package archive

import (
	"bytes"
	"context"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/hupe1980/content/blobstore"
	"github.com/klauspost/compress/zip"
)

// Store implements blobstore.Store for zip archives. It is read-only.
type Store struct {
	files  map[string]*zip.File
	names  []string
	closer io.Closer
}

var _ blobstore.Store = (*Store)(nil)

// New opens an archive from r.
func New(r io.ReaderAt, size int64) (*Store, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	s := &Store{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.TrimPrefix(f.Name, "/")
		s.files[name] = f
		s.names = append(s.names, name)
	}
	slices.Sort(s.names)
	return s, nil
}

// NewFromBytes opens an archive held in memory.
func NewFromBytes(data []byte) (*Store, error) {
	return New(bytes.NewReader(data), int64(len(data)))
}

// OpenFile opens an archive on disk. Close releases the file.
func OpenFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	s, err := New(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

// Load reads an archive blob from another store.
func Load(ctx context.Context, src blobstore.Store, name string) (*Store, error) {
	data, err := blobstore.ReadAll(ctx, src, name)
	if err != nil {
		return nil, err
	}
	return NewFromBytes(data)
}

// Open opens an entry for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, ok := s.files[strings.TrimPrefix(name, "/")]
	if !ok {
		return nil, blobstore.ErrNotFound
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	return &entryBlob{ReadCloser: rc, size: int64(f.UncompressedSize64)}, nil
}

// Put always fails with blobstore.ErrReadOnly.
func (s *Store) Put(context.Context, string, []byte) error {
	return blobstore.ErrReadOnly
}

// Delete always fails with blobstore.ErrReadOnly.
func (s *Store) Delete(context.Context, string) error {
	return blobstore.ErrReadOnly
}

// List returns all entry names with the given prefix.
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	for _, name := range s.names {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.names) }

// Close releases the underlying file, if any.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

type entryBlob struct {
	io.ReadCloser
	size int64
}

func (b *entryBlob) Size() int64 { return b.size }
