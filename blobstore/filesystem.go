package blobstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// FilesystemStore implements Store on top of a billy.Filesystem.
type FilesystemStore struct {
	bfs billy.Filesystem
}

// NewFilesystemStore wraps an existing billy filesystem.
func NewFilesystemStore(bfs billy.Filesystem) *FilesystemStore {
	return &FilesystemStore{bfs: bfs}
}

// NewLocalStore creates a store rooted at the given directory on disk.
func NewLocalStore(root string) *FilesystemStore {
	return NewFilesystemStore(osfs.New(root))
}

// NewMemFSStore creates a store backed by an empty in-memory filesystem.
func NewMemFSStore() *FilesystemStore {
	return NewFilesystemStore(memfs.New())
}

// Filesystem returns the underlying billy filesystem.
func (s *FilesystemStore) Filesystem() billy.Filesystem {
	return s.bfs
}

func normalize(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// Open opens a blob for reading.
func (s *FilesystemStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = normalize(name)
	info, err := s.bfs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: ErrNotFound}
	}

	f, err := s.bfs.Open(name)
	if err != nil {
		return nil, err
	}
	return &fileBlob{File: f, size: info.Size()}, nil
}

// Put writes to a temporary file next to the target and renames it into place.
func (s *FilesystemStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name = normalize(name)
	dir := path.Dir(name)
	if err := s.bfs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := s.bfs.TempFile(dir, ".put-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.bfs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = s.bfs.Remove(tmpName)
		return err
	}
	if err := s.bfs.Rename(tmpName, name); err != nil {
		_ = s.bfs.Remove(tmpName)
		return err
	}
	return nil
}

// Delete removes a blob.
func (s *FilesystemStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.bfs.Remove(normalize(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns all regular files whose slash path starts with prefix.
func (s *FilesystemStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	if err := s.walk(ctx, ".", prefix, &names); err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

func (s *FilesystemStore) walk(ctx context.Context, dir, prefix string, names *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	infos, err := s.bfs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, info := range infos {
		p := info.Name()
		if dir != "." {
			p = dir + "/" + p
		}
		if info.IsDir() {
			// Skip subtrees that cannot contain a match.
			if !strings.HasPrefix(p+"/", prefix) && !strings.HasPrefix(prefix, p+"/") {
				continue
			}
			if err := s.walk(ctx, p, prefix, names); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(info.Name(), ".put-") {
			continue
		}
		if strings.HasPrefix(p, prefix) {
			*names = append(*names, p)
		}
	}
	return nil
}

type fileBlob struct {
	billy.File
	size int64
}

func (b *fileBlob) Size() int64 { return b.size }
