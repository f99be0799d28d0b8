package minio

import (
	"bytes"
	"context"
	"mime"
	"path"
	"slices"
	"strings"

	"github.com/hupe1980/content/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store implements blobstore.Store over one bucket of a MinIO or other
// S3-compatible server. Blob names are keys relative to an optional root.
type Store struct {
	client *minio.Client
	bucket string
	root   string // "" or a key prefix ending in "/"
}

var _ blobstore.Store = (*Store)(nil)

// NewStore wraps an existing client. root is prepended to every blob name;
// a missing trailing slash is added.
func NewStore(client *minio.Client, bucket, root string) *Store {
	root = strings.Trim(root, "/")
	if root != "" {
		root += "/"
	}
	return &Store{client: client, bucket: bucket, root: root}
}

// Config describes a MinIO connection.
type Config struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Secure       bool
	Region       string
	Bucket       string
	Prefix       string
	CreateBucket bool // create Bucket when it does not exist
}

// Connect dials cfg.Endpoint and returns a store for cfg.Bucket.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	if cfg.CreateBucket {
		if err := ensureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
			return nil, err
		}
	}
	return NewStore(client, cfg.Bucket, cfg.Prefix), nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket, region string) error {
	ok, err := client.BucketExists(ctx, bucket)
	if err != nil || ok {
		return err
	}
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
}

func (s *Store) key(name string) string {
	return s.root + strings.TrimPrefix(path.Clean("/"+name), "/")
}

func notFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// Open fetches the object. GetObject is lazy, so the object is stat'ed
// through the returned handle to surface a missing key here rather than on
// the first Read.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if notFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &object{Object: obj, size: info.Size}, nil
}

// Put uploads data, setting the content type from the name's extension.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	opts := minio.PutObjectOptions{ContentType: contentType(name)}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), opts)
	return err
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Delete removes the object. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !notFound(err) {
		return err
	}
	return nil
}

// List returns the sorted names below the store root that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.root + prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if name := strings.TrimPrefix(obj.Key, s.root); name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

type object struct {
	*minio.Object
	size int64
}

func (o *object) Size() int64 { return o.size }
