package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/content/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func getKey(key string) any {
	return mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == "assets" && aws.ToString(in.Key) == key
	})
}

func TestStore_Open(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "assets", "live")

	client.On("GetObject", mock.Anything, getKey("live/textures/sky.png")).Return(&s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader("pixels")),
		ContentLength: aws.Int64(6),
	}, nil).Once()
	client.On("GetObject", mock.Anything, getKey("live/missing.png")).Return(nil, &types.NoSuchKey{}).Once()
	client.On("GetObject", mock.Anything, getKey("live/denied.png")).Return(nil, errors.New("access denied")).Once()

	b, err := store.Open(context.Background(), "textures/sky.png")
	require.NoError(t, err)
	assert.Equal(t, int64(6), b.Size())
	data, err := blobstore.ReadBlob(b)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
	require.NoError(t, b.Close())

	_, err = store.Open(context.Background(), "missing.png")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = store.Open(context.Background(), "denied.png")
	assert.ErrorContains(t, err, "access denied")
	assert.NotErrorIs(t, err, blobstore.ErrNotFound)

	client.AssertExpectations(t)
}

func TestStore_OpenUnknownLength(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "assets", "")

	client.On("GetObject", mock.Anything, getKey("chunked.bin")).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader("abc")),
	}, nil).Once()

	b, err := store.Open(context.Background(), "chunked.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), b.Size())

	data, err := blobstore.ReadBlob(b)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestStore_Put(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "assets", "live/")

	var uploaded string
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "live/levels/intro.bundle" &&
			aws.ToString(in.ContentType) == "application/octet-stream" &&
			in.ChecksumCRC32C != nil
	})).Run(func(args mock.Arguments) {
		data, _ := io.ReadAll(args.Get(1).(*s3.PutObjectInput).Body)
		uploaded = string(data)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(context.Background(), "levels/intro.bundle", []byte(`{"name":"intro"}`)))
	assert.Equal(t, `{"name":"intro"}`, uploaded)
	client.AssertExpectations(t)
}

func TestStore_PutWithoutChecksum(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "assets", "", func(c *UploadConfig) { c.EnableChecksum = false })

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return in.ChecksumCRC32C == nil && aws.ToString(in.ContentType) == "image/png"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(context.Background(), "sky.png", []byte("png")))
	client.AssertExpectations(t)
}

func TestStore_Delete(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "assets", "live")

	deleteKey := func(key string) any {
		return mock.MatchedBy(func(in *s3.DeleteObjectInput) bool { return aws.ToString(in.Key) == key })
	}
	client.On("DeleteObject", mock.Anything, deleteKey("live/old.png")).Return(&s3.DeleteObjectOutput{}, nil).Once()
	client.On("DeleteObject", mock.Anything, deleteKey("live/gone.png")).Return(nil, &types.NoSuchKey{}).Once()

	assert.NoError(t, store.Delete(context.Background(), "old.png"))
	assert.NoError(t, store.Delete(context.Background(), "gone.png"))
	client.AssertExpectations(t)
}

func TestStore_List(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "assets", "live")

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.Prefix) == "live/" && in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page-2"),
		Contents:              []types.Object{{Key: aws.String("live/textures/sky.png")}},
	}, nil).Once()
	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "page-2"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
		Contents:    []types.Object{{Key: aws.String("live/audio/theme.ogg")}},
	}, nil).Once()

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"audio/theme.ogg", "textures/sky.png"}, names)
	client.AssertExpectations(t)
}

func TestStore_Key(t *testing.T) {
	for root, want := range map[string]string{
		"":       "a/b.png",
		"live":   "live/a/b.png",
		"/live/": "live/a/b.png",
	} {
		assert.Equal(t, want, NewStore(nil, "assets", root).key("/a/./b.png"), root)
	}
}

func TestComputeCRC32C(t *testing.T) {
	// CRC32C("123456789") = 0xE3069283.
	assert.Equal(t, "4waSgw==", computeCRC32C([]byte("123456789")))
}
