package formats_test

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/content"
	"github.com/hupe1980/content/blobstore"
	"github.com/hupe1980/content/codec"
	"github.com/hupe1980/content/formats"
	"github.com/hupe1980/content/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*content.Service, *blobstore.MemoryStore) {
	t.Helper()

	svc := content.New(content.WithWorkers(2))
	t.Cleanup(func() { _ = svc.Close() })

	store := blobstore.NewMemoryStore()
	require.NoError(t, svc.Mount("pkg", store))
	require.NoError(t, formats.Register(svc))
	return svc, store
}

func put(t *testing.T, store blobstore.Store, name string, data []byte) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), name, data))
}

func flush(t *testing.T, svc *content.Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Flush(ctx))
}

func TestBlob(t *testing.T) {
	svc, store := setup(t)
	put(t, store, "sfx/jump.wav", []byte("RIFF"))

	h, err := content.Load[*formats.Blob](svc, "pkg://sfx/jump.wav", nil)
	require.NoError(t, err)
	defer h.Release()
	assert.Nil(t, h.Get().Bytes())

	flush(t, svc)
	require.Equal(t, resource.StatusCompleted, h.Status())
	assert.Equal(t, []byte("RIFF"), h.Get().Bytes())
	assert.Equal(t, int64(4), h.Resource().Memory())
}

func TestBundle_LoadsMembers(t *testing.T) {
	svc, store := setup(t)

	put(t, store, "levels/intro/sky.png", []byte("sky"))
	put(t, store, "levels/intro/music.ogg", []byte("music"))
	put(t, store, "shared/ui.bundle", codec.MustMarshal(nil, formats.Manifest{
		Name:  "ui",
		Blobs: []string{"pkg://shared/font.ttf"},
	}))
	put(t, store, "shared/font.ttf", []byte("font"))
	put(t, store, "levels/intro/intro.bundle", codec.MustMarshal(nil, formats.Manifest{
		Name:    "intro",
		Blobs:   []string{"./sky.png", "pkg://levels/intro/music.ogg"},
		Bundles: []string{"../../shared/ui.bundle"},
		Labels:  map[string]string{"chapter": "1"},
	}))

	h, err := content.Load[*formats.Bundle](svc, "pkg://levels/intro/intro.bundle", nil)
	require.NoError(t, err)
	defer h.Release()
	flush(t, svc)

	require.Equal(t, resource.StatusCompleted, h.Status(), h.Resource().Err())
	b := h.Get()
	assert.Equal(t, "intro", b.Manifest().Name)
	assert.Equal(t, "1", b.Manifest().Labels["chapter"])

	blobs := b.Blobs()
	require.Len(t, blobs, 2)
	assert.Equal(t, "pkg://levels/intro/sky.png", blobs[0].Address().String())
	for _, blob := range blobs {
		assert.Equal(t, resource.StatusCompleted, blob.Status())
	}

	nested := b.Bundles()
	require.Len(t, nested, 1)
	assert.Equal(t, resource.StatusCompleted, nested[0].Status())
	require.Len(t, nested[0].Blobs(), 1)
	assert.Equal(t, []byte("font"), nested[0].Blobs()[0].Bytes())
}

func TestBundle_PinsMembers(t *testing.T) {
	svc, store := setup(t)
	put(t, store, "a.txt", []byte("a"))
	put(t, store, "set.bundle", codec.MustMarshal(nil, formats.Manifest{
		Name:  "set",
		Blobs: []string{"pkg://a.txt"},
	}))

	h, err := content.Load[*formats.Bundle](svc, "pkg://set.bundle", nil)
	require.NoError(t, err)
	flush(t, svc)
	require.Equal(t, resource.StatusCompleted, h.Status())

	n, err := content.Prune[*formats.Blob](svc, false)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.Release()
	n, err = content.Prune[*formats.Bundle](svc, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = content.Prune[*formats.Blob](svc, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBundle_MissingMemberFails(t *testing.T) {
	svc, store := setup(t)
	put(t, store, "set.bundle", codec.MustMarshal(nil, formats.Manifest{
		Name:  "set",
		Blobs: []string{"pkg://gone.txt"},
	}))

	h, err := content.Load[*formats.Bundle](svc, "pkg://set.bundle", nil)
	require.NoError(t, err)
	flush(t, svc)

	assert.Equal(t, resource.StatusFailed, h.Status())
	assert.ErrorIs(t, h.Resource().Err(), content.ErrDependencyFailed)

	h.Release()
	n, err := content.Prune[*formats.Bundle](svc, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Discarding the failed bundle released its member.
	n, err = content.Prune[*formats.Blob](svc, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBundle_InvalidManifest(t *testing.T) {
	svc, store := setup(t)
	put(t, store, "broken.bundle", []byte("{"))
	put(t, store, "nameless.bundle", []byte(`{"blobs":["pkg://a.txt"]}`))

	broken, err := content.Load[*formats.Bundle](svc, "pkg://broken.bundle", nil)
	require.NoError(t, err)
	defer broken.Release()
	nameless, err := content.Load[*formats.Bundle](svc, "pkg://nameless.bundle", nil)
	require.NoError(t, err)
	defer nameless.Release()
	flush(t, svc)

	var decErr *content.DecodeError
	assert.ErrorAs(t, broken.Resource().Err(), &decErr)
	assert.ErrorIs(t, nameless.Resource().Err(), formats.ErrInvalidManifest)
}

func TestRegister_StdlibCodec(t *testing.T) {
	svc := content.New(content.WithWorkers(1))
	defer svc.Close()

	store := blobstore.NewMemoryStore()
	require.NoError(t, svc.Mount("pkg", store))
	require.NoError(t, formats.Register(svc, func(o *formats.Options) {
		o.Codec = codec.JSON{}
	}))
	put(t, store, "x.bundle", []byte(`{"name":"x"}`))

	h, err := content.Load[*formats.Bundle](svc, "pkg://x.bundle", nil)
	require.NoError(t, err)
	defer h.Release()
	flush(t, svc)
	assert.Equal(t, "x", h.Get().Manifest().Name)

	assert.ErrorIs(t, formats.Register(svc), content.ErrAlreadyRegistered)
}
