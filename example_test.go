package content_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/content"
	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/blobstore"
	"github.com/hupe1980/content/codec"
	"github.com/hupe1980/content/formats"
	"github.com/hupe1980/content/resource"
)

type settings struct {
	resource.Base
	Title string `json:"title"`
	Lives int    `json:"lives"`
}

func newSettings(addr address.Address) *settings {
	s := &settings{}
	s.Init(addr, resource.Managed)
	return s
}

func (s *settings) OnCreate(resource.Host) error { return nil }
func (s *settings) OnDelete(resource.Host)       {}

func decodeSettings(req *content.DecodeRequest, s *settings) error {
	return codec.Default.Unmarshal(req.Data, s)
}

func flushOrDie(svc *content.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Flush(ctx); err != nil {
		log.Fatal(err)
	}
}

// Example_load demonstrates loading a raw blob from an in-memory mount.
func Example_load() {
	svc := content.New(content.WithWorkers(2), content.WithLogger(content.NoopLogger()))
	defer svc.Close()

	store := blobstore.NewMemoryStore()
	if err := store.Put(context.Background(), "sfx/jump.wav", []byte("RIFF....WAVE")); err != nil {
		log.Fatal(err)
	}
	if err := svc.Mount("pkg", store); err != nil {
		log.Fatal(err)
	}
	if err := formats.Register(svc); err != nil {
		log.Fatal(err)
	}

	h, err := content.Load[*formats.Blob](svc, "pkg://sfx/jump.wav", nil)
	if err != nil {
		log.Fatal(err)
	}
	defer h.Release()

	flushOrDie(svc)

	fmt.Println(h.Status(), len(h.Get().Bytes()))
	// Output: completed 12
}

// Example_bundle demonstrates a bundle whose members load as dependencies.
func Example_bundle() {
	svc := content.New(content.WithLogger(content.NoopLogger()))
	defer svc.Close()

	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	_ = store.Put(ctx, "levels/intro/sky.png", []byte("sky"))
	_ = store.Put(ctx, "levels/intro/music.ogg", []byte("music"))
	_ = store.Put(ctx, "levels/intro/intro.bundle", codec.MustMarshal(nil, formats.Manifest{
		Name:  "intro",
		Blobs: []string{"./sky.png", "./music.ogg"},
	}))

	if err := svc.Mount("pkg", store); err != nil {
		log.Fatal(err)
	}
	if err := formats.Register(svc); err != nil {
		log.Fatal(err)
	}

	h, err := content.Load[*formats.Bundle](svc, "pkg://levels/intro/intro.bundle", nil)
	if err != nil {
		log.Fatal(err)
	}
	defer h.Release()

	flushOrDie(svc)

	b := h.Get()
	fmt.Println(b.Manifest().Name, h.Status())
	for _, blob := range b.Blobs() {
		fmt.Println(blob.Address().Path(), string(blob.Bytes()))
	}
	// Output:
	// intro completed
	// levels/intro/sky.png sky
	// levels/intro/music.ogg music
}

// Example_decoder demonstrates registering a custom asset type.
func Example_decoder() {
	svc := content.New(content.WithLogger(content.NoopLogger()))
	defer svc.Close()

	store := blobstore.NewMemoryStore()
	_ = store.Put(context.Background(), "config/game.json", []byte(`{"title":"Quest","lives":3}`))
	_ = svc.Mount("pkg", store)

	if _, err := content.Register(svc, newSettings); err != nil {
		log.Fatal(err)
	}
	if err := content.RegisterDecoder(svc, decodeSettings, "json"); err != nil {
		log.Fatal(err)
	}

	h, err := content.Load[*settings](svc, "config/game.json", nil)
	if err != nil {
		log.Fatal(err)
	}
	defer h.Release()

	flushOrDie(svc)

	fmt.Printf("%s has %d lives\n", h.Get().Title, h.Get().Lives)
	// Output: Quest has 3 lives
}
