package formats

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/hupe1980/content"
	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/codec"
	"github.com/hupe1980/content/resource"
)

// BundleExtension is the file extension of bundle manifests.
const BundleExtension = "bundle"

// ErrInvalidManifest is returned for a manifest without a name.
var ErrInvalidManifest = errors.New("formats: invalid bundle manifest")

// Manifest is the on-disk form of a bundle.
//
// Entries without a scheme that start with "./" or "../" are resolved
// against the manifest's directory and inherit its scheme.
type Manifest struct {
	Name    string            `json:"name"`
	Blobs   []string          `json:"blobs,omitempty"`
	Bundles []string          `json:"bundles,omitempty"`
	Labels  map[string]string `json:"labels,omitempty"`
}

// Bundle is an asset that groups other assets. It holds a handle on each
// member from decode until it is discarded, so members stay cached while the
// bundle does.
type Bundle struct {
	resource.Base

	manifest Manifest
	size     int

	mu      sync.Mutex
	blobs   []*resource.Handle[*Blob]
	bundles []*resource.Handle[*Bundle]
}

// NewBundle returns an Idle bundle for addr.
func NewBundle(addr address.Address) *Bundle {
	b := &Bundle{}
	b.Init(addr, resource.Managed)
	return b
}

// Manifest returns the decoded manifest.
func (b *Bundle) Manifest() Manifest { return b.manifest }

// Blobs returns the member blobs in manifest order.
func (b *Bundle) Blobs() []*Blob {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*Blob, len(b.blobs))
	for i, h := range b.blobs {
		out[i] = h.Get()
	}
	return out
}

// Bundles returns the nested bundles in manifest order.
func (b *Bundle) Bundles() []*Bundle {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*Bundle, len(b.bundles))
	for i, h := range b.bundles {
		out[i] = h.Get()
	}
	return out
}

// OnCreate implements resource.Asset. Members are accounted in their own
// caches; the bundle only charges its manifest.
func (b *Bundle) OnCreate(resource.Host) error {
	b.SetMemory(int64(b.size))
	return nil
}

// OnDelete implements resource.Asset.
func (b *Bundle) OnDelete(resource.Host) {}

// Discard implements resource.Discarder. It releases the members.
func (b *Bundle) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, h := range b.blobs {
		h.Release()
	}
	for _, h := range b.bundles {
		h.Release()
	}
	b.blobs, b.bundles = nil, nil
}

func (b *Bundle) addBlob(h *resource.Handle[*Blob]) {
	b.mu.Lock()
	b.blobs = append(b.blobs, h)
	b.mu.Unlock()
}

func (b *Bundle) addBundle(h *resource.Handle[*Bundle]) {
	b.mu.Lock()
	b.bundles = append(b.bundles, h)
	b.mu.Unlock()
}

// BundleDecoder returns a decoder that parses manifests with c and loads
// every member through the request's scope. A nil codec means
// codec.Default.
func BundleDecoder(c codec.Codec) content.DecoderFunc[*Bundle] {
	if c == nil {
		c = codec.Default
	}

	return func(req *content.DecodeRequest, b *Bundle) error {
		var m Manifest
		if err := c.Unmarshal(req.Data, &m); err != nil {
			return fmt.Errorf("parse manifest: %w", err)
		}
		if m.Name == "" {
			return fmt.Errorf("%w: missing name", ErrInvalidManifest)
		}

		b.manifest = m
		b.size = len(req.Data)

		for _, raw := range m.Blobs {
			h, err := content.Load[*Blob](req.Service, resolve(req.Address, raw), req.Scope)
			if err != nil {
				return err
			}
			b.addBlob(h)
		}
		for _, raw := range m.Bundles {
			h, err := content.Load[*Bundle](req.Service, resolve(req.Address, raw), req.Scope)
			if err != nil {
				return err
			}
			b.addBundle(h)
		}
		return nil
	}
}

// resolve makes a relative manifest entry absolute.
func resolve(base address.Address, raw string) string {
	if !strings.HasPrefix(raw, "./") && !strings.HasPrefix(raw, "../") {
		return raw
	}

	dir := path.Dir(base.BasePath())
	joined := path.Join(dir, raw)
	if scheme := base.Scheme(); scheme != "" {
		return scheme + "://" + joined
	}
	return joined
}
