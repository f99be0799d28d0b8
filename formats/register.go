package formats

import (
	"github.com/hupe1980/content"
	"github.com/hupe1980/content/cache"
	"github.com/hupe1980/content/codec"
)

// Options configures Register.
type Options struct {
	// Codec parses bundle manifests. Defaults to codec.Default.
	Codec codec.Codec

	BlobCache   []cache.Option
	BundleCache []cache.Option
}

// Register registers Blob for every extension and Bundle for
// BundleExtension on s.
func Register(s *content.Service, optFns ...func(*Options)) error {
	opts := Options{Codec: codec.Default}
	for _, fn := range optFns {
		fn(&opts)
	}

	if _, err := content.Register(s, NewBlob, opts.BlobCache...); err != nil {
		return err
	}
	if _, err := content.Register(s, NewBundle, opts.BundleCache...); err != nil {
		return err
	}
	if err := content.RegisterDecoder(s, DecodeBlob, content.AnyExtension); err != nil {
		return err
	}
	return content.RegisterDecoder(s, BundleDecoder(opts.Codec), BundleExtension)
}
