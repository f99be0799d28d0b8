package blobstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the algorithm used by CompressedStore.
type Compression uint8

const (
	// CompressionNone stores blobs as-is (still framed with a header).
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, good for hot data).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio, good for cold data).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ErrCorruptBlob is returned when a compressed blob cannot be decoded.
var ErrCorruptBlob = errors.New("blobstore: corrupt compressed blob")

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Header layout: [Compression uint8][UncompressedSize uint32][CompressedSize uint32].
// CompressedSize == 0 means the payload is stored uncompressed.
const headerSize = 9

// CompressedStore compresses blobs at rest in an inner Store.
// Blobs are decompressed fully on Open.
type CompressedStore struct {
	inner       Store
	compression Compression
}

// NewCompressedStore wraps inner. Put uses compression; Open accepts any
// algorithm recorded in the blob header.
func NewCompressedStore(inner Store, compression Compression) *CompressedStore {
	return &CompressedStore{inner: inner, compression: compression}
}

// Open reads and decompresses a blob.
func (s *CompressedStore) Open(ctx context.Context, name string) (Blob, error) {
	raw, err := ReadAll(ctx, s.inner, name)
	if err != nil {
		return nil, err
	}
	data, err := Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return NewBytesBlob(data), nil
}

// Put compresses and writes a blob.
func (s *CompressedStore) Put(ctx context.Context, name string, data []byte) error {
	framed, err := Compress(data, s.compression)
	if err != nil {
		return err
	}
	return s.inner.Put(ctx, name, framed)
}

// Delete removes a blob.
func (s *CompressedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List returns all blob names with the given prefix.
func (s *CompressedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Compress frames data with a header and compresses it with c.
// If compression doesn't help (ratio > 0.9), the payload is stored uncompressed.
func Compress(data []byte, c Compression) ([]byte, error) {
	var compressed []byte

	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0 means incompressible
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("blobstore: unknown compression %s", c)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, headerSize+len(data))
		result[0] = byte(c)
		binary.LittleEndian.PutUint32(result[1:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[5:], 0)
		copy(result[headerSize:], data)
		return result, nil
	}

	result := make([]byte, headerSize+len(compressed))
	result[0] = byte(c)
	binary.LittleEndian.PutUint32(result[1:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[5:], uint32(len(compressed)))
	copy(result[headerSize:], compressed)
	return result, nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, ErrCorruptBlob
	}

	c := Compression(data[0])
	uncompressedSize := binary.LittleEndian.Uint32(data[1:])
	compressedSize := binary.LittleEndian.Uint32(data[5:])
	payload := data[headerSize:]

	if compressedSize == 0 {
		if uint32(len(payload)) != uncompressedSize {
			return nil, ErrCorruptBlob
		}
		return payload, nil
	}
	if uint32(len(payload)) != compressedSize {
		return nil, ErrCorruptBlob
	}

	switch c {
	case CompressionLZ4:
		result := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, result)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
		}
		if uint32(n) != uncompressedSize {
			return nil, ErrCorruptBlob
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		decoded, err := dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, ErrCorruptBlob
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: unknown compression %s", ErrCorruptBlob, c)
	}
}
