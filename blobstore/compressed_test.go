package blobstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressedStore(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			testStore(t, NewCompressedStore(NewMemoryStore(), c))
		})
	}
}

func TestCompressedStore_ShrinksAtRest(t *testing.T) {
	ctx := context.Background()
	payload := bytes.Repeat([]byte("content pipeline "), 1024)

	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			inner := NewMemoryStore()
			s := NewCompressedStore(inner, c)
			require.NoError(t, s.Put(ctx, "big.txt", payload))

			raw, err := ReadAll(ctx, inner, "big.txt")
			require.NoError(t, err)
			assert.Less(t, len(raw), len(payload))
			assert.Equal(t, byte(c), raw[0])

			got, err := ReadAll(ctx, s, "big.txt")
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestCompress_Incompressible(t *testing.T) {
	data := []byte{0x01, 0x7f, 0x33}
	framed, err := Compress(data, CompressionZSTD)
	require.NoError(t, err)
	assert.Len(t, framed, headerSize+len(data))

	got, err := Decompress(framed)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDecompress_Corrupt(t *testing.T) {
	_, err := Decompress([]byte{1, 2})
	assert.ErrorIs(t, err, ErrCorruptBlob)

	framed, err := Compress(bytes.Repeat([]byte("a"), 4096), CompressionLZ4)
	require.NoError(t, err)
	_, err = Decompress(framed[:len(framed)-1])
	assert.ErrorIs(t, err, ErrCorruptBlob)

	framed[0] = 0x7f
	_, err = Decompress(framed)
	assert.ErrorIs(t, err, ErrCorruptBlob)
}

func TestCompress_UnknownAlgorithm(t *testing.T) {
	_, err := Compress([]byte("x"), Compression(9))
	assert.Error(t, err)
}
