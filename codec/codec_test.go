package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json", "json-strict", "go-json-strict"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	for _, name := range []string{"msgpack", "-strict", "json-lenient"} {
		_, ok := ByName(name)
		assert.False(t, ok, name)
	}
}

func TestStrict(t *testing.T) {
	data := []byte(`{"name":"intro","version":2,"colour":"red"}`)

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		var m benchManifest
		assert.NoError(t, c.Unmarshal(data, &m), c.Name())
		assert.Equal(t, "intro", m.Name)
	}

	for _, c := range []Codec{JSON{Strict: true}, GoJSON{Strict: true}} {
		var m benchManifest
		assert.Error(t, c.Unmarshal(data, &m), c.Name())
	}
}

func TestCodecsAgree(t *testing.T) {
	want := benchManifestValue()

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data := MustMarshal(c, want)

			var got benchManifest
			require.NoError(t, GoJSON{}.Unmarshal(data, &got))
			assert.Equal(t, want, got)

			got = benchManifest{}
			require.NoError(t, JSON{}.Unmarshal(data, &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestMustMarshal_Panics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}

func TestMustMarshal_DefaultCodec(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(MustMarshal(nil, map[string]int{"a": 1})))
}
