// Package codec centralizes encoding of structured content such as bundle
// manifests.
//
// Decoders that parse structured text take a Codec instead of calling a JSON
// package directly, so the encoding library can be swapped per service.
package codec

import (
	"fmt"
	"strings"
)

// Codec turns structured content into Go values and back.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// StrictSuffix selects the strict variant of a codec in ByName.
const StrictSuffix = "-strict"

// ByName returns a built-in codec by its configuration name: "json" or
// "go-json", optionally followed by StrictSuffix to reject unknown fields.
func ByName(name string) (Codec, bool) {
	base, strict := strings.CutSuffix(name, StrictSuffix)
	switch base {
	case "json":
		return JSON{Strict: strict}, true
	case "go-json":
		return GoJSON{Strict: strict}, true
	}
	return nil, false
}

// MustMarshal encodes v with c, or Default when c is nil, and panics on
// error. Meant for fixtures.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s: marshal: %w", c.Name(), err))
	}
	return b
}

func name(base string, strict bool) string {
	if strict {
		return base + StrictSuffix
	}
	return base
}
