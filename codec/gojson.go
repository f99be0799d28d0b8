package codec

import (
	"bytes"

	gojson "github.com/goccy/go-json"
)

// GoJSON encodes with github.com/goccy/go-json. It is the Default.
type GoJSON struct {
	// Strict rejects objects with fields the target does not declare.
	Strict bool
}

func (c GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (c GoJSON) Unmarshal(data []byte, v any) error {
	if !c.Strict {
		return gojson.Unmarshal(data, v)
	}
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (c GoJSON) Name() string { return name("go-json", c.Strict) }

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}
