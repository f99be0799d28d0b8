package codec

import (
	"bytes"
	"encoding/json"
)

// JSON encodes with encoding/json. Slower than GoJSON but byte-compatible
// with it; useful to rule out the faster library when chasing a bug.
type JSON struct {
	Strict bool
}

func (c JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (c JSON) Unmarshal(data []byte, v any) error {
	if !c.Strict {
		return json.Unmarshal(data, v)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (c JSON) Name() string { return name("json", c.Strict) }
