package codec

import (
	"bytes"

	"github.com/aretw0/metro/pkg/core"
)

// Sidecar encodes records as standalone documents written next to the asset.
type Sidecar struct {
	serializer Serializer
}

// NewSidecar creates a sidecar codec. A nil serializer means JSON.
func NewSidecar(s Serializer) *Sidecar {
	if s == nil {
		s = NewJSONSerializer()
	}
	return &Sidecar{serializer: s}
}

// Export serializes r.
func (c *Sidecar) Export(r core.Record) ([]byte, error) {
	return c.serializer.Serialize(Encode(r))
}

// Import parses a sidecar payload. Unparsable input fails with
// core.ErrMalformedDocument.
func (c *Sidecar) Import(data []byte) (core.Record, []core.UnrecognizedField, error) {
	raw, err := c.serializer.Parse(bytes.NewReader(data))
	if err != nil {
		return core.Record{}, nil, core.Malformed("", err)
	}
	return Decode(raw)
}
