package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/metro/pkg/core"
)

// DefaultExtrasKey is the reserved key of the metadata block inside an
// export file's extras container.
const DefaultExtrasKey = "METRO"

// Extras embeds the sidecar document under a single reserved key of a
// free-form extras container.
type Extras struct {
	key string
}

// NewExtras creates an extras codec. An empty key means DefaultExtrasKey.
func NewExtras(key string) *Extras {
	if key == "" {
		key = DefaultExtrasKey
	}
	return &Extras{key: key}
}

// Key returns the reserved container key.
func (c *Extras) Key() string {
	return c.key
}

// Export returns a copy of container with the encoded record stored under
// the reserved key. Every other key is kept. A nil container yields a new one.
func (c *Extras) Export(r core.Record, container map[string]any) map[string]any {
	out := make(map[string]any, len(container)+1)
	for k, v := range container {
		out[k] = v
	}
	out[c.key] = map[string]any(Encode(r))
	return out
}

// Import decodes the block stored under the reserved key. A missing key
// fails with core.ErrMetadataAbsent. Hosts that can only store strings may
// keep the block as a JSON string; that form is accepted too.
func (c *Extras) Import(container map[string]any) (core.Record, []core.UnrecognizedField, error) {
	block, ok := container[c.key]
	if !ok || block == nil {
		return core.Record{}, nil, &core.Error{Kind: core.ErrMetadataAbsent, Key: c.key}
	}

	switch t := block.(type) {
	case Document:
		return Decode(t)
	case map[string]any:
		return Decode(t)
	case string:
		var payload map[string]any
		dec := json.NewDecoder(strings.NewReader(t))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			return core.Record{}, nil, core.Malformed(c.key, err)
		}
		return Decode(payload)
	default:
		return core.Record{}, nil, core.Malformed(c.key, fmt.Errorf("expected object, got %T", block))
	}
}

// Strip returns a copy of container without the reserved key.
func (c *Extras) Strip(container map[string]any) map[string]any {
	out := make(map[string]any, len(container))
	for k, v := range container {
		if k != c.key {
			out[k] = v
		}
	}
	return out
}
