package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/metro/pkg/core"
	"gopkg.in/yaml.v3"
)

// Serializer defines how a Document is read from and written to a byte format.
type Serializer interface {
	// Parse reads from r and returns the decoded document. Numbers are
	// returned as json.Number regardless of the format.
	Parse(r io.Reader) (map[string]any, error)
	// Serialize converts the Document to bytes.
	Serialize(doc Document) ([]byte, error)
}

// DefaultSerializers returns the serializers keyed by file extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// SerializerFor picks a serializer from the extension of path, defaulting to JSON.
func SerializerFor(path string) Serializer {
	return SerializerForExt(filepath.Ext(path))
}

// SerializerForExt picks a serializer for an extension such as ".yaml".
// The leading dot is optional. Unknown extensions select JSON.
func SerializerForExt(ext string) Serializer {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if s, ok := DefaultSerializers()[ext]; ok {
		return s
	}
	return NewJSONSerializer()
}

// --- JSON Serializer ---

// JSONSerializer handles JSON documents. Numbers are decoded as json.Number
// to avoid precision loss.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Parse(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("invalid json: trailing data after document")
	}
	return payload, nil
}

func (s *JSONSerializer) Serialize(doc Document) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// --- YAML Serializer ---

// YAMLSerializer handles YAML documents.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Parse(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return recursiveNormalize(payload), nil
}

func (s *YAMLSerializer) Serialize(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// recursiveNormalize converts YAML-native numbers to json.Number so both
// formats hand the same value shapes to Decode.
func recursiveNormalize(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = core.NormalizeValue(v)
	}
	return out
}
