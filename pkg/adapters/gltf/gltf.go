// Package gltf reads and writes the JSON form of glTF 2.0 files (.gltf) as
// an extras container.
//
// Only the parts of the document that carry metadata are interpreted: the
// asset block and the extras of the default scene. Every other key is kept
// as decoded and written back unchanged.
package gltf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aretw0/metro/pkg/adapters/fs"
	"github.com/aretw0/metro/pkg/core"
)

// Document is a decoded .gltf file.
type Document struct {
	raw map[string]any
}

// New returns a minimal valid document with one empty scene.
func New(generator string) *Document {
	asset := map[string]any{"version": "2.0"}
	if generator != "" {
		asset["generator"] = generator
	}
	return &Document{raw: map[string]any{
		"asset":  asset,
		"scene":  json.Number("0"),
		"scenes": []any{map[string]any{}},
	}}
}

// Parse decodes a .gltf JSON document. Numbers are kept as json.Number.
func Parse(r io.Reader) (*Document, error) {
	var raw map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, core.Malformed("", fmt.Errorf("invalid gltf: %w", err))
	}
	if raw == nil {
		return nil, core.Malformed("", fmt.Errorf("invalid gltf: document is null"))
	}
	if _, ok := raw["asset"].(map[string]any); !ok {
		return nil, core.Malformed("asset", fmt.Errorf("gltf documents require an asset object"))
	}
	return &Document{raw: raw}, nil
}

// Load reads the .gltf file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Bytes encodes the document as indented JSON.
func (d *Document) Bytes() ([]byte, error) {
	out, err := json.MarshalIndent(d.raw, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// Save writes the document to path atomically.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return fmt.Errorf("failed to encode gltf: %w", err)
	}
	return fs.WriteFileAtomic(path, data, 0644)
}

// Asset returns a copy of the asset block.
func (d *Document) Asset() map[string]any {
	asset, _ := d.raw["asset"].(map[string]any)
	out := make(map[string]any, len(asset))
	for k, v := range asset {
		out[k] = v
	}
	return out
}

// SceneIndex returns the index of the default scene: the "scene" property,
// or 0 when it is absent. It returns -1 when the document has no scenes.
func (d *Document) SceneIndex() (int, error) {
	scenes, _ := d.raw["scenes"].([]any)
	if len(scenes) == 0 {
		return -1, nil
	}
	idx := 0
	if v, ok := d.raw["scene"]; ok {
		n, err := strconv.Atoi(fmt.Sprint(v))
		if err != nil {
			return -1, core.Malformed("scene", fmt.Errorf("scene index %v is not an integer", v))
		}
		idx = n
	}
	if idx < 0 || idx >= len(scenes) {
		return -1, core.Malformed("scene", fmt.Errorf("scene index %d out of range (%d scenes)", idx, len(scenes)))
	}
	return idx, nil
}

// SceneExtras returns a copy of the extras of the default scene. A document
// without scenes or extras yields an empty map.
func (d *Document) SceneExtras() (map[string]any, error) {
	scn, err := d.defaultScene(false)
	if err != nil || scn == nil {
		return map[string]any{}, err
	}
	extras, ok := scn["extras"]
	if !ok || extras == nil {
		return map[string]any{}, nil
	}
	m, ok := extras.(map[string]any)
	if !ok {
		return nil, core.Malformed("extras", fmt.Errorf("scene extras must be an object, got %T", extras))
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// SetSceneExtras replaces the extras of the default scene, creating a scene
// when the document has none. An empty map removes the extras key.
func (d *Document) SetSceneExtras(extras map[string]any) error {
	scn, err := d.defaultScene(true)
	if err != nil {
		return err
	}
	if len(extras) == 0 {
		delete(scn, "extras")
		return nil
	}
	scn["extras"] = extras
	return nil
}

// ExternalMetadata gathers the metadata a glTF file carries outside the
// reserved block: asset generator and copyright, overlaid by scene extras.
func (d *Document) ExternalMetadata() (map[string]any, error) {
	extras, err := d.SceneExtras()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(extras)+2)
	asset := d.Asset()
	for _, k := range []string{"generator", "copyright"} {
		if v, ok := asset[k]; ok {
			out[k] = v
		}
	}
	for k, v := range extras {
		out[k] = v
	}
	return out, nil
}

func (d *Document) defaultScene(create bool) (map[string]any, error) {
	idx, err := d.SceneIndex()
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		if !create {
			return nil, nil
		}
		scn := map[string]any{}
		d.raw["scenes"] = []any{scn}
		d.raw["scene"] = json.Number("0")
		return scn, nil
	}
	scenes := d.raw["scenes"].([]any)
	scn, ok := scenes[idx].(map[string]any)
	if !ok {
		return nil, core.Malformed("scenes", fmt.Errorf("scene %d is not an object", idx))
	}
	return scn, nil
}
