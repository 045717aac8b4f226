package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/metro/pkg/adapters/gltf"
	"github.com/aretw0/metro/pkg/adapters/scenefile"
	"github.com/aretw0/metro/pkg/codec"
	"github.com/aretw0/metro/pkg/scene"
)

func loadScene(path string) (*scenefile.Document, scene.Scene, error) {
	doc, err := scenefile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	sc, err := doc.Scene()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, sc, nil
}

// readExternal loads a metadata mapping: the scene extras and asset block of
// a .gltf file, or a JSON or YAML object.
func readExternal(path string) (map[string]any, error) {
	if isGLTF(path) {
		doc, err := gltf.Load(path)
		if err != nil {
			return nil, err
		}
		return doc.ExternalMetadata()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := codec.SerializerFor(path).Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

func isGLTF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gltf")
}

// gltfTarget picks the glTF file holding the extras of asset.
func gltfTarget(asset, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if isGLTF(asset) {
		return asset, nil
	}
	return "", fmt.Errorf("%s is not a .gltf file; pass --gltf", asset)
}

func sidecarExt(format string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", "json":
		return ".json", nil
	case "yaml", "yml":
		return ".yaml", nil
	}
	return "", fmt.Errorf("unknown sidecar format %q (json, yaml)", format)
}
