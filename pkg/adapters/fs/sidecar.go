// Package fs stores sidecar documents and other metadata files on the local filesystem.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SidecarInfix sits between the asset stem and the document extension:
// "scan.glb" -> "scan.metro.json".
const SidecarInfix = ".metro"

// PropsFileSuffix ends the name of a file property store: "scan.metro.props.json".
const PropsFileSuffix = ".metro.props.json"

// SidecarExtensions lists the sidecar document extensions in lookup order.
var SidecarExtensions = []string{".json", ".yaml", ".yml"}

// SidecarPath derives the sidecar path of an asset. ext selects the document
// format and defaults to ".json". A path that already names a sidecar is
// returned unchanged.
func SidecarPath(asset, ext string) string {
	if IsSidecar(asset) {
		return asset
	}
	if ext == "" {
		ext = ".json"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	stem := strings.TrimSuffix(asset, filepath.Ext(asset))
	return stem + SidecarInfix + ext
}

// IsSidecar reports whether path names a sidecar document.
func IsSidecar(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SidecarExtensions {
		if ext == e {
			return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(path, filepath.Ext(path))), SidecarInfix)
		}
	}
	return false
}

// FindSidecar returns the first existing sidecar of asset, trying each of
// SidecarExtensions in order.
func FindSidecar(asset string) (string, bool) {
	if IsSidecar(asset) {
		info, err := os.Stat(asset)
		return asset, err == nil && !info.IsDir()
	}
	for _, ext := range SidecarExtensions {
		path := SidecarPath(asset, ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// ReadSidecar reads a sidecar document.
func ReadSidecar(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sidecar %s: %w", path, err)
	}
	return data, nil
}

// WriteSidecar writes a sidecar document atomically, creating parent
// directories as needed.
func WriteSidecar(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return WriteFileAtomic(path, data, 0644)
}
