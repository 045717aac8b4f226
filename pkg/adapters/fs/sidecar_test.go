package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/metro/pkg/adapters/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidecarPath(t *testing.T) {
	tests := []struct {
		asset string
		ext   string
		want  string
	}{
		{"models/scan.glb", "", "models/scan.metro.json"},
		{"models/scan.glb", "yaml", "models/scan.metro.yaml"},
		{"models/scan", ".json", "models/scan.metro.json"},
		{"models/scan.metro.json", ".yaml", "models/scan.metro.json"},
		{"archive.v2.blend", "", "archive.v2.metro.json"},
	}
	for _, tc := range tests {
		t.Run(tc.asset+tc.ext, func(t *testing.T) {
			assert.Equal(t, tc.want, fs.SidecarPath(tc.asset, tc.ext))
		})
	}
}

func TestIsSidecar(t *testing.T) {
	assert.True(t, fs.IsSidecar("a.metro.json"))
	assert.True(t, fs.IsSidecar("dir/A.METRO.YML"))
	assert.False(t, fs.IsSidecar("a.json"))
	assert.False(t, fs.IsSidecar("a.metro.glb"))
}

func TestSidecar_WriteFindRead(t *testing.T) {
	dir := t.TempDir()
	asset := filepath.Join(dir, "nested", "scan.glb")

	_, found := fs.FindSidecar(asset)
	assert.False(t, found)

	path := fs.SidecarPath(asset, ".yaml")
	require.NoError(t, fs.WriteSidecar(path, []byte("schema_version: 1\n")))

	got, found := fs.FindSidecar(asset)
	require.True(t, found)
	assert.Equal(t, path, got)

	data, err := fs.ReadSidecar(got)
	require.NoError(t, err)
	assert.Equal(t, "schema_version: 1\n", string(data))

	// JSON wins when both exist.
	jsonPath := fs.SidecarPath(asset, "")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0644))
	got, _ = fs.FindSidecar(asset)
	assert.Equal(t, jsonPath, got)
}

func TestReadSidecar_Missing(t *testing.T) {
	_, err := fs.ReadSidecar(filepath.Join(t.TempDir(), "nope.metro.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
