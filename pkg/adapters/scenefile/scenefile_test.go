package scenefile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/metro/pkg/adapters/scenefile"
	"github.com/aretw0/metro/pkg/core"
	"github.com/aretw0/metro/pkg/extract"
	"github.com/aretw0/metro/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amphora = `
name: amphora
meshes:
  body: {primitive: cube, size: 2}
  lid:
    vertices: [[0,0,0], [1,0,0], [1,1,0], [0,1,0]]
    faces: [[0,1,2,3]]
materials:
  clay: {nodes: [principled_bsdf, {type: image_texture, image: clay.png}]}
  glaze: {nodes: [other]}
objects:
  - {name: Body, mesh: body, materials: [clay], location: [0, 0, 1]}
  - {name: Body.001, mesh: body, materials: [clay, glaze], location: [10, 0, 1], rotation: [0, 0, 90]}
  - {name: Lid, mesh: lid, visible: false, lod: 1}
metadata:
  title: Roman amphora
  accessLevel: public
`

func TestParse_BuildsScene(t *testing.T) {
	doc, err := scenefile.Parse([]byte(amphora))
	require.NoError(t, err)
	assert.Equal(t, "Roman amphora", doc.Metadata["title"])

	s, err := doc.Scene()
	require.NoError(t, err)
	assert.Equal(t, "amphora", s.Name())

	items := s.Instances()
	require.Len(t, items, 3)
	assert.Same(t, items[0].Mesh, items[1].Mesh, "objects naming one mesh share its data")
	assert.Same(t, items[0].Materials[0], items[1].Materials[0])
	assert.False(t, items[2].Visible)
	assert.Equal(t, 1, items[2].LOD)
	assert.Equal(t, scene.NodeImageTexture, items[0].Materials[0].Nodes[1].Type)
	assert.Equal(t, "clay.png", items[0].Materials[0].Nodes[1].Image)

	snap := extract.New(nil).Extract(s)
	assert.Equal(t, uint64(24), snap.TriangleCount)
	assert.Equal(t, uint64(16), snap.VertexCount)
	assert.Equal(t, uint64(2), snap.MaterialCount)
	assert.Equal(t, uint64(1), snap.LODLevels)
	assert.True(t, snap.TexturePresent)
	assert.True(t, snap.PBRSupported)
	assert.InDeltaSlice(t, []float64{-1, -1, 0}, snap.BBoxMin[:], 1e-9)
	assert.InDeltaSlice(t, []float64{11, 1, 2}, snap.BBoxMax[:], 1e-9)
}

func TestParse_JSON(t *testing.T) {
	doc, err := scenefile.Parse([]byte(`{"name": "j", "meshes": {"m": {"primitive": "plane"}}, "objects": [{"mesh": "m"}]}`))
	require.NoError(t, err)

	s, err := doc.Scene()
	require.NoError(t, err)
	require.Len(t, s.Instances(), 1)
	assert.Equal(t, "object.000", s.Instances()[0].Name)
	assert.True(t, s.Instances()[0].Visible)

	snap := extract.New(nil).Extract(s)
	assert.Equal(t, uint64(2), snap.TriangleCount)
	assert.Equal(t, core.Vec3{-1, -1, 0}, snap.BBoxMin)
}

func TestScene_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown mesh", `objects: [{mesh: nope}]`},
		{"unknown material", `{meshes: {m: {primitive: cube}}, objects: [{mesh: m, materials: [x]}]}`},
		{"bad primitive", `{meshes: {m: {primitive: torus}}}`},
		{"face out of range", `{meshes: {m: {vertices: [[0,0,0]], faces: [[0,1,2]]}}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := scenefile.Parse([]byte(tc.src))
			require.NoError(t, err)
			_, err = doc.Scene()
			assert.Error(t, err)
		})
	}

	_, err := scenefile.Parse([]byte("objects: {"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("objects: []\n"), 0644))

	doc, err := scenefile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Name)

	_, err = scenefile.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCube(t *testing.T) {
	snap := extract.New(nil).Extract(&scene.Static{Items: []scene.Instance{{
		Visible: true,
		Mesh:    scenefile.Cube("c", 1),
	}}})

	assert.Equal(t, uint64(8), snap.VertexCount)
	assert.Equal(t, uint64(12), snap.TriangleCount)
	assert.Equal(t, core.Vec3{-0.5, -0.5, -0.5}, snap.BBoxMin)
	assert.Equal(t, core.Vec3{0.5, 0.5, 0.5}, snap.BBoxMax)
}
