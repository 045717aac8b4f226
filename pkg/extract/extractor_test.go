package extract_test

import (
	"math"
	"testing"

	"github.com/aretw0/metro/pkg/core"
	"github.com/aretw0/metro/pkg/extract"
	"github.com/aretw0/metro/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitCube returns a cube spanning [0,1] on every axis: 8 vertices, 6 quads.
func unitCube() *scene.Mesh {
	return &scene.Mesh{
		Name: "Cube",
		Vertices: []scene.Vec3{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		},
		Faces: [][]int{
			{0, 1, 2, 3},
			{4, 5, 6, 7},
			{0, 1, 5, 4},
			{1, 2, 6, 5},
			{2, 3, 7, 6},
			{3, 0, 4, 7},
		},
	}
}

func principled(name string) *scene.Material {
	return &scene.Material{Name: name, Nodes: []scene.Node{{Type: scene.NodePrincipledBSDF}}}
}

func TestExtract_UnitCube(t *testing.T) {
	mat := principled("Steel")
	s := &scene.Static{SceneName: "cube", Items: []scene.Instance{{
		Name:      "Cube",
		Visible:   true,
		Transform: scene.Identity(),
		Mesh:      unitCube(),
		Materials: []*scene.Material{mat},
	}}}

	snap := extract.New(nil).Extract(s)

	assert.Equal(t, uint64(12), snap.TriangleCount)
	assert.Equal(t, uint64(8), snap.VertexCount)
	assert.Equal(t, uint64(1), snap.MaterialCount)
	assert.Equal(t, uint64(1), snap.LODLevels)
	assert.Equal(t, core.Vec3{0, 0, 0}, snap.BBoxMin)
	assert.Equal(t, core.Vec3{1, 1, 1}, snap.BBoxMax)
	assert.True(t, snap.PBRSupported)
	assert.False(t, snap.TexturePresent)
	assert.Empty(t, snap.Warnings)
}

func TestExtract_EmptyScene(t *testing.T) {
	snap := extract.New(nil).Extract(&scene.Static{SceneName: "empty"})

	assert.Zero(t, snap.TriangleCount)
	assert.Zero(t, snap.VertexCount)
	assert.Zero(t, snap.MaterialCount)
	assert.Zero(t, snap.LODLevels)
	assert.False(t, snap.TexturePresent)
	assert.False(t, snap.PBRSupported)
	assert.Equal(t, core.Vec3{}, snap.BBoxMin)
	assert.Equal(t, snap.BBoxMin, snap.BBoxMax)
	require.Len(t, snap.Warnings, 1)
	assert.Equal(t, "technical", snap.Warnings[0].Field)
}

func TestExtract_InstancesCountedPerPlacement(t *testing.T) {
	mesh := unitCube()
	s := &scene.Static{Items: []scene.Instance{
		{Visible: true, Mesh: mesh, Transform: scene.Identity()},
		{Visible: true, Mesh: mesh, Transform: scene.Translation(scene.Vec3{5, 0, 0})},
		{Visible: false, Mesh: mesh, Transform: scene.Translation(scene.Vec3{-50, 0, 0})},
	}}

	snap := extract.New(nil).Extract(s)

	assert.Equal(t, uint64(24), snap.TriangleCount)
	assert.Equal(t, uint64(16), snap.VertexCount)
	assert.Equal(t, core.Vec3{0, 0, 0}, snap.BBoxMin, "hidden instances must not widen the box")
	assert.Equal(t, core.Vec3{6, 1, 1}, snap.BBoxMax)
}

func TestExtract_WorldSpaceBounds(t *testing.T) {
	s := &scene.Static{Items: []scene.Instance{{
		Visible:   true,
		Mesh:      unitCube(),
		Transform: scene.Compose(scene.Vec3{1, 2, 3}, scene.Vec3{0, 0, math.Pi / 2}, scene.Vec3{2, 2, 2}),
	}}}

	snap := extract.New(nil).Extract(s)

	// Rotating [0,2]x[0,2] by 90 degrees around Z maps x to [-2,0].
	assert.InDeltaSlice(t, []float64{-1, 2, 3}, snap.BBoxMin[:], 1e-9)
	assert.InDeltaSlice(t, []float64{1, 4, 5}, snap.BBoxMax[:], 1e-9)
}

func TestExtract_ZeroTransformIsIdentity(t *testing.T) {
	s := &scene.Static{Items: []scene.Instance{{Visible: true, Mesh: unitCube()}}}

	snap := extract.New(nil).Extract(s)
	assert.Equal(t, core.Vec3{1, 1, 1}, snap.BBoxMax)
}

func TestExtract_MaterialsByIdentity(t *testing.T) {
	a := &scene.Material{Name: "Paint"}
	b := &scene.Material{Name: "Paint", Nodes: []scene.Node{{Type: scene.NodeImageTexture, Image: "albedo.png"}}}
	hiddenOnly := principled("Hidden")

	s := &scene.Static{Items: []scene.Instance{
		{Visible: true, Mesh: unitCube(), Materials: []*scene.Material{a, b, nil}},
		{Visible: true, Mesh: unitCube(), Materials: []*scene.Material{a}},
		{Visible: false, Mesh: unitCube(), Materials: []*scene.Material{hiddenOnly}},
	}}

	snap := extract.New(nil).Extract(s)

	assert.Equal(t, uint64(2), snap.MaterialCount)
	assert.True(t, snap.TexturePresent)
	assert.False(t, snap.PBRSupported, "materials on hidden instances are not referenced")
}

func TestExtract_NGonsAndSplitVertices(t *testing.T) {
	mesh := &scene.Mesh{
		Name: "Fan",
		Vertices: []scene.Vec3{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0.5, 1.5, 0}, {0, 1, 0},
			{0, 0, 0}, // same position, still a vertex of its own
		},
		Faces: [][]int{
			{0, 1, 2, 3, 4}, // pentagon: 3 triangles
			{0, 1, 2},       // triangle: 1
			{0, 1},          // degenerate: 0
		},
	}
	s := &scene.Static{Items: []scene.Instance{{Visible: true, Mesh: mesh}}}

	snap := extract.New(nil).Extract(s)

	assert.Equal(t, uint64(4), snap.TriangleCount)
	assert.Equal(t, uint64(6), snap.VertexCount)
	require.Len(t, snap.Warnings, 1)
	assert.Equal(t, "core.triangle_count", snap.Warnings[0].Field)
}

// flatCube returns a [0,1] cube with 4 vertices per face, the layout of a
// flat-shaded export.
func flatCube() *scene.Mesh {
	corners := unitCube()
	m := &scene.Mesh{Name: "FlatCube"}
	for _, face := range corners.Faces {
		quad := make([]int, 0, len(face))
		for _, idx := range face {
			quad = append(quad, len(m.Vertices))
			m.Vertices = append(m.Vertices, corners.Vertices[idx])
		}
		m.Faces = append(m.Faces, quad)
	}
	return m
}

func TestExtract_FlatShadedCubeCountsSplitVertices(t *testing.T) {
	mesh := flatCube()
	require.Len(t, mesh.Vertices, 24)

	s := &scene.Static{Items: []scene.Instance{{Visible: true, Mesh: mesh}}}
	snap := extract.New(nil).Extract(s)

	assert.Equal(t, uint64(24), snap.VertexCount)
	assert.Equal(t, uint64(12), snap.TriangleCount)
	assert.Empty(t, snap.Warnings)
}

func TestExtract_LODLevels(t *testing.T) {
	s := &scene.Static{Items: []scene.Instance{
		{Visible: true, Mesh: unitCube(), LOD: 0},
		{Visible: true, Mesh: unitCube(), LOD: 1},
		{Visible: true, Mesh: unitCube(), LOD: 1},
		{Visible: true, Mesh: unitCube(), LOD: 2},
	}}

	snap := extract.New(nil).Extract(s)
	assert.Equal(t, uint64(3), snap.LODLevels)
}

func TestExtract_IsDeterministic(t *testing.T) {
	s := &scene.Static{Items: []scene.Instance{
		{Visible: true, Mesh: unitCube(), Materials: []*scene.Material{principled("A")}},
	}}

	e := extract.New(nil)
	assert.Equal(t, e.Extract(s), e.Extract(s))
}
