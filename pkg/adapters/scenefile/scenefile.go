// Package scenefile loads scene descriptions written in YAML or JSON and
// exposes them as a scene.Scene. It is the host adapter used by the CLI.
//
//	name: amphora
//	meshes:
//	  body: {primitive: cube, size: 2}
//	  lid:
//	    vertices: [[0,0,0], [1,0,0], [1,1,0], [0,1,0]]
//	    faces: [[0,1,2,3]]
//	materials:
//	  clay: {nodes: [principled_bsdf, {type: image_texture, image: clay.png}]}
//	objects:
//	  - {name: Body, mesh: body, materials: [clay], location: [0,0,1]}
//	  - {name: Lid, mesh: lid, visible: false}
//	metadata:
//	  title: Roman amphora
package scenefile

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/metro/pkg/scene"
	"gopkg.in/yaml.v3"
)

// Document is a parsed scene description.
type Document struct {
	Name      string                  `yaml:"name"`
	Meshes    map[string]MeshSpec     `yaml:"meshes"`
	Materials map[string]MaterialSpec `yaml:"materials"`
	Objects   []ObjectSpec            `yaml:"objects"`
	// Metadata carries free-form host properties, the equivalent of custom
	// properties or glTF extras on the scene.
	Metadata map[string]any `yaml:"metadata"`
}

// MeshSpec is either explicit geometry or a primitive.
type MeshSpec struct {
	Primitive string       `yaml:"primitive"`
	Size      float64      `yaml:"size"`
	Vertices  [][3]float64 `yaml:"vertices"`
	Faces     [][]int      `yaml:"faces"`
}

// MaterialSpec lists the shading graph nodes of a material.
type MaterialSpec struct {
	Nodes []NodeSpec `yaml:"nodes"`
}

// NodeSpec is written either as a bare type name or as {type, image}.
type NodeSpec struct {
	Type  string `yaml:"type"`
	Image string `yaml:"image"`
}

// UnmarshalYAML accepts the scalar shorthand.
func (n *NodeSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		n.Type = value.Value
		return nil
	}
	type plain NodeSpec
	return value.Decode((*plain)(n))
}

// ObjectSpec places a mesh in the scene. Rotation is in degrees.
type ObjectSpec struct {
	Name      string      `yaml:"name"`
	Mesh      string      `yaml:"mesh"`
	Visible   *bool       `yaml:"visible"`
	LOD       int         `yaml:"lod"`
	Location  [3]float64  `yaml:"location"`
	Rotation  [3]float64  `yaml:"rotation"`
	Scale     *[3]float64 `yaml:"scale"`
	Materials []string    `yaml:"materials"`
}

// Parse decodes a YAML or JSON scene description.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid scene description: %w", err)
	}
	return &doc, nil
}

// Load reads and parses the scene description at path. A description
// without a name is named after the file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = path
	}
	return doc, nil
}

// Scene builds the scene. Objects naming the same mesh share one *scene.Mesh
// and objects naming the same material share one *scene.Material.
func (d *Document) Scene() (scene.Scene, error) {
	meshes := make(map[string]*scene.Mesh, len(d.Meshes))
	for _, name := range sortedNames(d.Meshes) {
		m, err := buildMesh(name, d.Meshes[name])
		if err != nil {
			return nil, err
		}
		meshes[name] = m
	}

	materials := make(map[string]*scene.Material, len(d.Materials))
	for name, spec := range d.Materials {
		mat := &scene.Material{Name: name}
		for _, n := range spec.Nodes {
			mat.Nodes = append(mat.Nodes, scene.Node{Type: ParseNodeType(n.Type), Image: n.Image})
		}
		materials[name] = mat
	}

	s := &scene.Static{SceneName: d.Name}
	for i, obj := range d.Objects {
		inst := scene.Instance{
			Name:    obj.Name,
			Visible: obj.Visible == nil || *obj.Visible,
			LOD:     obj.LOD,
		}
		if inst.Name == "" {
			inst.Name = fmt.Sprintf("object.%03d", i)
		}
		if obj.Mesh != "" {
			m, ok := meshes[obj.Mesh]
			if !ok {
				return nil, fmt.Errorf("object %q: unknown mesh %q", inst.Name, obj.Mesh)
			}
			inst.Mesh = m
		}
		for _, name := range obj.Materials {
			mat, ok := materials[name]
			if !ok {
				return nil, fmt.Errorf("object %q: unknown material %q", inst.Name, name)
			}
			inst.Materials = append(inst.Materials, mat)
		}

		scale := scene.Vec3{1, 1, 1}
		if obj.Scale != nil {
			scale = scene.Vec3(*obj.Scale)
		}
		rotation := scene.Vec3{radians(obj.Rotation[0]), radians(obj.Rotation[1]), radians(obj.Rotation[2])}
		inst.Transform = scene.Compose(scene.Vec3(obj.Location), rotation, scale)

		s.Items = append(s.Items, inst)
	}
	return s, nil
}

func buildMesh(name string, spec MeshSpec) (*scene.Mesh, error) {
	switch strings.ToLower(spec.Primitive) {
	case "":
	case "cube":
		return Cube(name, spec.Size), nil
	case "plane":
		return Plane(name, spec.Size), nil
	default:
		return nil, fmt.Errorf("mesh %q: unknown primitive %q", name, spec.Primitive)
	}

	m := &scene.Mesh{Name: name, Faces: spec.Faces}
	for _, v := range spec.Vertices {
		m.Vertices = append(m.Vertices, scene.Vec3(v))
	}
	for fi, face := range m.Faces {
		for _, idx := range face {
			if idx < 0 || idx >= len(m.Vertices) {
				return nil, fmt.Errorf("mesh %q: face %d references vertex %d of %d", name, fi, idx, len(m.Vertices))
			}
		}
	}
	return m, nil
}

// Cube returns an axis-aligned cube of edge size centered at the origin:
// 8 vertices and 6 quads. A zero size means 2.
func Cube(name string, size float64) *scene.Mesh {
	if size == 0 {
		size = 2
	}
	h := size / 2
	return &scene.Mesh{
		Name: name,
		Vertices: []scene.Vec3{
			{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
			{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
		},
		Faces: [][]int{
			{0, 3, 2, 1},
			{4, 5, 6, 7},
			{0, 1, 5, 4},
			{1, 2, 6, 5},
			{2, 3, 7, 6},
			{3, 0, 4, 7},
		},
	}
}

// Plane returns a square of edge size in the XY plane. A zero size means 2.
func Plane(name string, size float64) *scene.Mesh {
	if size == 0 {
		size = 2
	}
	h := size / 2
	return &scene.Mesh{
		Name:     name,
		Vertices: []scene.Vec3{{-h, -h, 0}, {h, -h, 0}, {h, h, 0}, {-h, h, 0}},
		Faces:    [][]int{{0, 1, 2, 3}},
	}
}

// ParseNodeType maps host node names to scene node types.
func ParseNodeType(s string) scene.NodeType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image_texture", "tex_image", "shadernodeteximage", "texture":
		return scene.NodeImageTexture
	case "principled_bsdf", "bsdf_principled", "shadernodebsdfprincipled", "pbr":
		return scene.NodePrincipledBSDF
	default:
		return scene.NodeOther
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
