// Package scene defines the read-only view of a host scene graph that the
// technical metric extractor consumes.
//
// Hosts (a DCC tool, a glTF loader, a scene description file) implement Scene
// and expose only geometry and material facts. Mesh and Material values are
// compared by pointer identity: two instances sharing a *Mesh share mesh data,
// and two distinct *Material values are distinct materials even when their
// names match.
package scene

// Scene is a read-only view over the renderable content of a host scene.
type Scene interface {
	// Name identifies the scene for diagnostics.
	Name() string
	// Instances returns every mesh instance placed in the scene, visible or not.
	Instances() []Instance
}

// Instance is one placement of mesh data in the scene.
type Instance struct {
	Name      string
	Visible   bool
	LOD       int
	Transform Matrix
	Mesh      *Mesh
	Materials []*Material
}

// Mesh is a block of mesh data that may be shared by several instances.
type Mesh struct {
	Name     string
	Vertices []Vec3
	// Faces lists polygons as indices into Vertices. A face with k vertices
	// triangulates into k-2 triangles.
	Faces [][]int
}

// Material is a shading definition referenced by instances.
type Material struct {
	Name  string
	Nodes []Node
}

// NodeType classifies a node of a material shading graph.
type NodeType string

const (
	// NodeImageTexture samples an image.
	NodeImageTexture NodeType = "image_texture"
	// NodePrincipledBSDF is a metallic/roughness physically based shader.
	NodePrincipledBSDF NodeType = "principled_bsdf"
	// NodeOther is any node the extractor does not care about.
	NodeOther NodeType = "other"
)

// Node is a node in a material shading graph.
type Node struct {
	Type NodeType
	// Image names the sampled image for NodeImageTexture.
	Image string
}

// Static is a Scene backed by a fixed list of instances.
type Static struct {
	SceneName string
	Items     []Instance
}

// Name implements Scene.
func (s *Static) Name() string { return s.SceneName }

// Instances implements Scene.
func (s *Static) Instances() []Instance { return s.Items }

var _ Scene = (*Static)(nil)
