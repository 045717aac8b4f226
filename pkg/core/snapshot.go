package core

// TechnicalSnapshot is the output of one extraction pass over a scene.
type TechnicalSnapshot struct {
	TriangleCount  uint64 `json:"triangle_count"`
	VertexCount    uint64 `json:"vertex_count"`
	LODLevels      uint64 `json:"lod_levels"`
	BBoxMin        Vec3   `json:"bbox_min"`
	BBoxMax        Vec3   `json:"bbox_max"`
	MaterialCount  uint64 `json:"material_count"`
	TexturePresent bool   `json:"texture_present"`
	PBRSupported   bool   `json:"pbr_supported"`

	// Warnings lists non-fatal findings such as an empty scene.
	Warnings []Warning `json:"warnings,omitempty"`
}

// Apply overwrites every extraction-owned field of r. Other fields are untouched.
func (s TechnicalSnapshot) Apply(r *Record) {
	r.Core.TriangleCount = Ptr(s.TriangleCount)
	r.Technical.VertexCount = Ptr(s.VertexCount)
	r.Technical.LODLevels = Ptr(s.LODLevels)
	r.Technical.BBoxMin = Ptr(s.BBoxMin)
	r.Technical.BBoxMax = Ptr(s.BBoxMax)
	r.Technical.MaterialCount = Ptr(s.MaterialCount)
	r.Technical.TexturePresent = Ptr(s.TexturePresent)
	r.Technical.PBRSupported = Ptr(s.PBRSupported)
}
