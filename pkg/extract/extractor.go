// Package extract derives technical metrics from a scene.
package extract

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/metro/pkg/core"
	"github.com/aretw0/metro/pkg/scene"
)

// Extractor computes a core.TechnicalSnapshot from a scene.Scene.
// Extraction is a pure function of the scene state.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor. A nil logger discards output.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{logger: logger}
}

// meshStats caches per-mesh-data results so shared meshes are walked once.
type meshStats struct {
	triangles  uint64
	vertices   uint64
	lo, hi     scene.Vec3
	bounded    bool
	degenerate int
}

// Extract walks every visible instance of s.
//
//   - triangles and vertices are counted once per visible instance, so a mesh
//     placed three times counts three times;
//   - the bounding box is the world-space box of every instance's local
//     bounding corners;
//   - materials are distinct by identity;
//   - an empty scene yields zero counts and a box collapsed at the origin.
func (e *Extractor) Extract(s scene.Scene) core.TechnicalSnapshot {
	var snap core.TechnicalSnapshot

	stats := make(map[*scene.Mesh]*meshStats)
	materials := make(map[*scene.Material]struct{})
	var materialOrder []*scene.Material
	lods := make(map[int]struct{})

	var lo, hi scene.Vec3
	bounded := false
	visible := 0

	for _, inst := range s.Instances() {
		if !inst.Visible || inst.Mesh == nil {
			continue
		}
		visible++

		ms, ok := stats[inst.Mesh]
		if !ok {
			ms = measure(inst.Mesh)
			stats[inst.Mesh] = ms
			if ms.degenerate > 0 {
				snap.Warnings = append(snap.Warnings, core.Warning{
					Field:   "core.triangle_count",
					Message: fmt.Sprintf("mesh %q has %d faces with fewer than three vertices", inst.Mesh.Name, ms.degenerate),
				})
			}
		}

		snap.TriangleCount += ms.triangles
		snap.VertexCount += ms.vertices
		lods[inst.LOD] = struct{}{}

		for _, m := range inst.Materials {
			if m == nil {
				continue
			}
			if _, seen := materials[m]; !seen {
				materials[m] = struct{}{}
				materialOrder = append(materialOrder, m)
			}
		}

		if !ms.bounded {
			continue
		}
		xf := inst.Transform
		if xf.IsZero() {
			xf = scene.Identity()
		}
		for _, corner := range scene.Corners(ms.lo, ms.hi) {
			p := xf.Apply(corner)
			if !bounded {
				lo, hi, bounded = p, p, true
				continue
			}
			for i := 0; i < 3; i++ {
				lo[i] = min(lo[i], p[i])
				hi[i] = max(hi[i], p[i])
			}
		}
	}

	snap.MaterialCount = uint64(len(materials))
	snap.LODLevels = uint64(len(lods))
	snap.BBoxMin = core.Vec3(lo)
	snap.BBoxMax = core.Vec3(hi)

	for _, m := range materialOrder {
		for _, n := range m.Nodes {
			switch n.Type {
			case scene.NodeImageTexture:
				snap.TexturePresent = true
			case scene.NodePrincipledBSDF:
				snap.PBRSupported = true
			}
		}
	}

	if visible == 0 {
		snap.Warnings = append(snap.Warnings, core.Warning{
			Field:   "technical",
			Message: fmt.Sprintf("scene %q has no visible mesh instances", s.Name()),
		})
	}

	e.logger.Debug("extracted technical metrics",
		"scene", s.Name(),
		"instances", visible,
		"meshes", len(stats),
		"triangles", snap.TriangleCount,
		"vertices", snap.VertexCount,
		"materials", snap.MaterialCount,
	)

	return snap
}

func measure(m *scene.Mesh) *meshStats {
	ms := &meshStats{}

	for _, face := range m.Faces {
		if len(face) < 3 {
			ms.degenerate++
			continue
		}
		ms.triangles += uint64(len(face) - 2)
	}

	// Split vertices (flat shading, UV seams) count separately, as stored.
	ms.vertices = uint64(len(m.Vertices))

	ms.lo, ms.hi, ms.bounded = scene.Bounds(m.Vertices)
	return ms
}
