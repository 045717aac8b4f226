// Package metro is the Composition Root for the metro metadata engine.
//
// metro standardizes descriptive and technical metadata of 3D assets into a
// single canonical record with six categories (core, provenance, access,
// lineage, technical, project), so assets can be searched, audited and
// uploaded to a shared registry regardless of the tool that produced them.
//
// Features:
//
//   - **Technical extraction**: triangle and vertex counts, world-space
//     bounds, LOD levels and material facts derived from a scene graph.
//   - **Schema mapping**: arbitrary external metadata (glTF extras, registry
//     payloads) is mapped through an alias table; nothing unrecognized is dropped.
//   - **Lossless persistence**: flat properties store, sidecar document
//     (JSON or YAML) and export extras all round-trip the record exactly.
//   - **Pluggable property stores**: memory, JSON file, Redis hash or SQLite table.
//
// Usage:
//
//	svc, err := metro.New(ctx, "scan.glb",
//		metro.WithAdapter("file"),
//		metro.WithLogger(logger),
//	)
//
//	svc.ExtractFromScene(scene)
//	svc.ReadFromExternalSource(extras)
//	path, err := svc.WriteSidecar("scan.glb", ".json")
package metro
