// Package schema maps arbitrary external metadata onto the canonical record.
package schema

import (
	"fmt"
	"strings"

	"github.com/aretw0/metro/pkg/core"
)

// Alias binds one external key spelling to a canonical field.
type Alias struct {
	Key      string
	Field    core.Field
	Priority int // 0 wins over 1
}

// AliasTable maps canonical fields to their ordered external spellings.
// Lookups are case-insensitive.
type AliasTable struct {
	byKey   map[string]Alias
	byField map[string][]string
}

// defaultAliases lists, per canonical path, the recognized spellings in
// priority order. Registry camelCase spellings rank ahead of snake_case ones.
// NewAliasTable puts the canonical path first and appends the bare field name
// when it is not listed.
var defaultAliases = map[string][]string{
	"core.name":           {"name", "asset_name", "title"},
	"core.description":    {},
	"core.format":         {"format", "asset_format"},
	"core.triangle_count": {"triCount", "tri_count", "triangleCount"},
	"core.tags":           {"tags", "keywords", "dcat:keyword"},
	"core.use_case":       {"useCase"},

	"provenance.generation_tool":  {"generationTool", "provenance_tool", "provenance.tool", "generatedWith", "generator", "author"},
	"provenance.source_data_refs": {"sourceDataRefs", "provenance_source_data", "provenance.sourceData", "sourceData"},

	"access.access_level":         {"accessLevel"},
	"access.license":              {"license", "copyright"},
	"access.attribution_required": {"attributionRequired"},

	"lineage.lineage_id":   {"lineageId"},
	"lineage.derived_from": {"derivedFrom", "derived_from_asset", "derivedFromAsset"},

	"technical.lod_levels":        {"lodLevels"},
	"technical.bbox_min":          {"bboxMin", "boundingBox.min"},
	"technical.bbox_max":          {"bboxMax", "boundingBox.max"},
	"technical.material_count":    {"materialCount", "materialProperties.materialCount"},
	"technical.texture_present":   {"texturePresent", "has_textures", "hasTextures", "materialProperties.hasTextures"},
	"technical.pbr_supported":     {"pbrSupported", "supports_pbr", "supportsPBR", "materialProperties.supportsPBR"},
	"technical.vertex_count":      {"vertexCount", "qualityMetrics.vertexCount"},
	"technical.scientific_domain": {"scientificDomain"},
	"technical.source_format":     {"sourceDataFormat", "source_data_format", "sourceFormat"},

	"project.phase":             {"projectPhase", "project_phase"},
	"project.theme":             {},
	"project.vr_ar_support":     {"vrArSupport", "supports_vr", "supportsVR", "visualizationCapabilities.supportsVR", "supports_ar", "supportsAR", "visualizationCapabilities.supportsAR"},
	"project.usage_constraints": {"usageConstraints"},
	"project.deployment_notes":  {"deploymentNotes"},
	"project.geo_restrictions":  {"geoRestrictions"},
}

// DefaultAliasTable returns the built-in table covering the canonical paths,
// bare field names, the registry API camelCase names and common glTF extras keys.
func DefaultAliasTable() *AliasTable {
	t, err := NewAliasTable(defaultAliases)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultAliasTableWith extends the built-in table. Extra spellings rank
// after the built-in spellings of the same field, bare name included.
func DefaultAliasTableWith(extra map[string][]string) (*AliasTable, error) {
	merged := make(map[string][]string, len(defaultAliases)+len(extra))
	for path, keys := range defaultAliases {
		merged[path] = append([]string(nil), keys...)
	}
	for path, keys := range extra {
		if f, ok := core.LookupField(path); ok {
			merged[path] = append(merged[path], f.Name)
		}
		merged[path] = append(merged[path], keys...)
	}
	return NewAliasTable(merged)
}

// NewAliasTable builds a table from canonical paths to extra spellings.
// Each field is always reachable by its canonical path ("core.name"), which
// ranks first, and by its bare name ("name"), which ranks after the listed
// spellings unless it is listed itself.
func NewAliasTable(extra map[string][]string) (*AliasTable, error) {
	t := &AliasTable{
		byKey:   make(map[string]Alias),
		byField: make(map[string][]string),
	}
	for _, f := range core.Fields() {
		spellings := append([]string{f.Path()}, extra[f.Path()]...)
		spellings = append(spellings, f.Name)
		for _, key := range spellings {
			if err := t.add(f, key); err != nil {
				return nil, err
			}
		}
	}
	for path := range extra {
		if _, ok := core.LookupField(path); !ok {
			return nil, fmt.Errorf("alias table: unknown field %q", path)
		}
	}
	return t, nil
}

func (t *AliasTable) add(f core.Field, key string) error {
	norm := strings.ToLower(key)
	if existing, ok := t.byKey[norm]; ok {
		if existing.Field.Path() == f.Path() {
			return nil
		}
		return fmt.Errorf("alias table: %q maps to both %s and %s", key, existing.Field.Path(), f.Path())
	}
	t.byKey[norm] = Alias{Key: key, Field: f, Priority: len(t.byField[f.Path()])}
	t.byField[f.Path()] = append(t.byField[f.Path()], key)
	return nil
}

// Lookup resolves an external key, ignoring case.
func (t *AliasTable) Lookup(key string) (Alias, bool) {
	a, ok := t.byKey[strings.ToLower(key)]
	return a, ok
}

// Spellings returns the recognized spellings of a canonical path in priority order.
func (t *AliasTable) Spellings(path string) []string {
	return append([]string(nil), t.byField[path]...)
}
