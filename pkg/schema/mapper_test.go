package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/metro/pkg/core"
	"github.com/aretw0/metro/pkg/schema"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reasons(fields []core.UnrecognizedField) map[string]core.Reason {
	out := make(map[string]core.Reason, len(fields))
	for _, u := range fields {
		out[u.Key] = u.Reason
	}
	return out
}

func TestMapper_CanonicalAndRegistryKeys(t *testing.T) {
	id := uuid.New()
	m := schema.NewMapper()

	rec, unrecognized := m.Map(map[string]any{
		"name":                "Amphora",
		"Description":         "Roman amphora scan",
		"format":              "GLB",
		"tags":                "pottery, roman",
		"accessLevel":         "public",
		"attributionRequired": "yes",
		"lineageId":           id.String(),
		"derivedFromAsset":    []any{"urn:scan:1"},
		"scientificDomain":    "archaeology",
		"projectPhase":        "release",
		"triCount":            json.Number("1200"),
	})

	assert.Empty(t, unrecognized)
	assert.Equal(t, "Amphora", *rec.Core.Name)
	assert.Equal(t, "Roman amphora scan", *rec.Core.Description)
	assert.Equal(t, core.FormatGLB, *rec.Core.Format)
	assert.Equal(t, []string{"pottery", "roman"}, rec.Core.Tags)
	assert.Equal(t, core.AccessPublic, *rec.Access.AccessLevel)
	assert.True(t, *rec.Access.AttributionRequired)
	assert.Equal(t, id, *rec.Lineage.LineageID)
	assert.Equal(t, []string{"urn:scan:1"}, rec.Lineage.DerivedFrom)
	assert.Equal(t, "archaeology", *rec.Technical.ScientificDomain)
	assert.Equal(t, "release", *rec.Project.Phase)
	assert.Equal(t, uint64(1200), *rec.Core.TriangleCount)
}

func TestMapper_AliasConflict(t *testing.T) {
	rec, unrecognized := schema.NewMapper().Map(map[string]any{
		"access_level": "private",
		"accessLevel":  "public",
	})

	require.NotNil(t, rec.Access.AccessLevel)
	assert.Equal(t, core.AccessPublic, *rec.Access.AccessLevel, "the registry spelling ranks first")

	require.Len(t, unrecognized, 1)
	assert.Equal(t, "access_level", unrecognized[0].Key)
	assert.Equal(t, "private", unrecognized[0].Value)
	assert.Equal(t, core.ReasonSuperseded, unrecognized[0].Reason)
	assert.Equal(t, unrecognized, rec.Unrecognized)
}

func TestMapper_RegistrySpellingsWin(t *testing.T) {
	rec, unrecognized := schema.NewMapper().Map(map[string]any{
		"tri_count":     5,
		"triCount":      7,
		"lineage_id":    uuid.NewString(),
		"project_phase": "draft",
		"projectPhase":  "final",
	})

	assert.Equal(t, uint64(7), *rec.Core.TriangleCount)
	assert.Equal(t, "final", *rec.Project.Phase)
	require.NotNil(t, rec.Lineage.LineageID, "a lone snake_case spelling still maps")
	assert.Equal(t, map[string]core.Reason{
		"tri_count":     core.ReasonSuperseded,
		"project_phase": core.ReasonSuperseded,
	}, reasons(unrecognized))
}

func TestMapper_AgreeingAliasesAreKeptAsSuperseded(t *testing.T) {
	rec, unrecognized := schema.NewMapper().Map(map[string]any{
		"name":  "Cube",
		"title": "Cube",
	})

	assert.Equal(t, "Cube", *rec.Core.Name)
	require.Len(t, unrecognized, 1)
	assert.Equal(t, "title", unrecognized[0].Key)
	assert.Equal(t, "Cube", unrecognized[0].Value)
	assert.Equal(t, core.ReasonSuperseded, unrecognized[0].Reason)
}

func TestMapper_CoercionFailures(t *testing.T) {
	rec, unrecognized := schema.NewMapper().Map(map[string]any{
		"format":        "max",
		"lineage_id":    "not-a-uuid",
		"vertex_count":  -3,
		"access_level":  "secret",
		"vr_ar_support": "sometimes",
	})

	assert.Nil(t, rec.Core.Format)
	assert.Nil(t, rec.Lineage.LineageID)
	assert.Nil(t, rec.Technical.VertexCount)
	assert.Nil(t, rec.Access.AccessLevel)
	assert.Nil(t, rec.Project.VRARSupport)

	assert.Equal(t, map[string]core.Reason{
		"format":        core.ReasonCoercionFailed,
		"lineage_id":    core.ReasonCoercionFailed,
		"vertex_count":  core.ReasonCoercionFailed,
		"access_level":  core.ReasonCoercionFailed,
		"vr_ar_support": core.ReasonCoercionFailed,
	}, reasons(unrecognized))

	u, ok := rec.LookupUnrecognized("vertex_count")
	require.True(t, ok)
	assert.Equal(t, json.Number("-3"), u.Value)
}

func TestMapper_FallsBackWhenPreferredAliasFails(t *testing.T) {
	rec, unrecognized := schema.NewMapper().Map(map[string]any{
		"lodLevels":  "many",
		"lod_levels": 3,
	})

	require.NotNil(t, rec.Technical.LODLevels)
	assert.Equal(t, uint64(3), *rec.Technical.LODLevels)
	assert.Equal(t, map[string]core.Reason{"lodLevels": core.ReasonCoercionFailed}, reasons(unrecognized))
}

func TestMapper_UnknownKeysKeptVerbatim(t *testing.T) {
	rec, unrecognized := schema.NewMapper().Map(map[string]any{
		"name":         "Cube",
		"studio_owner": "ACME",
		"boundingBox":  map[string]any{"x": 1.5, "y": 2, "z": 3},
	})

	assert.Equal(t, "Cube", *rec.Core.Name)
	assert.Equal(t, map[string]core.Reason{
		"boundingBox":  core.ReasonUnknown,
		"studio_owner": core.ReasonUnknown,
	}, reasons(unrecognized))

	box, _ := rec.LookupUnrecognized("boundingBox")
	assert.Equal(t, map[string]any{
		"x": json.Number("1.5"),
		"y": json.Number("2"),
		"z": json.Number("3"),
	}, box.Value)
}

func TestMapper_FlattensNestedRegistryObjects(t *testing.T) {
	rec, unrecognized := schema.NewMapper().Map(map[string]any{
		"provenance": map[string]any{
			"tool":       "Blender 4.1",
			"sourceData": []any{"doi:10.1/abc", "doi:10.1/def"},
			"operator":   "jdoe",
		},
		"materialProperties": map[string]any{
			"materialCount": 2,
			"hasTextures":   true,
		},
		"visualizationCapabilities": map[string]any{
			"supportsVR": true,
		},
		"core": map[string]any{
			"use_case": "education",
		},
	})

	assert.Equal(t, "Blender 4.1", *rec.Provenance.GenerationTool)
	assert.Equal(t, []string{"doi:10.1/abc", "doi:10.1/def"}, rec.Provenance.SourceDataRefs)
	assert.Equal(t, uint64(2), *rec.Technical.MaterialCount)
	assert.True(t, *rec.Technical.TexturePresent)
	assert.True(t, *rec.Project.VRARSupport)
	assert.Equal(t, "education", *rec.Core.UseCase)

	assert.Equal(t, map[string]core.Reason{"provenance.operator": core.ReasonUnknown}, reasons(unrecognized))
}

func TestMapper_GLTFExtrasSpellings(t *testing.T) {
	rec, unrecognized := schema.NewMapper().Map(map[string]any{
		"title":     "Temple",
		"author":    "Photogrammetry Lab",
		"copyright": "CC-BY-4.0",
		"keywords":  []any{"temple", "greek"},
	})

	assert.Empty(t, unrecognized)
	assert.Equal(t, "Temple", *rec.Core.Name)
	assert.Equal(t, "Photogrammetry Lab", *rec.Provenance.GenerationTool)
	assert.Equal(t, "CC-BY-4.0", *rec.Access.License)
	assert.Equal(t, []string{"temple", "greek"}, rec.Core.Tags)
}

func TestMapper_IsDeterministic(t *testing.T) {
	in := map[string]any{
		"Name":   "A",
		"NAME":   "B",
		"name":   "C",
		"extra":  1,
		"extra2": []any{1, 2},
	}
	m := schema.NewMapper()

	first, firstU := m.Map(in)
	for i := 0; i < 20; i++ {
		rec, u := m.Map(in)
		assert.True(t, first.Equal(rec))
		assert.Equal(t, firstU, u)
	}
	// Same priority: the lexically smallest spelling wins.
	assert.Equal(t, "B", *first.Core.Name)
}

func TestMapper_EmptyInput(t *testing.T) {
	rec, unrecognized := schema.NewMapper().Map(nil)
	assert.True(t, rec.IsEmpty())
	assert.Empty(t, unrecognized)
}

func TestAliasTable(t *testing.T) {
	table := schema.DefaultAliasTable()

	a, ok := table.Lookup("ACCESSLEVEL")
	require.True(t, ok)
	assert.Equal(t, "access.access_level", a.Field.Path())

	spellings := table.Spellings("access.access_level")
	assert.Equal(t, []string{"access.access_level", "accessLevel", "access_level"}, spellings)

	assert.Equal(t, []string{"core.triangle_count", "triCount", "tri_count", "triangleCount"},
		table.Spellings("core.triangle_count"))

	_, err := schema.NewAliasTable(map[string][]string{"core.nope": {"x"}})
	assert.Error(t, err)

	_, err = schema.NewAliasTable(map[string][]string{"core.name": {"license"}})
	assert.Error(t, err, "a spelling can map to a single field")
}

func TestDefaultAliasTableWith(t *testing.T) {
	table, err := schema.DefaultAliasTableWith(map[string][]string{"core.name": {"asset_title"}})
	require.NoError(t, err)

	spellings := table.Spellings("core.name")
	assert.Equal(t, "asset_title", spellings[len(spellings)-1])

	rec, unrecognized := schema.NewMapper(schema.WithAliases(table)).Map(map[string]any{
		"asset_title": "Custom",
		"accessLevel": "public",
	})
	assert.Empty(t, unrecognized)
	assert.Equal(t, "Custom", *rec.Core.Name)
	assert.Equal(t, core.AccessPublic, *rec.Access.AccessLevel)
}
