package core_test

import (
	"errors"
	"testing"

	"github.com/aretw0/metro/pkg/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLineage(id uuid.UUID) core.LineageGenerator {
	return func() (uuid.UUID, error) { return id, nil }
}

func cubeSnapshot() core.TechnicalSnapshot {
	return core.TechnicalSnapshot{
		TriangleCount: 12,
		VertexCount:   8,
		LODLevels:     1,
		BBoxMin:       core.Vec3{-1, -1, -1},
		BBoxMax:       core.Vec3{1, 1, 1},
		MaterialCount: 1,
	}
}

func TestStore_ApplySnapshotGeneratesLineageOnce(t *testing.T) {
	first := uuid.New()
	calls := 0
	store := core.NewStore(core.WithLineageGenerator(func() (uuid.UUID, error) {
		calls++
		return first, nil
	}))

	store.ApplySnapshot(cubeSnapshot())
	store.ApplySnapshot(cubeSnapshot())

	rec, ok := store.Record()
	require.True(t, ok)
	require.NotNil(t, rec.Lineage.LineageID)
	assert.Equal(t, first, *rec.Lineage.LineageID)
	assert.Equal(t, 1, calls, "lineage id must be generated only once")
	assert.True(t, store.Extracted())
}

func TestStore_ApplySnapshotLeavesOtherCategories(t *testing.T) {
	store := core.NewStore()
	store.Merge(core.Record{
		Core:    core.Core{Name: core.Ptr("Cube")},
		Project: core.Project{Phase: core.Ptr("prototype")},
		Technical: core.Technical{
			ScientificDomain: core.Ptr("archaeology"),
		},
	})

	store.ApplySnapshot(cubeSnapshot())

	rec, _ := store.Record()
	assert.Equal(t, "Cube", *rec.Core.Name)
	assert.Equal(t, "prototype", *rec.Project.Phase)
	assert.Equal(t, "archaeology", *rec.Technical.ScientificDomain)
	assert.Equal(t, uint64(12), *rec.Core.TriangleCount)
	assert.Equal(t, core.Vec3{1, 1, 1}, *rec.Technical.BBoxMax)
}

func TestStore_MergeKeepsExistingLineage(t *testing.T) {
	existing := uuid.New()
	incoming := uuid.New()

	store := core.NewStore(core.WithLineageGenerator(fixedLineage(existing)))
	store.ApplySnapshot(cubeSnapshot())

	warnings := store.Merge(core.Record{Lineage: core.Lineage{LineageID: &incoming}})

	rec, _ := store.Record()
	assert.Equal(t, existing, *rec.Lineage.LineageID)
	require.Len(t, warnings, 1)
	assert.Equal(t, "lineage.lineage_id", warnings[0].Field)
}

func TestStore_EditCanOverrideLineage(t *testing.T) {
	existing := uuid.New()
	override := uuid.New()

	store := core.NewStore(core.WithLineageGenerator(fixedLineage(existing)))
	store.ApplySnapshot(cubeSnapshot())

	warnings := store.Edit(core.Record{Lineage: core.Lineage{LineageID: &override}}, true)
	assert.Empty(t, warnings)

	rec, _ := store.Record()
	assert.Equal(t, override, *rec.Lineage.LineageID)
}

func TestStore_MergeAdoptsIncomingLineageWhenAbsent(t *testing.T) {
	incoming := uuid.New()
	store := core.NewStore(core.WithLineageGenerator(func() (uuid.UUID, error) {
		t.Fatal("generator must not run when the record already carries a lineage id")
		return uuid.Nil, nil
	}))

	store.Merge(core.Record{Lineage: core.Lineage{LineageID: &incoming}})

	rec, _ := store.Record()
	assert.Equal(t, incoming, *rec.Lineage.LineageID)
}

func TestStore_DerivedFieldsAfterExtraction(t *testing.T) {
	store := core.NewStore()

	// Before extraction the mapper may seed derived values.
	store.Merge(core.Record{Core: core.Core{TriangleCount: core.Ptr(uint64(500))}})
	rec, _ := store.Record()
	assert.Equal(t, uint64(500), *rec.Core.TriangleCount)

	store.ApplySnapshot(cubeSnapshot())

	warnings := store.Merge(core.Record{Core: core.Core{TriangleCount: core.Ptr(uint64(999))}})
	rec, _ = store.Record()
	assert.Equal(t, uint64(12), *rec.Core.TriangleCount)
	require.Len(t, warnings, 1)
	assert.Equal(t, "core.triangle_count", warnings[0].Field)
}

func TestStore_MergeIsAdditive(t *testing.T) {
	store := core.NewStore()
	store.Merge(core.Record{
		Core:   core.Core{Name: core.Ptr("Cube"), Tags: []string{"a"}},
		Access: core.Access{License: core.Ptr("MIT")},
	})
	store.Merge(core.Record{
		Core: core.Core{Name: core.Ptr("Renamed")},
		Unrecognized: []core.UnrecognizedField{
			{Key: "custom", Value: "x"},
		},
	})

	rec, _ := store.Record()
	assert.Equal(t, "Renamed", *rec.Core.Name)
	assert.Equal(t, []string{"a"}, rec.Core.Tags)
	assert.Equal(t, "MIT", *rec.Access.License)
	require.Len(t, rec.Unrecognized, 1)
	assert.Equal(t, core.ReasonUnknown, rec.Unrecognized[0].Reason)
}

func TestStore_GeneratorFailureIsAWarning(t *testing.T) {
	store := core.NewStore(core.WithLineageGenerator(func() (uuid.UUID, error) {
		return uuid.Nil, errors.New("entropy exhausted")
	}))

	warnings := store.Merge(core.Record{Core: core.Core{Name: core.Ptr("Cube")}})
	require.Len(t, warnings, 1)

	rec, ok := store.Record()
	require.True(t, ok)
	assert.Nil(t, rec.Lineage.LineageID)

	_, err := store.EnsureLineage()
	assert.ErrorIs(t, err, core.ErrMissingRequiredField)
}

func TestStore_EnsureLineageOnEmptyStore(t *testing.T) {
	_, err := core.NewStore().EnsureLineage()
	assert.ErrorIs(t, err, core.ErrNoRecord)
}

func TestStore_RecordIsACopy(t *testing.T) {
	store := core.NewStore()
	store.Merge(core.Record{Core: core.Core{Tags: []string{"a"}}})

	rec, _ := store.Record()
	rec.Core.Tags[0] = "mutated"
	*rec.Lineage.LineageID = uuid.Nil

	again, _ := store.Record()
	assert.Equal(t, []string{"a"}, again.Core.Tags)
	assert.NotEqual(t, uuid.Nil, *again.Lineage.LineageID)
}

func TestStore_ReplaceAndReset(t *testing.T) {
	id := uuid.New()
	store := core.NewStore()

	store.Replace(core.Record{
		Lineage: core.Lineage{LineageID: &id},
		Core:    core.Core{TriangleCount: core.Ptr(uint64(3))},
	})
	assert.True(t, store.Extracted(), "an imported record with derived fields counts as extracted")

	store.Reset()
	_, ok := store.Record()
	assert.False(t, ok)
	assert.False(t, store.Extracted())
}
