// Package core holds the canonical METRO metadata model and the rules that keep it consistent.
package core

import (
	"slices"
	"sort"

	"github.com/google/uuid"
)

// SchemaVersion is the only schema version this module reads and writes.
const SchemaVersion = 1

// Category names one of the six fixed groups of the canonical schema.
type Category string

const (
	CategoryCore       Category = "core"
	CategoryProvenance Category = "provenance"
	CategoryAccess     Category = "access"
	CategoryLineage    Category = "lineage"
	CategoryTechnical  Category = "technical"
	CategoryProject    Category = "project"
)

// Categories returns the categories in their canonical order.
func Categories() []Category {
	return []Category{
		CategoryCore,
		CategoryProvenance,
		CategoryAccess,
		CategoryLineage,
		CategoryTechnical,
		CategoryProject,
	}
}

// Vec3 is a point in 3D space.
type Vec3 [3]float64

// Record is the canonical metadata record of a single logical asset.
// Optional scalar fields are pointers: nil means unset. Empty lists are unset.
type Record struct {
	Core       Core
	Provenance Provenance
	Access     Access
	Lineage    Lineage
	Technical  Technical
	Project    Project

	// Unrecognized holds every entry that could not be placed in a canonical field.
	// It is kept sorted by key and keys are unique.
	Unrecognized []UnrecognizedField
}

// Core identifies the asset.
type Core struct {
	Name          *string
	Description   *string
	Format        *Format
	TriangleCount *uint64 // derived
	Tags          []string
	UseCase       *string
}

// Provenance describes where the asset came from.
type Provenance struct {
	GenerationTool *string
	SourceDataRefs []string
}

// Access holds access control and licensing.
type Access struct {
	AccessLevel         *AccessLevel
	License             *string
	AttributionRequired *bool
}

// Lineage ties versions and exports of the same logical asset together.
type Lineage struct {
	LineageID   *uuid.UUID
	DerivedFrom []string
}

// Technical holds geometry statistics. Everything except ScientificDomain and
// SourceFormat is derived by extraction.
type Technical struct {
	LODLevels        *uint64
	BBoxMin          *Vec3
	BBoxMax          *Vec3
	MaterialCount    *uint64
	TexturePresent   *bool
	PBRSupported     *bool
	VertexCount      *uint64
	ScientificDomain *string
	SourceFormat     *string
}

// Project holds project and deployment information.
type Project struct {
	Phase            *string
	Theme            *string
	VRARSupport      *bool
	UsageConstraints *string
	DeploymentNotes  *string
	GeoRestrictions  *string
}

// Ptr returns a pointer to v. Handy for building records by hand.
func Ptr[T any](v T) *T {
	return &v
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := Record{}
	for _, f := range Fields() {
		if v, ok := f.Get(&r); ok {
			f.put(&out, cloneValue(v))
		}
	}
	if len(r.Unrecognized) > 0 {
		out.Unrecognized = make([]UnrecognizedField, len(r.Unrecognized))
		for i, u := range r.Unrecognized {
			out.Unrecognized[i] = UnrecognizedField{Key: u.Key, Value: cloneValue(u.Value), Reason: u.Reason}
		}
	}
	return out
}

// Normalized returns a copy in canonical form: empty lists unset and
// unrecognized fields sorted by key with normalized values.
func (r Record) Normalized() Record {
	out := r.Clone()
	for _, f := range Fields() {
		if f.Kind == KindStringList {
			if v, ok := f.Get(&out); ok && len(v.([]string)) == 0 {
				f.Clear(&out)
			}
		}
	}
	fields := out.Unrecognized
	out.Unrecognized = nil
	out.SetUnrecognized(fields...)
	return out
}

// Equal reports whether two records hold the same fields and the same
// unrecognized entries, ignoring the order of the latter.
func (r Record) Equal(o Record) bool {
	a, b := r.Normalized(), o.Normalized()
	for _, f := range Fields() {
		va, oka := f.Get(&a)
		vb, okb := f.Get(&b)
		if oka != okb {
			return false
		}
		if oka && !valuesEqual(va, vb) {
			return false
		}
	}
	if len(a.Unrecognized) != len(b.Unrecognized) {
		return false
	}
	for i := range a.Unrecognized {
		ua, ub := a.Unrecognized[i], b.Unrecognized[i]
		if ua.Key != ub.Key || ua.Reason != ub.Reason || !valuesEqual(ua.Value, ub.Value) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no canonical field and no unrecognized entry is set.
func (r Record) IsEmpty() bool {
	for _, f := range Fields() {
		if _, ok := f.Get(&r); ok {
			return false
		}
	}
	return len(r.Unrecognized) == 0
}

// SetUnrecognized inserts or replaces entries by key, keeping the slice sorted.
// Values are normalized to their JSON-compatible form.
func (r *Record) SetUnrecognized(fields ...UnrecognizedField) {
	for _, u := range fields {
		if u.Reason == "" {
			u.Reason = ReasonUnknown
		}
		u.Value = NormalizeValue(u.Value)
		i := sort.Search(len(r.Unrecognized), func(i int) bool {
			return r.Unrecognized[i].Key >= u.Key
		})
		if i < len(r.Unrecognized) && r.Unrecognized[i].Key == u.Key {
			r.Unrecognized[i] = u
			continue
		}
		r.Unrecognized = slices.Insert(r.Unrecognized, i, u)
	}
}

// LookupUnrecognized returns the entry stored under key.
func (r Record) LookupUnrecognized(key string) (UnrecognizedField, bool) {
	for _, u := range r.Unrecognized {
		if u.Key == key {
			return u, true
		}
	}
	return UnrecognizedField{}, false
}

// RemoveUnrecognized drops the entry stored under key, if any.
func (r *Record) RemoveUnrecognized(key string) {
	r.Unrecognized = slices.DeleteFunc(r.Unrecognized, func(u UnrecognizedField) bool {
		return u.Key == key
	})
}

// HasDerived reports whether any extraction-owned field is set.
func (r Record) HasDerived() bool {
	for _, f := range Fields() {
		if !f.Derived {
			continue
		}
		if _, ok := f.Get(&r); ok {
			return true
		}
	}
	return false
}
