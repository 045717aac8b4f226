package core

import (
	"github.com/google/uuid"
)

// Kind is the declared type of a canonical field.
type Kind int

const (
	KindString Kind = iota
	KindUint
	KindBool
	KindVec3
	KindStringList
	KindFormat
	KindAccessLevel
	KindUUID
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindUint:
		return "uint"
	case KindBool:
		return "bool"
	case KindVec3:
		return "vec3"
	case KindStringList:
		return "string list"
	case KindFormat:
		return "format"
	case KindAccessLevel:
		return "access level"
	case KindUUID:
		return "uuid"
	default:
		return "unknown"
	}
}

// Field describes one canonical field and how to read and write it on a Record.
// The table is the single place that knows the record layout; codecs and the
// mapper go through it instead of touching struct fields.
type Field struct {
	Category Category
	Name     string
	Kind     Kind
	// Derived fields are owned by extraction.
	Derived bool

	get   func(*Record) (any, bool)
	put   func(*Record, any)
	clear func(*Record)
}

// Path returns the dotted "category.name" path of the field.
func (f Field) Path() string {
	return string(f.Category) + "." + f.Name
}

// Get returns the field value and whether it is set. The value has the
// canonical Go type of the field kind (string, uint64, bool, Vec3, []string,
// Format, AccessLevel, uuid.UUID).
func (f Field) Get(r *Record) (any, bool) {
	return f.get(r)
}

// Set coerces raw to the field kind and stores it.
func (f Field) Set(r *Record, raw any) error {
	v, err := Coerce(f.Kind, raw)
	if err != nil {
		return &Error{Kind: ErrFieldCoercionFailed, Key: f.Path(), Value: raw, Err: err}
	}
	f.put(r, v)
	return nil
}

// Copy stores the value of the field in src onto dst when src has it set.
// The value is already canonical, so no coercion takes place.
func (f Field) Copy(dst, src *Record) bool {
	v, ok := f.get(src)
	if ok {
		f.put(dst, v)
	}
	return ok
}

// Clear unsets the field.
func (f Field) Clear(r *Record) {
	f.clear(r)
}

var (
	fieldTable = buildFieldTable()
	fieldIndex = indexFields(fieldTable)
)

// Fields returns the canonical fields in schema order.
func Fields() []Field {
	return fieldTable
}

// LookupField finds a field by its "category.name" path.
func LookupField(path string) (Field, bool) {
	f, ok := fieldIndex[path]
	return f, ok
}

// FieldsOf returns the fields of one category in schema order.
func FieldsOf(c Category) []Field {
	var out []Field
	for _, f := range fieldTable {
		if f.Category == c {
			out = append(out, f)
		}
	}
	return out
}

func indexFields(fields []Field) map[string]Field {
	idx := make(map[string]Field, len(fields))
	for _, f := range fields {
		idx[f.Path()] = f
	}
	return idx
}

func optional[T any](c Category, name string, kind Kind, derived bool, ptr func(*Record) **T) Field {
	return Field{
		Category: c,
		Name:     name,
		Kind:     kind,
		Derived:  derived,
		get: func(r *Record) (any, bool) {
			p := *ptr(r)
			if p == nil {
				return nil, false
			}
			return *p, true
		},
		put: func(r *Record, v any) {
			t := v.(T)
			*ptr(r) = &t
		},
		clear: func(r *Record) {
			*ptr(r) = nil
		},
	}
}

func list(c Category, name string, ptr func(*Record) *[]string) Field {
	return Field{
		Category: c,
		Name:     name,
		Kind:     KindStringList,
		get: func(r *Record) (any, bool) {
			l := *ptr(r)
			if l == nil {
				return nil, false
			}
			return l, true
		},
		put: func(r *Record, v any) {
			l := v.([]string)
			if len(l) == 0 {
				l = nil
			}
			*ptr(r) = l
		},
		clear: func(r *Record) {
			*ptr(r) = nil
		},
	}
}

func buildFieldTable() []Field {
	return []Field{
		optional(CategoryCore, "name", KindString, false, func(r *Record) **string { return &r.Core.Name }),
		optional(CategoryCore, "description", KindString, false, func(r *Record) **string { return &r.Core.Description }),
		optional(CategoryCore, "format", KindFormat, false, func(r *Record) **Format { return &r.Core.Format }),
		optional(CategoryCore, "triangle_count", KindUint, true, func(r *Record) **uint64 { return &r.Core.TriangleCount }),
		list(CategoryCore, "tags", func(r *Record) *[]string { return &r.Core.Tags }),
		optional(CategoryCore, "use_case", KindString, false, func(r *Record) **string { return &r.Core.UseCase }),

		optional(CategoryProvenance, "generation_tool", KindString, false, func(r *Record) **string { return &r.Provenance.GenerationTool }),
		list(CategoryProvenance, "source_data_refs", func(r *Record) *[]string { return &r.Provenance.SourceDataRefs }),

		optional(CategoryAccess, "access_level", KindAccessLevel, false, func(r *Record) **AccessLevel { return &r.Access.AccessLevel }),
		optional(CategoryAccess, "license", KindString, false, func(r *Record) **string { return &r.Access.License }),
		optional(CategoryAccess, "attribution_required", KindBool, false, func(r *Record) **bool { return &r.Access.AttributionRequired }),

		optional(CategoryLineage, "lineage_id", KindUUID, false, func(r *Record) **uuid.UUID { return &r.Lineage.LineageID }),
		list(CategoryLineage, "derived_from", func(r *Record) *[]string { return &r.Lineage.DerivedFrom }),

		optional(CategoryTechnical, "lod_levels", KindUint, true, func(r *Record) **uint64 { return &r.Technical.LODLevels }),
		optional(CategoryTechnical, "bbox_min", KindVec3, true, func(r *Record) **Vec3 { return &r.Technical.BBoxMin }),
		optional(CategoryTechnical, "bbox_max", KindVec3, true, func(r *Record) **Vec3 { return &r.Technical.BBoxMax }),
		optional(CategoryTechnical, "material_count", KindUint, true, func(r *Record) **uint64 { return &r.Technical.MaterialCount }),
		optional(CategoryTechnical, "texture_present", KindBool, true, func(r *Record) **bool { return &r.Technical.TexturePresent }),
		optional(CategoryTechnical, "pbr_supported", KindBool, true, func(r *Record) **bool { return &r.Technical.PBRSupported }),
		optional(CategoryTechnical, "vertex_count", KindUint, true, func(r *Record) **uint64 { return &r.Technical.VertexCount }),
		optional(CategoryTechnical, "scientific_domain", KindString, false, func(r *Record) **string { return &r.Technical.ScientificDomain }),
		optional(CategoryTechnical, "source_format", KindString, false, func(r *Record) **string { return &r.Technical.SourceFormat }),

		optional(CategoryProject, "phase", KindString, false, func(r *Record) **string { return &r.Project.Phase }),
		optional(CategoryProject, "theme", KindString, false, func(r *Record) **string { return &r.Project.Theme }),
		optional(CategoryProject, "vr_ar_support", KindBool, false, func(r *Record) **bool { return &r.Project.VRARSupport }),
		optional(CategoryProject, "usage_constraints", KindString, false, func(r *Record) **string { return &r.Project.UsageConstraints }),
		optional(CategoryProject, "deployment_notes", KindString, false, func(r *Record) **string { return &r.Project.DeploymentNotes }),
		optional(CategoryProject, "geo_restrictions", KindString, false, func(r *Record) **string { return &r.Project.GeoRestrictions }),
	}
}
