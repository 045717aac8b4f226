package schema

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/metro/pkg/core"
)

// Mapper translates external metadata mappings into a partial canonical record.
type Mapper struct {
	aliases *AliasTable
	logger  *slog.Logger
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithAliases replaces the built-in alias table.
func WithAliases(t *AliasTable) MapperOption {
	return func(m *Mapper) {
		m.aliases = t
	}
}

// WithLogger sets the logger used for per-key diagnostics.
func WithLogger(logger *slog.Logger) MapperOption {
	return func(m *Mapper) {
		m.logger = logger
	}
}

// NewMapper creates a Mapper using the default alias table.
func NewMapper(opts ...MapperOption) *Mapper {
	m := &Mapper{
		aliases: DefaultAliasTable(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Aliases returns the table the mapper resolves keys with.
func (m *Mapper) Aliases() *AliasTable {
	return m.aliases
}

type candidate struct {
	key   string
	value any
	alias Alias
}

// Map never fails. Recognized keys fill the partial record; everything else
// is returned as unrecognized entries, which are also set on the record:
//
//   - keys matching no alias are tagged ReasonUnknown;
//   - values that do not coerce to the field type are tagged ReasonCoercionFailed;
//   - when several spellings of one field are present, the highest-priority
//     one that coerces wins and the others are tagged ReasonSuperseded, even
//     when they carry the same value.
//
// An object under a key that is not an alias is flattened one level into
// "parent.child" keys when at least one child is an alias; otherwise it is
// kept whole under its own key.
func (m *Mapper) Map(external map[string]any) (core.Record, []core.UnrecognizedField) {
	var rec core.Record
	var rejected []core.UnrecognizedField

	byField := make(map[string][]candidate)
	for key, value := range m.flatten(external) {
		alias, ok := m.aliases.Lookup(key)
		if !ok {
			rejected = append(rejected, core.UnrecognizedField{Key: key, Value: value, Reason: core.ReasonUnknown})
			continue
		}
		path := alias.Field.Path()
		byField[path] = append(byField[path], candidate{key: key, value: value, alias: alias})
	}

	for _, f := range core.Fields() {
		cands := byField[f.Path()]
		if len(cands) == 0 {
			continue
		}
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].alias.Priority != cands[j].alias.Priority {
				return cands[i].alias.Priority < cands[j].alias.Priority
			}
			return cands[i].key < cands[j].key
		})

		won := false
		for _, c := range cands {
			v, err := core.Coerce(f.Kind, c.value)
			if err != nil {
				m.logger.Debug("coercion failed", "key", c.key, "field", f.Path(), "error", err)
				rejected = append(rejected, core.UnrecognizedField{Key: c.key, Value: c.value, Reason: core.ReasonCoercionFailed})
				continue
			}
			if !won {
				if err := f.Set(&rec, v); err != nil {
					rejected = append(rejected, core.UnrecognizedField{Key: c.key, Value: c.value, Reason: core.ReasonCoercionFailed})
					continue
				}
				won = true
				continue
			}
			m.logger.Debug("alias superseded", "key", c.key, "field", f.Path())
			rejected = append(rejected, core.UnrecognizedField{Key: c.key, Value: c.value, Reason: core.ReasonSuperseded})
		}
	}

	sort.Slice(rejected, func(i, j int) bool { return rejected[i].Key < rejected[j].Key })
	rec.SetUnrecognized(rejected...)

	out := make([]core.UnrecognizedField, len(rec.Unrecognized))
	copy(out, rec.Unrecognized)
	return rec, out
}

func (m *Mapper) flatten(external map[string]any) map[string]any {
	flat := make(map[string]any, len(external))
	for key, value := range external {
		if _, ok := m.aliases.Lookup(key); ok {
			flat[key] = value
			continue
		}
		children, ok := asObject(value)
		if !ok || !m.flattenable(key, children, external) {
			flat[key] = value
			continue
		}
		for child, v := range children {
			flat[key+"."+child] = v
		}
	}
	return flat
}

// flattenable reports whether some child of parent is an alias and no dotted
// child key collides with a key already present at the top level.
func (m *Mapper) flattenable(parent string, children, external map[string]any) bool {
	matched := false
	for child := range children {
		dotted := parent + "." + child
		if _, clash := external[dotted]; clash {
			return false
		}
		if _, ok := m.aliases.Lookup(dotted); ok {
			matched = true
		}
	}
	return matched
}

func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
