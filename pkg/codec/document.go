// Package codec converts canonical records to and from their persisted
// representations: the sidecar document, the export extras block and the
// flat properties store.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/metro/pkg/core"
	"gopkg.in/yaml.v3"
)

// Reserved document keys.
const (
	KeySchemaVersion       = "schema_version"
	KeyUnrecognized        = "_unrecognized"
	KeyUnrecognizedReasons = "_unrecognized_reasons"
)

// Document is the nested representation shared by the sidecar and the extras
// block: schema_version, one object per category, and the _unrecognized object.
type Document map[string]any

// Encode builds the document for r. Every category object is present, even
// when empty, and _unrecognized_reasons is only written when some entry has a
// reason other than unknown.
func Encode(r core.Record) Document {
	r = r.Normalized()

	doc := Document{KeySchemaVersion: core.SchemaVersion}
	for _, c := range core.Categories() {
		doc[string(c)] = map[string]any{}
	}
	for _, f := range core.Fields() {
		if v, ok := f.Get(&r); ok {
			doc[string(f.Category)].(map[string]any)[f.Name] = core.ExportValue(v)
		}
	}

	unrecognized := make(map[string]any, len(r.Unrecognized))
	reasons := make(map[string]any)
	for _, u := range r.Unrecognized {
		unrecognized[u.Key] = u.Value
		if u.Reason != core.ReasonUnknown {
			reasons[u.Key] = string(u.Reason)
		}
	}
	doc[KeyUnrecognized] = unrecognized
	if len(reasons) > 0 {
		doc[KeyUnrecognizedReasons] = reasons
	}
	return doc
}

// Decode rebuilds a record from a decoded document. The returned slice holds
// the entries rejected by this import (unknown keys and coercion failures);
// they are folded into the record as well.
//
// A document without schema_version, or with a structurally invalid shape,
// fails with core.ErrMalformedDocument. A newer schema version fails with
// core.ErrSchemaVersionUnsupported before any field is read.
func Decode(raw map[string]any) (core.Record, []core.UnrecognizedField, error) {
	var rec core.Record
	if raw == nil {
		return rec, nil, core.Malformed("", fmt.Errorf("empty document"))
	}
	doc, _ := core.NormalizeValue(raw).(map[string]any)

	version, ok := doc[KeySchemaVersion]
	if !ok {
		return rec, nil, core.Malformed(KeySchemaVersion, fmt.Errorf("missing"))
	}
	if err := CheckVersion(version); err != nil {
		return rec, nil, err
	}

	var rejected []core.UnrecognizedField
	categories := make(map[string]bool)
	for _, c := range core.Categories() {
		categories[string(c)] = true
		body, present := doc[string(c)]
		if !present || body == nil {
			continue
		}
		obj, ok := body.(map[string]any)
		if !ok {
			return core.Record{}, nil, core.Malformed(string(c), fmt.Errorf("expected object, got %T", body))
		}
		for _, key := range sortedKeys(obj) {
			value := obj[key]
			if value == nil {
				continue
			}
			path := string(c) + "." + key
			f, ok := core.LookupField(path)
			if !ok {
				rejected = append(rejected, core.UnrecognizedField{Key: path, Value: value, Reason: core.ReasonUnknown})
				continue
			}
			if err := f.Set(&rec, value); err != nil {
				rejected = append(rejected, core.UnrecognizedField{Key: path, Value: value, Reason: core.ReasonCoercionFailed})
			}
		}
	}

	for _, key := range sortedKeys(doc) {
		switch {
		case key == KeySchemaVersion, key == KeyUnrecognized, key == KeyUnrecognizedReasons, categories[key]:
			continue
		}
		rejected = append(rejected, core.UnrecognizedField{Key: key, Value: doc[key], Reason: core.ReasonUnknown})
	}
	rec.SetUnrecognized(rejected...)

	kept, err := object(doc, KeyUnrecognized)
	if err != nil {
		return core.Record{}, nil, err
	}
	reasons, err := object(doc, KeyUnrecognizedReasons)
	if err != nil {
		return core.Record{}, nil, err
	}
	for _, key := range sortedKeys(kept) {
		reason := core.ReasonUnknown
		if s, ok := reasons[key].(string); ok {
			reason = core.ParseReason(s)
		}
		rec.SetUnrecognized(core.UnrecognizedField{Key: key, Value: kept[key], Reason: reason})
	}

	return rec, rejected, nil
}

// CheckVersion validates a schema_version value. Integers, and strings of
// the form "1" or "1.x.y", are accepted.
func CheckVersion(v any) error {
	n, err := parseVersion(v)
	if err != nil {
		return core.Malformed(KeySchemaVersion, err)
	}
	if n > core.SchemaVersion {
		return &core.Error{Kind: core.ErrSchemaVersionUnsupported, Key: KeySchemaVersion, Value: v}
	}
	if n < 1 {
		return core.Malformed(KeySchemaVersion, fmt.Errorf("invalid version %d", n))
	}
	return nil
}

func parseVersion(v any) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Int64()
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case uint64:
		return int64(t), nil
	case float64:
		if t == float64(int64(t)) {
			return int64(t), nil
		}
	case string:
		major, _, _ := strings.Cut(strings.TrimSpace(t), ".")
		return strconv.ParseInt(major, 10, 64)
	}
	return 0, fmt.Errorf("unsupported version value %v", v)
}

func object(doc map[string]any, key string) (map[string]any, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, core.Malformed(key, fmt.Errorf("expected object, got %T", v))
	}
	return obj, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// keys returns the document keys in canonical order: schema_version, the
// categories, the unrecognized objects, then anything else sorted.
func (d Document) keys() []string {
	var out []string
	seen := make(map[string]bool)
	for _, k := range documentOrder() {
		if _, ok := d[k]; ok {
			out = append(out, k)
			seen[k] = true
		}
	}
	for _, k := range sortedKeys(d) {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return out
}

func documentOrder() []string {
	order := []string{KeySchemaVersion}
	for _, c := range core.Categories() {
		order = append(order, string(c))
	}
	return append(order, KeyUnrecognized, KeyUnrecognizedReasons)
}

// MarshalJSON writes the top-level keys in canonical order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d[k])
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the top-level keys in canonical order. json.Number
// values become YAML numbers instead of quoted strings.
func (d Document) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range d.keys() {
		var val yaml.Node
		if err := val.Encode(yamlValue(d[k])); err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &val)
	}
	return node, nil
}

func yamlValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(string(t), 10, 64); err == nil {
			return u
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return string(t)
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = yamlValue(val)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, val := range t {
			l[i] = yamlValue(val)
		}
		return l
	default:
		return t
	}
}
