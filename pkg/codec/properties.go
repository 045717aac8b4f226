package codec

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/metro/pkg/core"
)

// DefaultNamespace prefixes every key written to the properties store.
const DefaultNamespace = "metro"

const (
	unrecognizedSegment = "_unrecognized."
	reasonSegment       = "_unrecognized_reason."
)

// Properties flattens records into a string-keyed, string-valued map:
//
//	metro.schema_version             = 1
//	metro.core.name                  = Cube
//	metro.technical.bbox_min         = [-1,-1,-1]
//	metro._unrecognized.<key>        = <JSON value>
//	metro._unrecognized_reason.<key> = superseded
//
// Scalars are stored as plain text; lists and vectors as JSON.
type Properties struct {
	namespace string
}

// NewProperties creates a properties codec. An empty namespace means DefaultNamespace.
func NewProperties(namespace string) *Properties {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Properties{namespace: namespace}
}

// Namespace returns the key namespace without the trailing dot.
func (c *Properties) Namespace() string {
	return c.namespace
}

func (c *Properties) prefix() string {
	return c.namespace + "."
}

// Export flattens r.
func (c *Properties) Export(r core.Record) (map[string]string, error) {
	r = r.Normalized()
	p := c.prefix()

	props := map[string]string{
		p + KeySchemaVersion: strconv.Itoa(core.SchemaVersion),
	}
	for _, f := range core.Fields() {
		v, ok := f.Get(&r)
		if !ok {
			continue
		}
		s, err := MarshalPropertyValue(core.ExportValue(v))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.Path(), err)
		}
		props[p+f.Path()] = s
	}
	for _, u := range r.Unrecognized {
		b, err := json.Marshal(u.Value)
		if err != nil {
			return nil, fmt.Errorf("encode unrecognized %q: %w", u.Key, err)
		}
		props[p+unrecognizedSegment+u.Key] = string(b)
		if u.Reason != core.ReasonUnknown {
			props[p+reasonSegment+u.Key] = string(u.Reason)
		}
	}
	return props, nil
}

// Import rebuilds a record from props. Keys outside the namespace are
// ignored. A missing schema_version is read as version 1.
func (c *Properties) Import(props map[string]string) (core.Record, []core.UnrecognizedField, error) {
	var rec core.Record
	p := c.prefix()

	if v, ok := props[p+KeySchemaVersion]; ok {
		if err := CheckVersion(v); err != nil {
			return core.Record{}, nil, err
		}
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		if strings.HasPrefix(k, p) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var rejected []core.UnrecognizedField
	var kept []core.UnrecognizedField
	reasons := make(map[string]core.Reason)

	for _, k := range keys {
		raw := props[k]
		path := strings.TrimPrefix(k, p)
		switch {
		case path == KeySchemaVersion:
		case strings.HasPrefix(path, reasonSegment):
			reasons[strings.TrimPrefix(path, reasonSegment)] = core.ParseReason(raw)
		case strings.HasPrefix(path, unrecognizedSegment):
			kept = append(kept, core.UnrecognizedField{
				Key:   strings.TrimPrefix(path, unrecognizedSegment),
				Value: UnmarshalPropertyValue(raw),
			})
		default:
			f, ok := core.LookupField(path)
			if !ok {
				rejected = append(rejected, core.UnrecognizedField{Key: path, Value: raw, Reason: core.ReasonUnknown})
				continue
			}
			if err := f.Set(&rec, raw); err != nil {
				rejected = append(rejected, core.UnrecognizedField{Key: path, Value: raw, Reason: core.ReasonCoercionFailed})
			}
		}
	}

	rec.SetUnrecognized(rejected...)
	for _, u := range kept {
		if r, ok := reasons[u.Key]; ok {
			u.Reason = r
		}
		rec.SetUnrecognized(u)
	}
	return rec, rejected, nil
}

// MarshalPropertyValue converts a value to its stored string form: strings
// as is, scalars via strconv, everything else as JSON.
func MarshalPropertyValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case json.Number:
		return string(t), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalPropertyValue decodes a stored unrecognized value. Values that
// are not valid JSON are kept as the raw string.
func UnmarshalPropertyValue(s string) any {
	var parsed any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil || dec.More() {
		return s
	}
	return core.NormalizeValue(parsed)
}
