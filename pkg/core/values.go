package core

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Coerce converts an arbitrary decoded value (JSON, YAML or a flat string) to
// the canonical Go type of kind. It never panics; unsupported input returns an error.
func Coerce(kind Kind, raw any) (any, error) {
	switch kind {
	case KindString:
		return coerceString(raw)
	case KindUint:
		return coerceUint(raw)
	case KindBool:
		return coerceBool(raw)
	case KindVec3:
		return coerceVec3(raw)
	case KindStringList:
		return coerceList(raw)
	case KindFormat:
		switch t := raw.(type) {
		case Format:
			return ParseFormat(string(t))
		case string:
			return ParseFormat(t)
		}
	case KindAccessLevel:
		switch t := raw.(type) {
		case AccessLevel:
			return ParseAccessLevel(string(t))
		case string:
			return ParseAccessLevel(t)
		}
	case KindUUID:
		switch t := raw.(type) {
		case uuid.UUID:
			return t, nil
		case string:
			id, err := uuid.Parse(strings.TrimSpace(t))
			if err != nil {
				return nil, fmt.Errorf("invalid uuid %q: %w", t, err)
			}
			return id, nil
		}
	default:
		return nil, fmt.Errorf("unsupported kind %d", kind)
	}
	return nil, fmt.Errorf("expected %s, got %T", kind, raw)
}

func coerceString(raw any) (any, error) {
	switch t := raw.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	}
	if _, ok := toFloat(raw); ok {
		if n, ok := NormalizeValue(raw).(json.Number); ok {
			return string(n), nil
		}
	}
	return nil, fmt.Errorf("expected string, got %T", raw)
}

func coerceUint(raw any) (any, error) {
	switch t := raw.(type) {
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected unsigned integer, got %q", t)
		}
		return n, nil
	case json.Number:
		if n, err := strconv.ParseUint(string(t), 10, 64); err == nil {
			return n, nil
		}
	case int:
		if t >= 0 {
			return uint64(t), nil
		}
	case int64:
		if t >= 0 {
			return uint64(t), nil
		}
	case int32:
		if t >= 0 {
			return uint64(t), nil
		}
	case uint:
		return uint64(t), nil
	case uint32:
		return uint64(t), nil
	case uint64:
		return t, nil
	}
	if f, ok := toFloat(raw); ok && f >= 0 && f == math.Trunc(f) && f < math.MaxUint64 {
		return uint64(f), nil
	}
	return nil, fmt.Errorf("expected unsigned integer, got %v", raw)
}

func coerceBool(raw any) (any, error) {
	switch t := raw.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return nil, fmt.Errorf("expected bool, got %q", t)
	}
	if f, ok := toFloat(raw); ok && (f == 0 || f == 1) {
		return f == 1, nil
	}
	return nil, fmt.Errorf("expected bool, got %v", raw)
}

func coerceVec3(raw any) (any, error) {
	switch t := raw.(type) {
	case Vec3:
		return t, nil
	case [3]float64:
		return Vec3(t), nil
	case []float64:
		if len(t) == 3 {
			return Vec3{t[0], t[1], t[2]}, nil
		}
	case []any:
		if len(t) != 3 {
			break
		}
		var v Vec3
		for i, c := range t {
			f, ok := toFloat(c)
			if !ok {
				return nil, fmt.Errorf("vec3 component %d is not a number: %v", i, c)
			}
			v[i] = f
		}
		return v, nil
	case map[string]any:
		var v Vec3
		for i, axis := range []string{"x", "y", "z"} {
			f, ok := toFloat(t[axis])
			if !ok {
				return nil, fmt.Errorf("vec3 axis %q is not a number: %v", axis, t[axis])
			}
			v[i] = f
		}
		return v, nil
	case string:
		var parsed any
		dec := json.NewDecoder(strings.NewReader(t))
		dec.UseNumber()
		if err := dec.Decode(&parsed); err == nil {
			if _, ok := parsed.(string); !ok {
				return coerceVec3(parsed)
			}
		}
	}
	return nil, fmt.Errorf("expected three numbers, got %v", raw)
}

func coerceList(raw any) (any, error) {
	switch t := raw.(type) {
	case []string:
		return slices.Clone(t), nil
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, err := coerceString(item)
			if err != nil {
				return nil, fmt.Errorf("list item %d: %w", i, err)
			}
			out = append(out, s.(string))
		}
		return out, nil
	case string:
		trimmed := strings.TrimSpace(t)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			var parsed []any
			dec := json.NewDecoder(strings.NewReader(trimmed))
			dec.UseNumber()
			if err := dec.Decode(&parsed); err == nil {
				return coerceList(parsed)
			}
		}
		return SplitList(t), nil
	}
	return nil, fmt.Errorf("expected list of strings, got %T", raw)
}

// SplitList parses a comma-separated string into trimmed, non-empty items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// NormalizeValue converts an opaque decoded value into its canonical
// JSON-compatible form: maps become map[string]any, slices become []any and
// every number becomes a json.Number with a canonical literal. Values in this
// form survive JSON, YAML and flat-string round trips unchanged.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case nil, bool, string:
		return t
	case json.Number:
		return canonicalNumber(t)
	case int:
		return json.Number(strconv.FormatInt(int64(t), 10))
	case int8:
		return json.Number(strconv.FormatInt(int64(t), 10))
	case int16:
		return json.Number(strconv.FormatInt(int64(t), 10))
	case int32:
		return json.Number(strconv.FormatInt(int64(t), 10))
	case int64:
		return json.Number(strconv.FormatInt(t, 10))
	case uint:
		return json.Number(strconv.FormatUint(uint64(t), 10))
	case uint8:
		return json.Number(strconv.FormatUint(uint64(t), 10))
	case uint16:
		return json.Number(strconv.FormatUint(uint64(t), 10))
	case uint32:
		return json.Number(strconv.FormatUint(uint64(t), 10))
	case uint64:
		return json.Number(strconv.FormatUint(t, 10))
	case float32:
		return normalizeFloat(float64(t))
	case float64:
		return normalizeFloat(t)
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = NormalizeValue(val)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = NormalizeValue(val)
		}
		return m
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = val
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, val := range t {
			l[i] = NormalizeValue(val)
		}
		return l
	case []string:
		l := make([]any, len(t))
		for i, val := range t {
			l[i] = val
		}
		return l
	case []float64:
		l := make([]any, len(t))
		for i, val := range t {
			l[i] = normalizeFloat(val)
		}
		return l
	case Vec3:
		return NormalizeValue(t[:])
	case Format:
		return string(t)
	case AccessLevel:
		return string(t)
	case uuid.UUID:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func canonicalNumber(n json.Number) any {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return json.Number(strconv.FormatInt(i, 10))
	}
	if u, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return json.Number(strconv.FormatUint(u, 10))
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil {
		return normalizeFloat(f)
	}
	return string(n)
}

func normalizeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return json.Number(strconv.FormatInt(int64(f), 10))
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// ExportValue converts a canonical field value to the plain form written to
// documents: enums and UUIDs become strings, Vec3 a three-element slice.
func ExportValue(v any) any {
	switch t := v.(type) {
	case Format:
		return string(t)
	case AccessLevel:
		return string(t)
	case uuid.UUID:
		return t.String()
	case Vec3:
		return []float64{t[0], t[1], t[2]}
	case []string:
		return slices.Clone(t)
	default:
		return t
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t)
	case []any:
		l := make([]any, len(t))
		for i, val := range t {
			l[i] = cloneValue(val)
		}
		return l
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	default:
		return t
	}
}

func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
