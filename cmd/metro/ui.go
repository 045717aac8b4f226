package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/metro/pkg/core"
	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	keyColor     = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
)

// printError renders err with a hint matching its kind.
func printError(w io.Writer, err error) {
	errorColor.Fprintf(w, "✗ %v\n", err)
	if hint := errorHint(err); hint != "" {
		dimColor.Fprintf(w, "  → %s\n", hint)
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, core.ErrSchemaVersionUnsupported):
		return "the document was written by a newer schema; the current record was left untouched"
	case errors.Is(err, core.ErrMalformedDocument):
		return "fix or remove the document; the current record was left untouched"
	case errors.Is(err, core.ErrNoRecord):
		return "run 'metro extract' or 'metro read' first"
	case errors.Is(err, core.ErrMissingRequiredField):
		return "a lineage id is required to export; set one with an edit or retry"
	case errors.Is(err, core.ErrMetadataAbsent):
		return "nothing to import; export a record there first"
	}
	return ""
}

func printWarnings(w io.Writer, warnings []core.Warning) {
	for _, warn := range warnings {
		warningColor.Fprintf(w, "⚠ %s\n", warn)
	}
}

func printUnrecognized(w io.Writer, fields []core.UnrecognizedField) {
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(w, "Unrecognized (%d):\n", len(fields))
	for _, u := range fields {
		value, _ := json.Marshal(u.Value)
		fmt.Fprintf(w, "  %s = %s ", keyColor.Sprint(u.Key), value)
		dimColor.Fprintf(w, "[%s]\n", u.Reason)
	}
}

func printSuccess(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

func printProperties(w io.Writer, props map[string]string) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s = %s\n", keyColor.Sprint(k), props[k])
	}
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
