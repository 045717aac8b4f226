package core

import (
	"fmt"
	"unicode/utf8"
)

// Registry limits.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxTags              = 20
	MaxTagLength         = 50
)

// Validate checks the field-level registry rules and returns a warning per violation.
// It never fails: the record stays usable and the caller decides what to show.
func Validate(r Record) []Warning {
	var warnings []Warning

	switch {
	case r.Core.Name == nil || *r.Core.Name == "":
		warnings = append(warnings, Warning{Field: "core.name", Message: "name is required"})
	case utf8.RuneCountInString(*r.Core.Name) > MaxNameLength:
		warnings = append(warnings, Warning{
			Field:   "core.name",
			Message: fmt.Sprintf("name too long (%d/%d characters)", utf8.RuneCountInString(*r.Core.Name), MaxNameLength),
		})
	}

	if r.Core.Description != nil && utf8.RuneCountInString(*r.Core.Description) > MaxDescriptionLength {
		warnings = append(warnings, Warning{
			Field:   "core.description",
			Message: fmt.Sprintf("description too long (%d/%d characters)", utf8.RuneCountInString(*r.Core.Description), MaxDescriptionLength),
		})
	}

	if len(r.Core.Tags) > MaxTags {
		warnings = append(warnings, Warning{
			Field:   "core.tags",
			Message: fmt.Sprintf("too many tags (%d/%d)", len(r.Core.Tags), MaxTags),
		})
	}
	for _, tag := range r.Core.Tags {
		if n := utf8.RuneCountInString(tag); n == 0 || n > MaxTagLength {
			warnings = append(warnings, Warning{
				Field:   "core.tags",
				Message: fmt.Sprintf("tag length must be 1-%d characters", MaxTagLength),
				Value:   tag,
			})
		}
	}

	if id := r.Lineage.LineageID; id != nil && !IsLineageV4(*id) {
		warnings = append(warnings, Warning{
			Field:   "lineage.lineage_id",
			Message: "lineage id should be a version 4 UUID",
			Value:   id.String(),
		})
	}

	return warnings
}

// ValidateForExport enforces the fields every persisted representation needs.
func ValidateForExport(r Record) error {
	if r.Lineage.LineageID == nil {
		return &Error{Kind: ErrMissingRequiredField, Key: "lineage.lineage_id"}
	}
	return nil
}
