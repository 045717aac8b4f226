package core

import (
	"github.com/google/uuid"
)

// LineageGenerator produces a fresh lineage identifier.
type LineageGenerator func() (uuid.UUID, error)

// NewLineageID generates a random (version 4) lineage identifier.
func NewLineageID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

// IsLineageV4 reports whether id is a random (version 4, RFC 4122) UUID.
func IsLineageV4(id uuid.UUID) bool {
	return id.Version() == 4 && id.Variant() == uuid.RFC4122
}
