package core

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Store is the in-memory staging area for the record of one asset session.
//
// Every mutating method works on a copy and commits it only when it completes,
// so a failed operation leaves the previous record untouched.
// The store is not safe for concurrent use; operations are driven one at a
// time by the foreground caller.
type Store struct {
	record    *Record
	extracted bool
	generate  LineageGenerator
	logger    *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLineageGenerator replaces the lineage identifier generator.
func WithLineageGenerator(fn LineageGenerator) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.generate = fn
		}
	}
}

// WithStoreLogger sets the logger used to report ignored input.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		generate: NewLineageID,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record returns a copy of the current record and whether one exists.
func (s *Store) Record() (Record, bool) {
	if s.record == nil {
		return Record{}, false
	}
	return s.record.Clone(), true
}

// Extracted reports whether the technical fields came from an extraction pass.
func (s *Store) Extracted() bool {
	return s.extracted
}

// ApplySnapshot overwrites the extraction-owned fields, creating the record
// if none exists. The lineage identifier is generated when absent and kept otherwise.
func (s *Store) ApplySnapshot(snap TechnicalSnapshot) []Warning {
	next := s.working()
	snap.Apply(&next)

	warnings := append([]Warning(nil), snap.Warnings...)
	warnings = append(warnings, s.ensureLineage(&next)...)

	s.commit(next)
	s.extracted = true
	return warnings
}

// Merge applies a partial record produced by the mapper. Set fields overwrite,
// unset fields are left alone and unrecognized entries are merged by key.
//
// Extraction-owned fields are accepted only until the first extraction.
// An incoming lineage identifier never replaces an existing one.
func (s *Store) Merge(partial Record) []Warning {
	return s.merge(partial, false)
}

// Edit applies a user edit. It behaves like Merge except that, when
// overrideLineage is set, an incoming lineage identifier replaces the existing one.
func (s *Store) Edit(partial Record, overrideLineage bool) []Warning {
	return s.merge(partial, overrideLineage)
}

func (s *Store) merge(partial Record, overrideLineage bool) []Warning {
	next := s.working()
	var warnings []Warning

	for _, f := range Fields() {
		v, ok := f.Get(&partial)
		if !ok {
			continue
		}

		if f.Derived && s.extracted {
			s.logger.Debug("ignoring derived field owned by extraction", "key", f.Path())
			warnings = append(warnings, Warning{
				Field:   f.Path(),
				Message: "derived from the scene; supplied value ignored",
				Value:   ExportValue(v),
			})
			continue
		}

		if f.Kind == KindUUID && next.Lineage.LineageID != nil && !overrideLineage {
			if incoming := v.(uuid.UUID); incoming != *next.Lineage.LineageID {
				s.logger.Warn("ignoring conflicting lineage id",
					"existing", next.Lineage.LineageID.String(),
					"incoming", incoming.String(),
				)
				warnings = append(warnings, Warning{
					Field:   f.Path(),
					Message: "lineage id is already set; incoming value ignored",
					Value:   incoming.String(),
				})
			}
			continue
		}

		f.put(&next, cloneValue(v))
	}

	next.SetUnrecognized(partial.Unrecognized...)
	warnings = append(warnings, s.ensureLineage(&next)...)

	s.commit(next)
	return warnings
}

// Replace installs a record read back from a persisted representation.
// The lineage identifier is taken as is; a missing one is generated on the next
// merge, extraction or export.
func (s *Store) Replace(r Record) {
	s.commit(r.Normalized())
	s.extracted = r.HasDerived()
}

// EnsureLineage generates the lineage identifier if the record lacks one and
// returns it. It fails with ErrNoRecord on an empty store and with
// ErrMissingRequiredField when generation is impossible.
func (s *Store) EnsureLineage() (uuid.UUID, error) {
	if s.record == nil {
		return uuid.Nil, ErrNoRecord
	}
	if s.record.Lineage.LineageID != nil {
		return *s.record.Lineage.LineageID, nil
	}
	id, err := s.generate()
	if err != nil {
		return uuid.Nil, &Error{Kind: ErrMissingRequiredField, Key: "lineage.lineage_id", Err: err}
	}
	s.record.Lineage.LineageID = &id
	return id, nil
}

// Reset drops the record.
func (s *Store) Reset() {
	s.record = nil
	s.extracted = false
}

func (s *Store) working() Record {
	if s.record == nil {
		return Record{}
	}
	return s.record.Clone()
}

func (s *Store) commit(r Record) {
	s.record = &r
}

func (s *Store) ensureLineage(r *Record) []Warning {
	if r.Lineage.LineageID != nil {
		return nil
	}
	id, err := s.generate()
	if err != nil {
		s.logger.Warn("lineage id generation failed", "error", err)
		return []Warning{{
			Field:   "lineage.lineage_id",
			Message: "could not generate lineage id: " + err.Error(),
		}}
	}
	r.Lineage.LineageID = &id
	return nil
}
