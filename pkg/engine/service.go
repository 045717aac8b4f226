// Package engine exposes the metadata operations a host UI invokes: extract
// technical metrics from a scene, read external metadata, and persist the
// record to the properties store, a sidecar document or export extras.
//
// Every operation either completes or leaves the current record untouched.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/metro/pkg/adapters/fs"
	"github.com/aretw0/metro/pkg/adapters/props"
	"github.com/aretw0/metro/pkg/codec"
	"github.com/aretw0/metro/pkg/core"
	"github.com/aretw0/metro/pkg/extract"
	"github.com/aretw0/metro/pkg/scene"
	"github.com/aretw0/metro/pkg/schema"
)

// LegacyExtrasKey holds registry-shaped metadata written by earlier exporters.
// It carries no schema_version and goes through the mapper.
const LegacyExtrasKey = "metro_metadata"

// LegacyExtrasJSONKey is the JSON string backup of LegacyExtrasKey kept by the
// same exporters.
const LegacyExtrasJSONKey = LegacyExtrasKey + "_json"

// Config configures a Service. Zero values select the defaults.
type Config struct {
	Logger *slog.Logger
	// PropertyStore defaults to an in-memory store.
	PropertyStore core.PropertyStore
	// Namespace prefixes properties-store keys. Defaults to codec.DefaultNamespace.
	Namespace string
	// ExtrasKey is the reserved extras key. Defaults to codec.DefaultExtrasKey.
	ExtrasKey string
	// Aliases replaces the mapper's alias table.
	Aliases          *schema.AliasTable
	LineageGenerator core.LineageGenerator
}

// Report describes what a read or import did besides changing the record.
type Report struct {
	// Unrecognized lists the entries this operation could not map.
	Unrecognized []core.UnrecognizedField
	Warnings     []core.Warning
}

// Service drives one asset session. Calls are serialized.
type Service struct {
	mu sync.Mutex

	store     *core.Store
	extractor *extract.Extractor
	mapper    *schema.Mapper
	props     *codec.Properties
	extras    *codec.Extras
	backend   core.PropertyStore
	logger    *slog.Logger
}

// New creates a Service.
func New(config Config) *Service {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	backend := config.PropertyStore
	if backend == nil {
		backend = props.NewMemory(nil)
	}

	mapperOpts := []schema.MapperOption{schema.WithLogger(logger)}
	if config.Aliases != nil {
		mapperOpts = append(mapperOpts, schema.WithAliases(config.Aliases))
	}

	return &Service{
		store: core.NewStore(
			core.WithLineageGenerator(config.LineageGenerator),
			core.WithStoreLogger(logger),
		),
		extractor: extract.New(logger),
		mapper:    schema.NewMapper(mapperOpts...),
		props:     codec.NewProperties(config.Namespace),
		extras:    codec.NewExtras(config.ExtrasKey),
		backend:   backend,
		logger:    logger,
	}
}

// Close releases the property store when it holds a connection.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Record returns a copy of the current record.
func (s *Service) Record() (core.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Record()
}

// ExtractFromScene measures sc and overwrites the technical fields of the
// record, creating it if needed. Every other field is left alone.
func (s *Service) ExtractFromScene(sc scene.Scene) (core.TechnicalSnapshot, []core.Warning) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.extractor.Extract(sc)
	warnings := s.store.ApplySnapshot(snap)
	s.logger.Info("extracted technical metadata",
		"scene", sc.Name(),
		"triangles", snap.TriangleCount,
		"vertices", snap.VertexCount,
		"materials", snap.MaterialCount,
	)
	return snap, warnings
}

// ReadFromExternalSource maps an arbitrary metadata mapping into the record
// and returns the partial record it merged.
//
// A block under the reserved extras key is decoded as a sidecar document and
// takes precedence over loose keys. A LegacyExtrasKey (or
// LegacyExtrasJSONKey) block is mapped like loose keys. A malformed or future-versioned reserved block aborts the read.
func (s *Service) ReadFromExternalSource(raw map[string]any) (core.Record, Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report Report
	loose := raw

	var block *core.Record
	if _, ok := raw[s.extras.Key()]; ok {
		rec, rejected, err := s.extras.Import(raw)
		if err != nil {
			return core.Record{}, Report{}, fmt.Errorf("read %s block: %w", s.extras.Key(), err)
		}
		block = &rec
		report.Unrecognized = append(report.Unrecognized, rejected...)
		loose = s.extras.Strip(raw)
	}

	var partial core.Record
	if legacy, rest, ok := splitLegacy(loose); ok {
		rec, rejected := s.mapper.Map(legacy)
		overlay(&partial, rec)
		report.Unrecognized = append(report.Unrecognized, rejected...)
		loose = rest
	}

	rec, rejected := s.mapper.Map(loose)
	overlay(&partial, rec)
	report.Unrecognized = append(report.Unrecognized, rejected...)

	if block != nil {
		overlay(&partial, *block)
	}

	report.Warnings = s.store.Merge(partial)
	s.logger.Debug("read external metadata", "keys", len(raw), "unrecognized", len(report.Unrecognized))
	return partial, report, nil
}

// Edit applies a user edit. See core.Store.Edit.
func (s *Service) Edit(partial core.Record, overrideLineage bool) []core.Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Edit(partial, overrideLineage)
}

// Validate checks the registry field rules.
func (s *Service) Validate() ([]core.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Record()
	if !ok {
		return nil, core.ErrNoRecord
	}
	return core.Validate(rec), nil
}

// Reset drops the in-memory record. Persisted representations are untouched.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Reset()
}

// InjectIntoStore writes the record to the property store and returns the
// payload that was written.
func (s *Service) InjectIntoStore(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.exportable()
	if err != nil {
		return nil, err
	}
	payload, err := s.props.Export(rec)
	if err != nil {
		return nil, err
	}
	if err := s.backend.Save(ctx, s.props.Namespace(), payload); err != nil {
		return nil, fmt.Errorf("failed to save properties: %w", err)
	}
	s.logger.Info("injected metadata into property store", "namespace", s.props.Namespace(), "keys", len(payload))
	return payload, nil
}

// ImportFromStore replaces the record with the one held by the property
// store. A store without keys under the namespace fails with core.ErrMetadataAbsent.
func (s *Service) ImportFromStore(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.backend.Load(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load properties: %w", err)
	}
	prefix := s.props.Namespace() + "."
	found := false
	for k := range payload {
		if strings.HasPrefix(k, prefix) {
			found = true
			break
		}
	}
	if !found {
		return Report{}, &core.Error{Kind: core.ErrMetadataAbsent, Key: s.props.Namespace()}
	}

	rec, rejected, err := s.props.Import(payload)
	if err != nil {
		return Report{}, err
	}
	s.store.Replace(rec)
	return Report{Unrecognized: rejected}, nil
}

// ClearStore deletes every key of the namespace from the property store.
func (s *Service) ClearStore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.props.Namespace()); err != nil {
		return fmt.Errorf("failed to clear properties: %w", err)
	}
	s.logger.Info("cleared property store", "namespace", s.props.Namespace())
	return nil
}

// ExportSidecar returns the sidecar document of the record.
func (s *Service) ExportSidecar() (codec.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.exportable()
	if err != nil {
		return nil, err
	}
	return codec.Encode(rec), nil
}

// WriteSidecar writes the sidecar of asset next to it. ext selects the
// format (".json" or ".yaml"); an empty ext means JSON. It returns the path written.
func (s *Service) WriteSidecar(asset, ext string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.exportable()
	if err != nil {
		return "", err
	}
	path := fs.SidecarPath(asset, ext)
	data, err := codec.NewSidecar(codec.SerializerFor(path)).Export(rec)
	if err != nil {
		return "", err
	}
	if err := fs.WriteSidecar(path, data); err != nil {
		return "", err
	}
	s.logger.Info("wrote sidecar", "path", path)
	return path, nil
}

// ImportSidecar replaces the record with the one decoded from data. A nil
// serializer means JSON.
func (s *Service) ImportSidecar(data []byte, serializer codec.Serializer) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, rejected, err := codec.NewSidecar(serializer).Import(data)
	if err != nil {
		return Report{}, err
	}
	s.store.Replace(rec)
	return Report{Unrecognized: rejected}, nil
}

// LoadSidecar imports the sidecar at path. When path is an asset rather than
// a sidecar, the asset's sidecar is located first.
func (s *Service) LoadSidecar(path string) (Report, error) {
	if !fs.IsSidecar(path) {
		found, ok := fs.FindSidecar(path)
		if !ok {
			return Report{}, fmt.Errorf("no sidecar for %s: %w", path, os.ErrNotExist)
		}
		path = found
	}
	data, err := fs.ReadSidecar(path)
	if err != nil {
		return Report{}, err
	}
	report, err := s.ImportSidecar(data, codec.SerializerFor(path))
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", path, err)
	}
	return report, nil
}

// ExportExtras returns a copy of container with the record stored under the
// reserved extras key.
func (s *Service) ExportExtras(container map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.exportable()
	if err != nil {
		return nil, err
	}
	return s.extras.Export(rec, container), nil
}

// ImportExtras replaces the record with the block stored under the reserved
// extras key of container.
func (s *Service) ImportExtras(container map[string]any) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, rejected, err := s.extras.Import(container)
	if err != nil {
		return Report{}, err
	}
	s.store.Replace(rec)
	return Report{Unrecognized: rejected}, nil
}

// exportable returns the record once it carries a lineage identifier.
func (s *Service) exportable() (core.Record, error) {
	if _, err := s.store.EnsureLineage(); err != nil {
		return core.Record{}, err
	}
	rec, _ := s.store.Record()
	if err := core.ValidateForExport(rec); err != nil {
		return core.Record{}, err
	}
	return rec, nil
}

// splitLegacy separates the legacy block from the other keys. The block may
// be an object or a JSON string holding one. LegacyExtrasKey is preferred over
// LegacyExtrasJSONKey, and both are removed from rest.
func splitLegacy(raw map[string]any) (legacy, rest map[string]any, ok bool) {
	for _, key := range []string{LegacyExtrasKey, LegacyExtrasJSONKey} {
		v, present := raw[key]
		if !present {
			continue
		}
		if legacy = decodeLegacy(v); legacy != nil {
			break
		}
	}
	if legacy == nil {
		return nil, raw, false
	}

	rest = make(map[string]any, len(raw))
	for k, v := range raw {
		if k != LegacyExtrasKey && k != LegacyExtrasJSONKey {
			rest[k] = v
		}
	}
	return legacy, rest, true
}

func decodeLegacy(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case string:
		var legacy map[string]any
		dec := json.NewDecoder(strings.NewReader(t))
		dec.UseNumber()
		if err := dec.Decode(&legacy); err != nil {
			return nil
		}
		return legacy
	}
	return nil
}

// overlay copies every field set in src onto dst and merges unrecognized entries.
func overlay(dst *core.Record, src core.Record) {
	for _, f := range core.Fields() {
		f.Copy(dst, &src)
	}
	dst.SetUnrecognized(src.Unrecognized...)
}
