package metro

import (
	"context"
	"log/slog"

	"github.com/aretw0/metro/internal/platform"
	"github.com/aretw0/metro/pkg/core"
	"github.com/aretw0/metro/pkg/engine"
	"github.com/aretw0/metro/pkg/schema"
)

// --- Types ---

// Service is the metadata engine of one asset session.
type Service = engine.Service

// Record is the canonical metadata record.
type Record = core.Record

// Config is the file and environment configuration.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring metro.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithPropertyStore allows injecting a custom property store.
func WithPropertyStore(store core.PropertyStore) Option {
	return platform.WithPropertyStore(store)
}

// WithAdapter selects the property store backend by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithStorePath sets the JSON file of the "file" adapter.
func WithStorePath(path string) Option {
	return platform.WithStorePath(path)
}

// WithRedis configures the "redis" adapter.
func WithRedis(addr, password string, db int, key string) Option {
	return platform.WithRedis(addr, password, db, key)
}

// WithSQLite configures the "sqlite" adapter.
func WithSQLite(dsn, table string) Option {
	return platform.WithSQLite(dsn, table)
}

// WithNamespace sets the properties-store key namespace.
func WithNamespace(ns string) Option {
	return platform.WithNamespace(ns)
}

// WithExtrasKey sets the reserved key of the extras block.
func WithExtrasKey(key string) Option {
	return platform.WithExtrasKey(key)
}

// WithAliases replaces the schema mapper's alias table.
func WithAliases(t *schema.AliasTable) Option {
	return platform.WithAliases(t)
}

// WithLineageGenerator replaces the lineage identifier generator.
func WithLineageGenerator(fn core.LineageGenerator) Option {
	return platform.WithLineageGenerator(fn)
}

// --- Factory ---

// New creates a metadata service for the asset at path.
func New(ctx context.Context, asset string, opts ...Option) (*Service, error) {
	return platform.New(ctx, asset, opts...)
}

// Open opens the property store for asset without wiring a service.
func Open(ctx context.Context, asset string, opts ...Option) (core.PropertyStore, error) {
	return platform.Init(ctx, asset, opts...)
}

// LoadConfig reads metro.yaml and METRO_* environment variables.
func LoadConfig(file string) (*Config, error) {
	return platform.LoadConfig(file)
}

// FindProjectRoot recursively looks upwards for a metro.yaml or .git.
func FindProjectRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
