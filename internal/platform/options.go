package platform

import (
	"log/slog"

	"github.com/aretw0/metro/pkg/core"
	"github.com/aretw0/metro/pkg/schema"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterMemory = "memory"
	AdapterFile   = "file"
	AdapterRedis  = "redis"
	AdapterSQLite = "sqlite"
)

// options holds the internal configuration for the metro service.
type options struct {
	propertyStore core.PropertyStore
	logger        *slog.Logger
	adapter       string
	config        map[string]interface{}
	aliases       *schema.AliasTable
	lineage       core.LineageGenerator
}

// Option defines a functional option for configuring metro.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: AdapterMemory,
		config:  make(map[string]interface{}),
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPropertyStore allows injecting a custom property store (e.g. a host
// binding or a mock). If provided, the adapter selection is skipped.
func WithPropertyStore(store core.PropertyStore) Option {
	return func(o *options) {
		o.propertyStore = store
	}
}

// WithAdapter selects the property store backend by name: "memory" (the
// default), "file", "redis" or "sqlite".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithStorePath sets the JSON file of the "file" adapter.
// Defaults to "<asset stem>.metro.props.json" next to the asset.
func WithStorePath(path string) Option {
	return func(o *options) {
		o.config["store_path"] = path
	}
}

// WithRedis configures the "redis" adapter. An empty key derives one from
// the asset path.
func WithRedis(addr, password string, db int, key string) Option {
	return func(o *options) {
		o.config["redis_addr"] = addr
		o.config["redis_password"] = password
		o.config["redis_db"] = db
		o.config["redis_key"] = key
	}
}

// WithSQLite configures the "sqlite" adapter. Rows are scoped by asset path.
func WithSQLite(dsn, table string) Option {
	return func(o *options) {
		o.config["sqlite_dsn"] = dsn
		o.config["sqlite_table"] = table
	}
}

// WithNamespace sets the properties-store key namespace. Defaults to "metro".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.config["namespace"] = ns
	}
}

// WithExtrasKey sets the reserved key of the extras block. Defaults to "METRO".
func WithExtrasKey(key string) Option {
	return func(o *options) {
		o.config["extras_key"] = key
	}
}

// WithAliases replaces the schema mapper's alias table.
func WithAliases(t *schema.AliasTable) Option {
	return func(o *options) {
		o.aliases = t
	}
}

// WithLineageGenerator replaces the lineage identifier generator (useful for
// deterministic tests).
func WithLineageGenerator(fn core.LineageGenerator) Option {
	return func(o *options) {
		o.lineage = fn
	}
}
