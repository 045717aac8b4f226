package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/metro/pkg/adapters/fs"
	"github.com/aretw0/metro/pkg/adapters/props"
	"github.com/aretw0/metro/pkg/core"
)

// Init opens the property store for asset based on the provided configuration.
// The asset path scopes the store: it names the default file of the "file"
// adapter, the default hash of the "redis" adapter and the row scope of the
// "sqlite" adapter.
//
// Stores holding a connection implement io.Closer.
func Init(ctx context.Context, asset string, opts ...Option) (core.PropertyStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	// 1. Check for injected store
	if o.propertyStore != nil {
		return o.propertyStore, nil
	}

	// 2. Initialize based on Adapter
	switch strings.ToLower(o.adapter) {
	case "", AdapterMemory:
		return props.NewMemory(nil), nil
	case AdapterFile:
		return initFile(asset, o), nil
	case AdapterRedis:
		return initRedis(ctx, asset, o)
	case AdapterSQLite:
		return initSQLite(ctx, asset, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// initFile handles the initialization logic for the JSON file adapter.
func initFile(asset string, o *options) core.PropertyStore {
	path, _ := o.config["store_path"].(string)
	if path == "" {
		path = DefaultStorePath(asset)
	}
	if o.logger != nil {
		o.logger.Debug("using file property store", "path", path)
	}
	return props.NewFile(path, o.logger)
}

// DefaultStorePath derives the file store of an asset: "scan.glb" ->
// "scan.metro.props.json". Without an asset it is "metro.props.json".
func DefaultStorePath(asset string) string {
	if asset == "" {
		return strings.TrimPrefix(fs.PropsFileSuffix, ".")
	}
	return strings.TrimSuffix(asset, filepath.Ext(asset)) + fs.PropsFileSuffix
}

func initRedis(ctx context.Context, asset string, o *options) (core.PropertyStore, error) {
	addr, _ := o.config["redis_addr"].(string)
	if addr == "" {
		addr = "localhost:6379"
	}
	config := props.DefaultRedisConfig(addr)
	config.Password, _ = o.config["redis_password"].(string)
	config.DB, _ = o.config["redis_db"].(int)
	if key, _ := o.config["redis_key"].(string); key != "" {
		config.Key = key
	} else if asset != "" {
		config.Key = props.DefaultRedisKey + ":" + filepath.ToSlash(asset)
	}

	store := props.NewRedis(config)
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	if o.logger != nil {
		o.logger.Debug("using redis property store", "addr", addr, "key", store.Key())
	}
	return store, nil
}

func initSQLite(ctx context.Context, asset string, o *options) (core.PropertyStore, error) {
	dsn, _ := o.config["sqlite_dsn"].(string)
	if dsn == "" {
		dsn = "metro.db"
	}
	table, _ := o.config["sqlite_table"].(string)

	db, err := props.OpenSQLite(dsn)
	if err != nil {
		return nil, err
	}
	store, err := props.NewSQLite(ctx, props.SQLiteConfig{DB: db, TableName: table, Asset: filepath.ToSlash(asset)})
	if err != nil {
		db.Close()
		return nil, err
	}
	if o.logger != nil {
		o.logger.Debug("using sqlite property store", "dsn", dsn, "asset", asset)
	}
	return store, nil
}
