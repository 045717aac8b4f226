package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/metro/pkg/schema"
	"github.com/spf13/viper"
)

// ConfigName is the base name of the configuration file (metro.yaml).
const ConfigName = "metro"

// Config represents the metro configuration.
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Schema SchemaConfig `mapstructure:"schema"`
	Log    LogConfig    `mapstructure:"log"`
}

// StoreConfig selects and configures the property store backend.
type StoreConfig struct {
	Adapter string       `mapstructure:"adapter"`
	Path    string       `mapstructure:"path"`
	Redis   RedisConfig  `mapstructure:"redis"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
}

// RedisConfig represents redis backend configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// SQLiteConfig represents sqlite backend configuration.
type SQLiteConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// SchemaConfig represents schema naming configuration.
type SchemaConfig struct {
	Namespace string `mapstructure:"namespace"`
	ExtrasKey string `mapstructure:"extras_key"`
	// Aliases adds spellings after the built-in ones.
	Aliases []AliasConfig `mapstructure:"aliases"`
}

// AliasConfig lists extra external spellings of one canonical field:
//
//	aliases:
//	  - field: core.name
//	    keys: [asset_title]
type AliasConfig struct {
	Field string   `mapstructure:"field"`
	Keys  []string `mapstructure:"keys"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig loads the configuration. An explicit file must exist; otherwise
// metro.yaml is searched in the working directory and the project root, and
// defaults apply when none is found. METRO_* environment variables override
// file values (METRO_STORE_ADAPTER, METRO_STORE_REDIS_ADDR, ...).
func LoadConfig(file string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("store.adapter", AdapterMemory)
	v.SetDefault("store.path", "")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key", "")
	v.SetDefault("store.sqlite.dsn", "metro.db")
	v.SetDefault("store.sqlite.table", "metro_properties")
	v.SetDefault("schema.namespace", "metro")
	v.SetDefault("schema.extras_key", "METRO")
	v.SetDefault("log.level", "info")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if wd, err := os.Getwd(); err == nil {
			if root, err := FindRoot(wd); err == nil {
				v.AddConfigPath(root)
			}
		}
	}

	// Enable environment variable support
	v.SetEnvPrefix("METRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch strings.ToLower(cfg.Store.Adapter) {
	case AdapterMemory, AdapterFile, AdapterRedis, AdapterSQLite:
	default:
		return fmt.Errorf("store.adapter must be one of memory, file, redis, sqlite; got %q", cfg.Store.Adapter)
	}
	if strings.TrimSpace(cfg.Schema.Namespace) == "" || strings.Contains(cfg.Schema.Namespace, ".") {
		return fmt.Errorf("schema.namespace must be a non-empty name without dots, got %q", cfg.Schema.Namespace)
	}
	if strings.TrimSpace(cfg.Schema.ExtrasKey) == "" {
		return fmt.Errorf("schema.extras_key must not be empty")
	}
	if _, err := cfg.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Options converts the configuration into service options.
func (c *Config) Options() ([]Option, error) {
	opts := []Option{
		WithAdapter(c.Store.Adapter),
		WithNamespace(c.Schema.Namespace),
		WithExtrasKey(c.Schema.ExtrasKey),
		WithRedis(c.Store.Redis.Addr, c.Store.Redis.Password, c.Store.Redis.DB, c.Store.Redis.Key),
		WithSQLite(c.Store.SQLite.DSN, c.Store.SQLite.Table),
	}
	if c.Store.Path != "" {
		opts = append(opts, WithStorePath(c.Store.Path))
	}
	if len(c.Schema.Aliases) > 0 {
		extra := make(map[string][]string, len(c.Schema.Aliases))
		for _, a := range c.Schema.Aliases {
			extra[a.Field] = append(extra[a.Field], a.Keys...)
		}
		table, err := schema.DefaultAliasTableWith(extra)
		if err != nil {
			return nil, fmt.Errorf("schema.aliases: %w", err)
		}
		opts = append(opts, WithAliases(table))
	}
	return opts, nil
}
