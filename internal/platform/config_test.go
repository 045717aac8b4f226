package platform_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/metro/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metro.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := platform.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Adapter)
	assert.Equal(t, "metro", cfg.Schema.Namespace)
	assert.Equal(t, "METRO", cfg.Schema.ExtrasKey)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
store:
  adapter: sqlite
  sqlite:
    dsn: assets.db
schema:
  namespace: dtrip
  aliases:
    - field: core.name
      keys: [asset_title]
log:
  level: debug
`)

	cfg, err := platform.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Adapter)
	assert.Equal(t, "assets.db", cfg.Store.SQLite.DSN)
	assert.Equal(t, "metro_properties", cfg.Store.SQLite.Table)
	assert.Equal(t, "dtrip", cfg.Schema.Namespace)
	require.Len(t, cfg.Schema.Aliases, 1)
	assert.Equal(t, []string{"asset_title"}, cfg.Schema.Aliases[0].Keys)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "store:\n  adapter: sqlite\n")
	t.Setenv("METRO_STORE_ADAPTER", "redis")
	t.Setenv("METRO_STORE_REDIS_ADDR", "cache:6380")

	cfg, err := platform.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Store.Adapter)
	assert.Equal(t, "cache:6380", cfg.Store.Redis.Addr)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Unknown Adapter", "store:\n  adapter: s3\n"},
		{"Dotted Namespace", "schema:\n  namespace: a.b\n"},
		{"Empty Extras Key", "schema:\n  extras_key: ''\n"},
		{"Bad Level", "log:\n  level: loud\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := platform.LoadConfig(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := platform.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestConfig_Options(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
store:
  adapter: file
  path: `+filepath.Join(dir, "props.json")+`
schema:
  namespace: dtrip
  aliases:
    - field: core.name
      keys: [asset_title]
`)
	cfg, err := platform.LoadConfig(path)
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)

	ctx := context.Background()
	svc, err := platform.New(ctx, filepath.Join(dir, "scan.glb"), opts...)
	require.NoError(t, err)

	_, report, err := svc.ReadFromExternalSource(map[string]any{"asset_title": "Configured"})
	require.NoError(t, err)
	assert.Empty(t, report.Unrecognized)

	payload, err := svc.InjectIntoStore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Configured", payload["dtrip.core.name"])

	_, err = os.Stat(filepath.Join(dir, "props.json"))
	assert.NoError(t, err)

	bad := &platform.Config{Schema: platform.SchemaConfig{Aliases: []platform.AliasConfig{{Field: "core.nope", Keys: []string{"x"}}}}}
	_, err = bad.Options()
	assert.Error(t, err)
}
