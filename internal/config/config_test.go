package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "poverty-mapper", cfg.Dataset.Project)
	assert.Equal(t, "DHS_CLUSTERS", cfg.Dataset.Table)
	assert.Equal(t, []string{"lat", "lon", "year", "country", "GID_1", "wealthpooled"}, cfg.Dataset.Columns)
	assert.True(t, cfg.Dataset.HasHeader)
	assert.Equal(t, filepath.Join("raw_data", "DHS_CLUSTERS.csv"), cfg.Dataset.CachePath())
	assert.Equal(t, "postgres", cfg.Warehouse.Driver)
	assert.Equal(t, 60, cfg.Warehouse.TimeoutSecs)
	assert.InDelta(t, 67200.0, cfg.Tile.SizeMeters, 0)
	assert.Equal(t, 8, cfg.Tile.Concurrency)
	assert.Equal(t, []string{"purple", "white", "orange"}, cfg.Colormap.Colors)
	assert.Equal(t, "Wealthpooled", cfg.Colormap.Caption)
	assert.InDelta(t, 0.8, cfg.Colormap.FillOpacity, 0.001)
	assert.Equal(t, 2015, cfg.Selection.Year)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
dataset:
  cache_dir: /var/cache/mapper
  has_header: false
warehouse:
  driver: sqlite
  database_url: /data/clusters.db
tile:
  size_meters: 10000
selection:
  year: 2010
  country: angola
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/mapper", cfg.Dataset.CacheDir)
	assert.False(t, cfg.Dataset.HasHeader)
	assert.Equal(t, "sqlite", cfg.Warehouse.Driver)
	assert.Equal(t, "/data/clusters.db", cfg.Warehouse.DatabaseURL)
	assert.InDelta(t, 10000.0, cfg.Tile.SizeMeters, 0)
	assert.Equal(t, 2010, cfg.Selection.Year)
	assert.Equal(t, "angola", cfg.Selection.Country)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, "DHS_CLUSTERS", cfg.Dataset.Table)
	assert.Equal(t, 8, cfg.Tile.Concurrency)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
warehouse:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("MAPPER_WAREHOUSE_DRIVER", "http")
	t.Setenv("MAPPER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Warehouse.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("MAPPER_SERVER_PORT", "3000")
	t.Setenv("MAPPER_TILE_SIZE_METERS", "1000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.InDelta(t, 1000.0, cfg.Tile.SizeMeters, 0)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("tile: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestCachePath_FallsBackToTable(t *testing.T) {
	d := DatasetConfig{CacheDir: "cache", Table: "CLUSTERS_V2"}
	assert.Equal(t, filepath.Join("cache", "CLUSTERS_V2.csv"), d.CachePath())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Dataset.CacheDir = "raw_data"
	cfg.Tile.SizeMeters = 67200
	cfg.Colormap.Colors = []string{"purple", "white", "orange"}
	cfg.Warehouse.Driver = "postgres"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateRender(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("render"))

	cfg.Tile.SizeMeters = 0
	cfg.Colormap.Colors = []string{"white"}
	err := cfg.Validate("render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tile.size_meters must be > 0")
	assert.Contains(t, err.Error(), "colormap.colors needs at least 2 colors")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateSeed(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse.database_url is required")

	cfg.Warehouse.DatabaseURL = "postgres://localhost/survey"
	assert.NoError(t, cfg.Validate("seed"))

	cfg.Warehouse.Driver = "sqlite"
	err = cfg.Validate("seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires driver postgres")
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Warehouse.Driver = "bigquery"
	err := cfg.Validate("seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bigquery"`)
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
