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

	assert.Equal(t, "dominion_service_area.geojson", cfg.Inputs.Boundary)
	assert.Equal(t, "virginia_opportunity_zones_vedp.geojson", cfg.Inputs.OpportunityZones)
	assert.Equal(t, "virginia_qct_2025.geojson", cfg.Inputs.QCT)
	assert.Equal(t, "batch_extracted_streets.geojson", cfg.Inputs.Streets)
	assert.Equal(t, "verify_official_zones.html", cfg.Output.HTML)
	assert.Equal(t, 8, cfg.Map.Zoom)
	assert.InDelta(t, 37.5, cfg.Map.CenterLat, 0.001)
	assert.InDelta(t, -79.0, cfg.Map.CenterLng, 0.001)
	assert.False(t, cfg.Clip.Streets)
	assert.InDelta(t, 0.002, cfg.Simplify.Tolerance, 0.0001)
	assert.Equal(t, []string{"NAME", "GEOID", "COUNTY_NAME"}, cfg.Simplify.KeepProps)
	assert.Equal(t, "51", cfg.TigerWeb.StateFIPS)
	assert.Equal(t, 30, cfg.TigerWeb.TimeoutSecs)
	assert.Equal(t, 4, cfg.TigerWeb.Concurrency)
	assert.Equal(t, "fieldmap_cache.db", cfg.Cache.Path)
	assert.Equal(t, 168, cfg.Cache.TTLHours)
	assert.Equal(t, "public.market_layers", cfg.Store.Table)
	assert.Equal(t, 8080, cfg.Serve.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
inputs:
  boundary: boundary.geojson
output:
  html: out.html
map:
  zoom: 10
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "boundary.geojson", cfg.Inputs.Boundary)
	assert.Equal(t, "out.html", cfg.Output.HTML)
	assert.Equal(t, 10, cfg.Map.Zoom)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, "51", cfg.TigerWeb.StateFIPS)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
serve:
  port: 9000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("FIELDMAP_LOG_LEVEL", "warn")
	t.Setenv("FIELDMAP_SERVE_PORT", "9191")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 9191, cfg.Serve.Port)
}

func TestValidateBuild(t *testing.T) {
	cfg := &Config{}
	cfg.Inputs.Boundary = "b.geojson"
	cfg.Output.HTML = "out.html"
	assert.NoError(t, cfg.Validate("build"))

	cfg.Output.HTML = ""
	err := cfg.Validate("build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.html is required")
}

func TestValidateTracts(t *testing.T) {
	cfg := &Config{}
	cfg.TigerWeb.BaseURL = "https://tigerweb.geo.census.gov"
	cfg.TigerWeb.StateFIPS = "51"
	assert.NoError(t, cfg.Validate("tracts"))

	cfg.TigerWeb.StateFIPS = "051"
	err := cfg.Validate("tracts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state_fips")
}

func TestValidateLoad(t *testing.T) {
	cfg := &Config{}
	cfg.Store.Table = "public.market_layers"

	err := cfg.Validate("load")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/fieldmap"
	assert.NoError(t, cfg.Validate("load"))
}

func TestValidateServe(t *testing.T) {
	cfg := &Config{}
	cfg.Serve.Port = 8080
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Serve.Port = 0
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serve.port must be > 0")
}

func TestValidateNegativeTolerance(t *testing.T) {
	cfg := &Config{}
	cfg.Serve.Port = 8080
	cfg.Simplify.Tolerance = -1

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simplify.tolerance")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
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
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
