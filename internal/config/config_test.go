package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	// Change to temp dir so no config.yaml or .env is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "EGR", cfg.Models.Left)
	assert.Equal(t, "LCDM", cfg.Models.Right)
	assert.Equal(t, "egr_out/tables/summary.csv", cfg.Inputs.LeftSummary)
	assert.Equal(t, "lcdm_out/tables/summary.csv", cfg.Inputs.RightSummary)
	assert.Equal(t, "bakeoff.csv", cfg.Inputs.Bakeoff)
	assert.Equal(t, "out/tables/wilsons_fixedmu.json", cfg.Inputs.WilsonsJSON)
	assert.False(t, cfg.Inputs.AllStatus)
	assert.Equal(t, "bakeoff_dedup.csv", cfg.Output.Comparison)
	assert.Equal(t, "out/tables/report", cfg.Output.ReportDir)
	assert.Equal(t, "out/tables/report/strata.csv", cfg.Output.Strata)
	assert.Equal(t, 1500, cfg.Bootstrap.Resamples)
	assert.InDelta(t, 0.95, cfg.Bootstrap.Confidence, 1e-12)
	assert.Equal(t, uint64(42), cfg.Bootstrap.Seed)
	assert.Equal(t, []string{"n_outer", "r2_outer", "R_max", "finite_outer"}, cfg.Stratify.Covariates)
	assert.Equal(t, 10, cfg.SignedRank.MinN)
	assert.Equal(t, 50, cfg.SignedRank.ExactMaxN)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "bakeoff.db", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(4), cfg.Store.MaxConns)
	assert.Empty(t, cfg.Metrics.Textfile)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
models:
  left: MOND
log:
  level: debug
  format: console
bootstrap:
  resamples: 4000
  seed: 7
stratify:
  covariates: [R_max]
store:
  driver: postgres
  database_url: postgres://localhost/bakeoff
  schema: astro
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "MOND", cfg.Models.Left)
	assert.Equal(t, "LCDM", cfg.Models.Right, "defaults still apply for unset values")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 4000, cfg.Bootstrap.Resamples)
	assert.Equal(t, uint64(7), cfg.Bootstrap.Seed)
	assert.Equal(t, []string{"R_max"}, cfg.Stratify.Covariates)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "astro", cfg.Store.Schema)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("BAKEOFF_STORE_DRIVER", "postgres")
	t.Setenv("BAKEOFF_LOG_LEVEL", "warn")
	t.Setenv("BAKEOFF_BOOTSTRAP_RESAMPLES", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 250, cfg.Bootstrap.Resamples)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("BAKEOFF_METRICS_TEXTFILE=/var/lib/node_exporter/bakeoff.prom\nBAKEOFF_MODELS_RIGHT=NFW\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("BAKEOFF_METRICS_TEXTFILE") //nolint:errcheck
		os.Unsetenv("BAKEOFF_MODELS_RIGHT")     //nolint:errcheck
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/node_exporter/bakeoff.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "NFW", cfg.Models.Right)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
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
	cfg.Models.Left = "EGR"
	cfg.Models.Right = "LCDM"
	cfg.Bootstrap.Resamples = 1500
	cfg.Bootstrap.Confidence = 0.95
	cfg.SignedRank.MinN = 10
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "bakeoff.db"
	return cfg
}

func TestValidate_AllModes(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"compare", "save", "evidence", "hl", "stratify", "report", "runs"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidate_Models(t *testing.T) {
	cfg := validDefaults()
	cfg.Models.Right = "EGR"
	err := cfg.Validate("evidence")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")

	cfg.Models.Left = ""
	err = cfg.Validate("evidence")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "models.left and models.right are required")
}

func TestValidate_Bootstrap(t *testing.T) {
	cfg := validDefaults()
	cfg.Bootstrap.Resamples = 0
	cfg.Bootstrap.Confidence = 1
	err := cfg.Validate("hl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap.resamples must be >= 1")
	assert.Contains(t, err.Error(), "bootstrap.confidence must be in (0, 1)")

	assert.NoError(t, cfg.Validate("stratify"), "bootstrap is not checked outside hl/report")
}

func TestValidate_SignedRank(t *testing.T) {
	cfg := validDefaults()
	cfg.SignedRank.MinN = 0
	err := cfg.Validate("report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signedrank.min_n")
	assert.NoError(t, cfg.Validate("hl"))
}

func TestValidate_Store(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"
	assert.NoError(t, cfg.Validate("compare"), "store is only checked when saving")

	err := cfg.Validate("save")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")

	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""
	err = cfg.Validate("runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.NotContains(t, err.Error(), "store.driver")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
