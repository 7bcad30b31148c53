package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func clearRemoteEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_ANON_KEY", "DATABASE_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	clearRemoteEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://nhai.gov.in/project-information.htm", cfg.Source.NHAIURL)
	assert.Equal(t, "table.project-table", cfg.Source.TableSelector)
	assert.Equal(t, DefaultUserAgent, cfg.Source.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout())
	assert.True(t, cfg.Source.FallbackOnFetchError)
	assert.Equal(t, "nominatim", cfg.Geocode.Provider)
	assert.Equal(t, "India", cfg.Geocode.Country)
	assert.Equal(t, 10*time.Second, cfg.Geocode.Timeout())
	assert.Equal(t, time.Second, cfg.Geocode.Delay())
	assert.Equal(t, "laras_scraper_v1", cfg.Geocode.UserAgent)
	assert.Equal(t, "data", cfg.Output.Dir)
	assert.Equal(t, DriverREST, cfg.Remote.Driver)
	assert.Equal(t, "infrastructure_projects", cfg.Remote.Table)
	assert.Equal(t, 3, cfg.Remote.RetryAttempts)
	assert.Equal(t, 500, cfg.Remote.RetryBackoffMS)
	assert.False(t, cfg.Remote.Enabled())
	assert.Equal(t, 1, cfg.Scrape.Concurrency)
	assert.Equal(t, []string{"nhai"}, cfg.Scrape.Sources)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)
	clearRemoteEnv(t)

	yaml := `
source:
  fallback_on_fetch_error: false
geocode:
  country: Bharat
  delay_ms: 250
remote:
  driver: sqlite
  sqlite_path: mirror.db
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Source.FallbackOnFetchError)
	assert.Equal(t, "Bharat", cfg.Geocode.Country)
	assert.Equal(t, 250*time.Millisecond, cfg.Geocode.Delay())
	assert.Equal(t, DriverSQLite, cfg.Remote.Driver)
	assert.True(t, cfg.Remote.Enabled())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Geocode.TimeoutSecs)
}

func TestLoadSupabaseEnv(t *testing.T) {
	chdirTemp(t)
	clearRemoteEnv(t)

	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://abc.supabase.co", cfg.Remote.URL)
	assert.Equal(t, "anon", cfg.Remote.Key)
	assert.True(t, cfg.Remote.Enabled())
}

func TestLoadServiceRoleKeyPreferred(t *testing.T) {
	chdirTemp(t)
	clearRemoteEnv(t)

	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "service", cfg.Remote.Key)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	clearRemoteEnv(t)

	yaml := `
output:
  dir: from-file
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LARAS_OUTPUT_DIR", "from-env")
	t.Setenv("LARAS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Output.Dir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestRemoteEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  RemoteConfig
		want bool
	}{
		{"rest complete", RemoteConfig{Driver: DriverREST, URL: "u", Key: "k"}, true},
		{"rest missing key", RemoteConfig{Driver: DriverREST, URL: "u"}, false},
		{"rest missing url", RemoteConfig{Driver: DriverREST, Key: "k"}, false},
		{"postgres", RemoteConfig{Driver: DriverPostgres, DatabaseURL: "postgres://x"}, true},
		{"postgres empty", RemoteConfig{Driver: DriverPostgres}, false},
		{"sqlite", RemoteConfig{Driver: DriverSQLite, SQLitePath: "x.db"}, true},
		{"unknown", RemoteConfig{Driver: "mongo", URL: "u", Key: "k"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Enabled())
		})
	}
}

func validDefaults() *Config {
	cfg := &Config{}
	cfg.Scrape.Concurrency = 1
	cfg.Source.TimeoutSecs = 30
	cfg.Output.Dir = "data"
	cfg.Server.Port = 8080
	cfg.Geocode.DelayMS = 1000
	return cfg
}

func TestValidateScrape(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("scrape"))

	cfg.Output.Dir = ""
	err := cfg.Validate("scrape")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "output.dir is required")
}

func TestValidateRemote(t *testing.T) {
	cfg := validDefaults()
	cfg.Remote.Driver = DriverREST

	err := cfg.Validate("remote")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "remote credentials missing")

	cfg.Remote.URL = "https://abc.supabase.co"
	cfg.Remote.Key = "k"
	assert.NoError(t, cfg.Validate("remote"))

	cfg.Remote.Driver = "mongo"
	err = cfg.Validate("remote")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "is not one of")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Scrape.Concurrency = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scrape.concurrency must be between 1 and 8")

	cfg.Scrape.Concurrency = 8
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
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
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
