package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Remote sink drivers.
const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultUserAgent identifies the fetcher as a desktop browser. Several
// government portals refuse requests without one.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds the full application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Remote   RemoteConfig   `yaml:"remote" mapstructure:"remote"`
	Fallback FallbackConfig `yaml:"fallback" mapstructure:"fallback"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SourceConfig configures the upstream web sources.
type SourceConfig struct {
	NHAIURL              string `yaml:"nhai_url" mapstructure:"nhai_url"`
	GazetteURL           string `yaml:"gazette_url" mapstructure:"gazette_url"`
	CourtsURL            string `yaml:"courts_url" mapstructure:"courts_url"`
	CourtsQuery          string `yaml:"courts_query" mapstructure:"courts_query"`
	NewsURL              string `yaml:"news_url" mapstructure:"news_url"`
	NewsTOIURL           string `yaml:"news_toi_url" mapstructure:"news_toi_url"`
	TableSelector        string `yaml:"table_selector" mapstructure:"table_selector"`
	UserAgent            string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs          int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	FallbackOnFetchError bool   `yaml:"fallback_on_fetch_error" mapstructure:"fallback_on_fetch_error"`
	DownloadPDFs         bool   `yaml:"download_pdfs" mapstructure:"download_pdfs"`
}

// Timeout returns the per-request fetch timeout.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// GeocodeConfig configures place-name lookups.
type GeocodeConfig struct {
	Provider     string `yaml:"provider" mapstructure:"provider"`
	NominatimURL string `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	GoogleAPIKey string `yaml:"google_api_key" mapstructure:"google_api_key"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	Country      string `yaml:"country" mapstructure:"country"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DelayMS      int    `yaml:"delay_ms" mapstructure:"delay_ms"`
	Disabled     bool   `yaml:"disabled" mapstructure:"disabled"`
}

// Timeout returns the per-lookup timeout.
func (g GeocodeConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// Delay returns the minimum spacing between lookups.
func (g GeocodeConfig) Delay() time.Duration {
	return time.Duration(g.DelayMS) * time.Millisecond
}

// OutputConfig configures the local file sinks.
type OutputConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	WriteSQL  bool   `yaml:"write_sql" mapstructure:"write_sql"`
	WriteXLSX bool   `yaml:"write_xlsx" mapstructure:"write_xlsx"`
}

// RemoteConfig configures the remote table sink.
type RemoteConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	URL         string `yaml:"url" mapstructure:"url"`
	Key         string `yaml:"key" mapstructure:"key"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Table       string `yaml:"table" mapstructure:"table"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	// RetryAttempts bounds calls per record when the remote answers with a
	// transient failure (timeouts, 429, 5xx). 1 disables retries.
	RetryAttempts  int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMS int `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
}

// Enabled reports whether the selected driver has what it needs to connect.
// A disabled remote only turns off the remote sink; local files are still
// written.
func (r RemoteConfig) Enabled() bool {
	switch r.Driver {
	case DriverREST:
		return r.URL != "" && r.Key != ""
	case DriverPostgres:
		return r.DatabaseURL != ""
	case DriverSQLite:
		return r.SQLitePath != ""
	default:
		return false
	}
}

// FallbackConfig configures the curated fallback list.
type FallbackConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// ScrapeConfig configures the scraper engine.
type ScrapeConfig struct {
	Concurrency int      `yaml:"concurrency" mapstructure:"concurrency"`
	Sources     []string `yaml:"sources" mapstructure:"sources"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the scrape trigger server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and the environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LARAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Hosted-database credentials keep their conventional names.
	_ = v.BindEnv("remote.url", "LARAS_REMOTE_URL", "SUPABASE_URL")
	_ = v.BindEnv("remote.key", "LARAS_REMOTE_KEY", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_ANON_KEY")
	_ = v.BindEnv("remote.database_url", "LARAS_REMOTE_DATABASE_URL", "DATABASE_URL")

	// Defaults
	v.SetDefault("source.nhai_url", "https://nhai.gov.in/project-information.htm")
	v.SetDefault("source.gazette_url", "https://egazette.gov.in/Search.aspx")
	v.SetDefault("source.courts_url", "https://indiankanoon.org/search/")
	v.SetDefault("source.courts_query", "land acquisition infrastructure")
	v.SetDefault("source.news_url", "https://pib.gov.in/allRel.aspx")
	v.SetDefault("source.news_toi_url", "https://timesofindia.indiatimes.com/business/infrastructure")
	v.SetDefault("source.table_selector", "table.project-table")
	v.SetDefault("source.user_agent", DefaultUserAgent)
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.fallback_on_fetch_error", true)
	v.SetDefault("source.download_pdfs", false)
	v.SetDefault("geocode.provider", "nominatim")
	v.SetDefault("geocode.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.google_api_key", "")
	v.SetDefault("geocode.user_agent", "laras_scraper_v1")
	v.SetDefault("geocode.country", "India")
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.delay_ms", 1000)
	v.SetDefault("geocode.disabled", false)
	v.SetDefault("output.dir", "data")
	v.SetDefault("output.write_sql", true)
	v.SetDefault("output.write_xlsx", false)
	v.SetDefault("remote.driver", DriverREST)
	v.SetDefault("remote.url", "")
	v.SetDefault("remote.key", "")
	v.SetDefault("remote.database_url", "")
	v.SetDefault("remote.sqlite_path", "")
	v.SetDefault("remote.table", "infrastructure_projects")
	v.SetDefault("remote.timeout_secs", 30)
	v.SetDefault("remote.retry_attempts", 3)
	v.SetDefault("remote.retry_backoff_ms", 500)
	v.SetDefault("fallback.file", "")
	v.SetDefault("scrape.concurrency", 1)
	v.SetDefault("scrape.sources", []string{"nhai"})
	v.SetDefault("store.path", "laras.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a given command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Scrape.Concurrency < 1 || c.Scrape.Concurrency > 8 {
		errs = append(errs, "scrape.concurrency must be between 1 and 8")
	}
	if c.Geocode.DelayMS < 0 {
		errs = append(errs, "geocode.delay_ms must be >= 0")
	}
	if c.Remote.RetryAttempts < 0 || c.Remote.RetryBackoffMS < 0 {
		errs = append(errs, "remote.retry_attempts and remote.retry_backoff_ms must be >= 0")
	}

	switch mode {
	case "scrape":
		if c.Source.TimeoutSecs <= 0 {
			errs = append(errs, "source.timeout_secs must be > 0")
		}
		if c.Output.Dir == "" {
			errs = append(errs, "output.dir is required")
		}
	case "remote":
		switch c.Remote.Driver {
		case DriverREST, DriverPostgres, DriverSQLite:
		default:
			errs = append(errs, fmt.Sprintf("remote.driver %q is not one of rest, postgres, sqlite", c.Remote.Driver))
		}
		if !c.Remote.Enabled() {
			errs = append(errs, fmt.Sprintf("remote credentials missing for driver %q", c.Remote.Driver))
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
