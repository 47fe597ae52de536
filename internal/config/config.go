// Package config loads weather lookup settings from file and environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/weather-lookup/internal/format"
)

// EnvPrefix is prepended to every environment override, e.g. WEATHER_POOL_WORKERS.
const EnvPrefix = "WEATHER"

// Config is the root configuration structure.
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Search   SearchConfig   `mapstructure:"search"`
	Query    QueryConfig    `mapstructure:"query"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// SiteConfig points at the weather site.
type SiteConfig struct {
	Origin         string `mapstructure:"origin"`
	SearchTemplate string `mapstructure:"search_template"`
	Referer        string `mapstructure:"referer"`
}

// SearchConfig tunes search result matching.
type SearchConfig struct {
	Exclude []string `mapstructure:"exclude"`
}

// QueryConfig controls how the input line is split.
type QueryConfig struct {
	Delimiter string `mapstructure:"delimiter"`
}

// HTTPConfig configures the static fetcher.
type HTTPConfig struct {
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RespectRobots bool          `mapstructure:"respect_robots"`
}

// HeadlessConfig configures the browser renderer.
type HeadlessConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxParallel int           `mapstructure:"max_parallel"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"`
	Settle      time.Duration `mapstructure:"settle"`
	ExecPath    string        `mapstructure:"exec_path"`
}

// PoolConfig sizes the worker pool. Zero means one worker per CPU.
type PoolConfig struct {
	Workers int `mapstructure:"workers"`
}

// OutputConfig selects the result layout.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// MetricsConfig enables the Prometheus endpoint when ListenAddr is set.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// Load reads configuration from the optional file at path, applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.origin", "https://www.theweathernetwork.com")
	v.SetDefault("site.search_template", "/us/search?q=%s&lat=&lon=")
	v.SetDefault("site.referer", "https://www.theweathernetwork.com/us/")
	v.SetDefault("search.exclude", []string{"airport"})
	v.SetDefault("query.delimiter", ";")
	v.SetDefault("http.user_agent", "weather-lookup/1.0")
	v.SetDefault("http.timeout", 15*time.Second)
	v.SetDefault("http.respect_robots", false)
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.max_parallel", 0)
	v.SetDefault("headless.nav_timeout", 45*time.Second)
	v.SetDefault("headless.settle", 500*time.Millisecond)
	v.SetDefault("headless.exec_path", "")
	v.SetDefault("pool.workers", 0)
	v.SetDefault("output.format", format.FormatTable)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "")
	v.SetDefault("metrics.listen_addr", "")
}

// Validate ensures the configuration contains sane values.
func (c Config) Validate() error {
	origin, err := url.Parse(c.Site.Origin)
	if err != nil || origin.Host == "" || (origin.Scheme != "http" && origin.Scheme != "https") {
		return fmt.Errorf("site.origin must be an absolute http(s) URL, got %q", c.Site.Origin)
	}
	if !strings.Contains(c.Site.SearchTemplate, "%s") {
		return fmt.Errorf("site.search_template must contain %%s")
	}
	if c.Query.Delimiter == "" {
		return fmt.Errorf("query.delimiter must not be empty")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.Headless.Enabled && c.Headless.NavTimeout <= 0 {
		return fmt.Errorf("headless.nav_timeout must be > 0 when headless is enabled")
	}
	if c.Headless.Settle < 0 {
		return fmt.Errorf("headless.settle must be >= 0")
	}
	if c.Headless.MaxParallel < 0 {
		return fmt.Errorf("headless.max_parallel must be >= 0")
	}
	if c.Pool.Workers < 0 {
		return fmt.Errorf("pool.workers must be >= 0")
	}
	if _, err := format.ForName(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	return nil
}
