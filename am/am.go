// Package am loads crdb configuration.
//
// Sources in increasing precedence: built-in defaults, /etc/crdb/am.toml,
// ~/.crdb/am.toml, the nearest am.toml or crdb.toml found walking up from
// the working directory, and CRDB_* environment variables.
package am

import (
	"fmt"
	"time"

	"github.com/teranos/crdb/query"
)

// Config represents the crdb configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server" toml:"server" json:"server" yaml:"server"`
	Cache        CacheConfig        `mapstructure:"cache" toml:"cache" json:"cache" yaml:"cache"`
	Query        QueryConfig        `mapstructure:"query" toml:"query" json:"query" yaml:"query"`
	Bibliography BibliographyConfig `mapstructure:"bibliography" toml:"bibliography" json:"bibliography" yaml:"bibliography"`
	Log          LogConfig          `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// ServerConfig configures access to the CRDB service
type ServerConfig struct {
	URL                  string  `mapstructure:"url" toml:"url" json:"url" yaml:"url"`
	ExportURL            string  `mapstructure:"export_url" toml:"export_url" json:"export_url" yaml:"export_url"`
	TimeoutSeconds       float64 `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`                // 0 = no timeout
	RequestsPerMinute    float64 `mapstructure:"requests_per_minute" toml:"requests_per_minute" json:"requests_per_minute" yaml:"requests_per_minute"` // 0 = unlimited
	Concurrency          int     `mapstructure:"concurrency" toml:"concurrency" json:"concurrency" yaml:"concurrency"`                                // parallel requests per batch
	AllowPrivateNetworks bool    `mapstructure:"allow_private_networks" toml:"allow_private_networks" json:"allow_private_networks" yaml:"allow_private_networks"`
	InsecureSkipVerify   bool    `mapstructure:"insecure_skip_verify" toml:"insecure_skip_verify" json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// CacheConfig configures the local response cache
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`
	Path       string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
}

// QueryConfig holds default query parameters; flags override them.
type QueryConfig struct {
	EnergyType         string  `mapstructure:"energy_type" toml:"energy_type" json:"energy_type" yaml:"energy_type"`
	ComboLevel         int     `mapstructure:"combo_level" toml:"combo_level" json:"combo_level" yaml:"combo_level"`
	EnergyConvertLevel int     `mapstructure:"energy_convert_level" toml:"energy_convert_level" json:"energy_convert_level" yaml:"energy_convert_level"`
	FluxRescaling      float64 `mapstructure:"flux_rescaling" toml:"flux_rescaling" json:"flux_rescaling" yaml:"flux_rescaling"`
	ExpDates           string  `mapstructure:"exp_dates" toml:"exp_dates" json:"exp_dates" yaml:"exp_dates"`
	EnergyStart        float64 `mapstructure:"energy_start" toml:"energy_start" json:"energy_start" yaml:"energy_start"`
	EnergyStop         float64 `mapstructure:"energy_stop" toml:"energy_stop" json:"energy_stop" yaml:"energy_stop"`
	TimeStart          string  `mapstructure:"time_start" toml:"time_start" json:"time_start" yaml:"time_start"`
	TimeStop           string  `mapstructure:"time_stop" toml:"time_stop" json:"time_stop" yaml:"time_stop"`
	TimeSeries         string  `mapstructure:"time_series" toml:"time_series" json:"time_series" yaml:"time_series"`
	Format             string  `mapstructure:"format" toml:"format" json:"format" yaml:"format"`
	Modulation         string  `mapstructure:"modulation" toml:"modulation" json:"modulation" yaml:"modulation"`
}

// BibliographyConfig configures BibTeX lookup through the ADS export API
type BibliographyConfig struct {
	ADSURL   string `mapstructure:"ads_url" toml:"ads_url" json:"ads_url" yaml:"ads_url"`
	ADSToken string `mapstructure:"ads_token" toml:"ads_token" json:"-" yaml:"-"`
}

// LogConfig configures console logging
type LogConfig struct {
	Theme string `mapstructure:"theme" toml:"theme" json:"theme" yaml:"theme"` // everforest, gruvbox, none
	JSON  bool   `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Options returns the configured query defaults as query options against
// the configured server.
func (c *Config) Options() query.Options {
	q := c.Query
	return query.Options{
		EnergyType:         q.EnergyType,
		ComboLevel:         q.ComboLevel,
		EnergyConvertLevel: q.EnergyConvertLevel,
		FluxRescaling:      q.FluxRescaling,
		ExpDates:           q.ExpDates,
		EnergyStart:        q.EnergyStart,
		EnergyStop:         q.EnergyStop,
		TimeStart:          q.TimeStart,
		TimeStop:           q.TimeStop,
		TimeSeries:         q.TimeSeries,
		Format:             q.Format,
		Modulation:         q.Modulation,
		ServerURL:          c.Server.URL,
	}
}

// Timeout returns the server timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds * float64(time.Second))
}

// CacheMaxAge returns the cache staleness threshold.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.Cache.MaxAgeDays) * 24 * time.Hour
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: %s, Timeout: %gs, Cache: {Enabled: %t, Path: %s}}",
		c.Server.URL, c.Server.TimeoutSeconds, c.Cache.Enabled, c.Cache.Path)
}

// Redacted returns a copy of c with secrets masked, for display.
func (c Config) Redacted() Config {
	if c.Bibliography.ADSToken != "" {
		c.Bibliography.ADSToken = "********"
	}
	return c
}
