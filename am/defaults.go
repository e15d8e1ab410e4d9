package am

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/teranos/crdb/query"
)

// Built-in defaults
const (
	DefaultExportURL         = "https://lpsc.in2p3.fr/crdb/_export_all_data.php?format=csv"
	DefaultADSURL            = "https://api.adsabs.harvard.edu/v1/export/bibtex"
	DefaultTimeoutSeconds    = 120
	DefaultRequestsPerMinute = 30
	DefaultCacheMaxAgeDays   = 30
)

// Dir returns the user configuration directory, ~/.crdb.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crdb"
	}
	return filepath.Join(home, ".crdb")
}

// UserConfigPath returns ~/.crdb/am.toml.
func UserConfigPath() string {
	return filepath.Join(Dir(), "am.toml")
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.url", query.DefaultServerURL)
	v.SetDefault("server.export_url", DefaultExportURL)
	v.SetDefault("server.timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("server.requests_per_minute", DefaultRequestsPerMinute) // polite toward a public service
	v.SetDefault("server.concurrency", 1)
	v.SetDefault("server.allow_private_networks", false)
	v.SetDefault("server.insecure_skip_verify", false)

	// Cache
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", filepath.Join(Dir(), "cache.db"))
	v.SetDefault("cache.max_age_days", DefaultCacheMaxAgeDays)

	// Query, matching the service defaults
	d := query.Defaults()
	v.SetDefault("query.energy_type", d.EnergyType)
	v.SetDefault("query.combo_level", d.ComboLevel)
	v.SetDefault("query.energy_convert_level", d.EnergyConvertLevel)
	v.SetDefault("query.flux_rescaling", 0.0)
	v.SetDefault("query.exp_dates", "")
	v.SetDefault("query.energy_start", 0.0)
	v.SetDefault("query.energy_stop", 0.0)
	v.SetDefault("query.time_start", "")
	v.SetDefault("query.time_stop", "")
	v.SetDefault("query.time_series", "")
	v.SetDefault("query.format", "")
	v.SetDefault("query.modulation", "")

	// Bibliography
	v.SetDefault("bibliography.ads_url", DefaultADSURL)
	v.SetDefault("bibliography.ads_token", "")

	// Log
	v.SetDefault("log.theme", "everforest")
	v.SetDefault("log.json", false)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	_ = v.BindEnv("bibliography.ads_token", "CRDB_BIBLIOGRAPHY_ADS_TOKEN", "CRDB_ADS_TOKEN", "ADS_API_TOKEN")
	_ = v.BindEnv("server.url", "CRDB_SERVER_URL", "CRDB_URL")
}
