package config

import "time"

// DefaultAPIBaseURL is the deployed recruitment API used when nothing else is
// configured.
const DefaultAPIBaseURL = "https://hiredesk-api.onrender.com"

// Config holds runtime settings for the HireDesk CLI.
//
// Fields:
//   - APIBaseURL: scheme://host[:port] of the recruitment REST API.
//   - DatabasePath: sqlite file holding the persisted session.
//   - RequestTimeout: upper bound for a single API call.
//   - LogLevel: debug, info, warn or error; logs go to stderr.
//   - MetricsAddr: host:port for the Prometheus endpoint, empty to disable.
type Config struct {
	APIBaseURL     string
	DatabasePath   string
	RequestTimeout time.Duration
	LogLevel       string
	MetricsAddr    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = DefaultAPIBaseURL
	c.DatabasePath = "hiredesk.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
	c.MetricsAddr = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
