// Package config loads runtime configuration for the HireDesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the recruitment API
//	-d string   path of the local sqlite database
//	-t int      request timeout (seconds)
//	-l string   log level: debug, info, warn, error
//	-m string   address for the Prometheus metrics endpoint
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or integer
// nanoseconds. Keys that are absent or empty leave the default in place.
//
//	{
//	  "api_base_url": "https://hiredesk-api.onrender.com",
//	  "database_path": "hiredesk.db",
//	  "request_timeout": "10s",
//	  "log_level": "warn",
//	  "metrics_addr": ""
//	}
//
// Environment variables are not read; use the JSON file or flags.
package config
