package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/hiredesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Only the flags listed here are parsed (see flagx.FilterArgs), so -c/-config
// and anything else on the command line do not trip the flag set. A bad value
// panics, mirroring parseJson.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-l", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the recruitment API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local sqlite database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "address for the metrics endpoint (empty disables it)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
