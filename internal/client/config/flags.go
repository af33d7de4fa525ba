package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/bcards/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-d", "-db", "-p", "-s", "-f", "-l"}

// parseFlags overlays cfg with command-line flags. Unknown flags are
// filtered out with flagx.FilterArgs so other components may own them.
//
//	-a string    API base URL
//	-t duration  request timeout
//	-d string    data directory
//	-db string   database file name inside the data directory
//	-p int       cards per page
//	-s duration  session expiry check interval
//	-f duration  favorites fade delay
//	-l string    log level (debug, info, warn, error)
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("bcards", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.DatabaseFile, "db", cfg.DatabaseFile, "database file name")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "cards per page")
	fs.DurationVar(&cfg.SessionCheckInterval, "s", cfg.SessionCheckInterval, "session expiry check interval")
	fs.DurationVar(&cfg.FadeDelay, "f", cfg.FadeDelay, "favorites fade delay")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
