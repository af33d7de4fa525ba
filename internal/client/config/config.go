package config

import (
	"fmt"
	"time"
)

// DefaultAPIBaseURL is the hosted bcard2 API.
const DefaultAPIBaseURL = "https://monkfish-app-z9uza.ondigitalocean.app/bcard2"

// Config holds runtime settings for the bcards CLI.
type Config struct {
	APIBaseURL           string
	RequestTimeout       time.Duration
	DataDir              string
	DatabaseFile         string
	PageSize             int
	SessionCheckInterval time.Duration
	FadeDelay            time.Duration
	LogLevel             string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = DefaultAPIBaseURL
	c.RequestTimeout = 15 * time.Second
	c.DataDir = ".bcards"
	c.DatabaseFile = "bcards.db"
	c.PageSize = 9
	c.SessionCheckInterval = 30 * time.Second
	c.FadeDelay = 400 * time.Millisecond
	c.LogLevel = "info"
}

// Load builds a Config from defaults, then the JSON file named by -c/-config
// in args, then flags. Later sources win. args excludes the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: api base url is empty")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("config: page size must be positive, got %d", c.PageSize)
	}
	if c.SessionCheckInterval <= 0 {
		return fmt.Errorf("config: session check interval must be positive")
	}
	if c.RequestTimeout < 0 || c.FadeDelay < 0 {
		return fmt.Errorf("config: durations must not be negative")
	}
	return nil
}
