package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/bcards/internal/flagx"
	"github.com/dmitrijs2005/bcards/internal/timex"
)

// JsonConfig is the on-disk shape. Durations accept "3s" or nanoseconds.
// Absent fields leave the current value untouched.
type JsonConfig struct {
	APIBaseURL           *string         `json:"api_base_url"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	DataDir              *string         `json:"data_dir"`
	DatabaseFile         *string         `json:"database_file"`
	PageSize             *int            `json:"page_size"`
	SessionCheckInterval *timex.Duration `json:"session_check_interval"`
	FadeDelay            *timex.Duration `json:"fade_delay"`
	LogLevel             *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c or -config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DatabaseFile, jc.DatabaseFile)
	if jc.PageSize != nil {
		cfg.PageSize = *jc.PageSize
	}
	setDuration(&cfg.SessionCheckInterval, jc.SessionCheckInterval)
	setDuration(&cfg.FadeDelay, jc.FadeDelay)
	setString(&cfg.LogLevel, jc.LogLevel)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
