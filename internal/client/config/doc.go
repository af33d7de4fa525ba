// Package config loads runtime configuration for the bcards CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags (see parseFlags).
//
// # JSON schema
//
//	{
//	  "api_base_url": "https://monkfish-app-z9uza.ondigitalocean.app/bcard2",
//	  "request_timeout": "15s",
//	  "data_dir": ".bcards",
//	  "database_file": "bcards.db",
//	  "page_size": 9,
//	  "session_check_interval": "30s",
//	  "fade_delay": "400ms",
//	  "log_level": "info"
//	}
//
// Durations are strings like "3s" or integer nanoseconds.
package config
