package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment,
// loading a .env file first when one exists. Unset or malformed variables
// leave the current value untouched.
//
// Recognized variables:
//
//	RECIBOX_DB            — local database path
//	RECIBOX_PRIMARY_URL   — primary store base URL
//	RECIBOX_SECONDARY_URL — secondary store base URL
//	RECIBOX_TIMEOUT       — remote timeout (Go duration, e.g. "5s")
func parseEnv(cfg *Config) {
	// absence of a .env file is the normal case
	_ = godotenv.Load()

	if v := os.Getenv("RECIBOX_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("RECIBOX_PRIMARY_URL"); v != "" {
		cfg.PrimaryBaseURL = v
	}
	if v := os.Getenv("RECIBOX_SECONDARY_URL"); v != "" {
		cfg.SecondaryBaseURL = v
	}
	if v := os.Getenv("RECIBOX_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RemoteTimeout = d
		}
	}
}
