// Package config loads the runtime settings of the receipt manager CLI.
//
// Sources are layered, later overriding earlier: built-in defaults, a .env
// file / environment variables, a JSON config file (-c/-config), and finally
// command-line flags.
package config

import "time"

// Config holds runtime settings for the recibox CLI.
type Config struct {
	// DatabasePath is the location of the local cache database.
	DatabasePath string

	// PrimaryBaseURL and SecondaryBaseURL locate the two remote stores.
	PrimaryBaseURL   string
	SecondaryBaseURL string

	// RemoteTimeout bounds every request made by the remote adapters.
	RemoteTimeout time.Duration

	// ProbeInterval is how often the background watcher probes the
	// primary store for the online/offline mode indicator.
	ProbeInterval time.Duration

	// DefaultPaymentMethod is stamped on generated receipts.
	DefaultPaymentMethod string

	// LookaheadDays is the recurring-generation window; 0 keeps the
	// engine default.
	LookaheadDays int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "recibox.db"
	c.PrimaryBaseURL = "http://127.0.0.1:8080"
	c.SecondaryBaseURL = "http://127.0.0.1:8081"
	c.RemoteTimeout = 5 * time.Second
	c.ProbeInterval = 3 * time.Second
	c.DefaultPaymentMethod = "pix"
	c.LookaheadDays = 0
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, the JSON file and command-line flags, in that order.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
