package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmribeiro/recibox/internal/flagx"
	"github.com/dmribeiro/recibox/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	DatabasePath         string         `json:"database_path"`
	PrimaryBaseURL       string         `json:"primary_base_url"`
	SecondaryBaseURL     string         `json:"secondary_base_url"`
	RemoteTimeout        timex.Duration `json:"remote_timeout"`
	ProbeInterval        timex.Duration `json:"probe_interval"`
	DefaultPaymentMethod string         `json:"default_payment_method"`
	LookaheadDays        int            `json:"lookahead_days"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flags. No flag, no overlay. Read or unmarshal errors panic;
// a broken config file should stop startup loudly.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.PrimaryBaseURL != "" {
		cfg.PrimaryBaseURL = jc.PrimaryBaseURL
	}
	if jc.SecondaryBaseURL != "" {
		cfg.SecondaryBaseURL = jc.SecondaryBaseURL
	}
	if jc.RemoteTimeout.Duration != 0 {
		cfg.RemoteTimeout = time.Duration(jc.RemoteTimeout.Duration)
	}
	if jc.ProbeInterval.Duration != 0 {
		cfg.ProbeInterval = time.Duration(jc.ProbeInterval.Duration)
	}
	if jc.DefaultPaymentMethod != "" {
		cfg.DefaultPaymentMethod = jc.DefaultPaymentMethod
	}
	if jc.LookaheadDays != 0 {
		cfg.LookaheadDays = jc.LookaheadDays
	}
}
