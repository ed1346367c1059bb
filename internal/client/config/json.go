package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/moonmatch/internal/flagx"
	"github.com/dmitrijs2005/moonmatch/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Intervals use timex.Duration, so they may be strings like "5s" or
// nanosecond numbers.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	PollInterval        timex.Duration `json:"poll_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	DBPath              string         `json:"db_path"`
	DefaultEventID      string         `json:"default_event_id"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with the values present in the JSON file named by
// -c or -config. Fields missing from the file keep their current value.
// Panics on read or unmarshal errors.
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

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.DefaultEventID, jc.DefaultEventID)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.PollInterval.Duration > 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
