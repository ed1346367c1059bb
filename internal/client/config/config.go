package config

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInterval = errors.New("interval must be positive")

// Config holds runtime settings for the Moonlight Match CLI.
//
// Units: all intervals are time.Duration values.
type Config struct {
	APIBaseURL          string        `env:"MM_API_BASE_URL"`
	PollInterval        time.Duration `env:"MM_POLL_INTERVAL"`
	RequestTimeout      time.Duration `env:"MM_REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `env:"MM_ONLINE_CHECK_INTERVAL"`
	DBPath              string        `env:"MM_DB_PATH"`
	DefaultEventID      string        `env:"MM_DEFAULT_EVENT_ID"`
	LogLevel            string        `env:"MM_LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:3000"
	c.PollInterval = 5 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 15 * time.Second
	c.DBPath = "moonmatch.db"
	c.DefaultEventID = "moonlight-gala"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. Panics when the result fails Validate.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the intervals that drive tickers.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval %v: %w", c.PollInterval, ErrInvalidInterval)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval %v: %w", c.OnlineCheckInterval, ErrInvalidInterval)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout %v: %w", c.RequestTimeout, ErrInvalidInterval)
	}
	return nil
}
