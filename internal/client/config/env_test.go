package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("MM_API_BASE_URL", "https://moonmatch.example")
	t.Setenv("MM_REQUEST_TIMEOUT", "3s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "https://moonmatch.example", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.PollInterval, "unset variables keep their value")
}

func TestParseEnv_Malformed(t *testing.T) {
	t.Setenv("MM_POLL_INTERVAL", "soon")

	cfg := &Config{}
	require.Panics(t, func() { parseEnv(cfg) })
}
