package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:3000", c.APIBaseURL)
	assert.Equal(t, 5*time.Second, c.PollInterval)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, 15*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "moonmatch.db", c.DBPath)
	assert.Equal(t, "moonlight-gala", c.DefaultEventID)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"api_base_url":  "http://json:1",
		"db_path":       "json.db",
		"poll_interval": "7s",
	})
	t.Setenv("MM_DB_PATH", "env.db")
	t.Setenv("MM_LOG_LEVEL", "debug")
	os.Args = []string{"testbin", "-c", path, "-a", "http://flag:2"}

	cfg := LoadConfig()
	require.NotNil(t, cfg, "LoadConfig must not return nil")

	assert.Equal(t, "http://flag:2", cfg.APIBaseURL, "flags beat json")
	assert.Equal(t, "env.db", cfg.DBPath, "env beats json")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7*time.Second, cfg.PollInterval)
	assert.Equal(t, "moonlight-gala", cfg.DefaultEventID)
}

func TestLoadConfig_SubSecondIntervalFromEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Setenv("MM_POLL_INTERVAL", "500ms")

	cfg := LoadConfig()
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
}

func TestLoadConfig_RejectsNonPositiveIntervals(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "zero poll interval from env", env: map[string]string{"MM_POLL_INTERVAL": "0s"}},
		{name: "zero online check from env", env: map[string]string{"MM_ONLINE_CHECK_INTERVAL": "0s"}},
		{name: "negative poll interval from env", env: map[string]string{"MM_POLL_INTERVAL": "-1s"}},
		{name: "zero poll interval from flag", args: []string{"-i", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			os.Args = append([]string{"testbin"}, tt.args...)

			require.Panics(t, func() { LoadConfig() })
		})
	}
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.NoError(t, c.Validate())

	c.OnlineCheckInterval = 0
	require.ErrorIs(t, c.Validate(), ErrInvalidInterval)
}
