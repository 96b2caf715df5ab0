package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultTimeoutSeconds, c.TimeoutSeconds)
	assert.Equal(t, "info", c.Logging.Level)
	assert.False(t, c.Logging.JSON)
	assert.Equal(t, 1000, c.Monitor.BackoffInitialMS)
	assert.Equal(t, 30000, c.Monitor.BackoffMaxMS)
	assert.True(t, c.Monitor.Jitter)
	assert.False(t, c.Monitor.Backoff)
	assert.False(t, c.Monitor.LogsFollowDefault)
	assert.Equal(t, 10*time.Second, c.Monitor.PollInterval())
	assert.Equal(t, time.Hour, c.Monitor.PollTimeout())
	assert.False(t, c.History.Enabled)
}

func TestLoadPrecedence(t *testing.T) {
	configFile := writeFile(t, "appian-config.toml", `
base_url = "https://file.appiancloud.com"
api_key = "file-key"
timeout_seconds = 60

[logging]
level = "debug"

[monitor]
backoff = true
backoff_initial_ms = 500
`)

	t.Setenv("APPIAN_API_KEY", "env-key")
	t.Setenv("APPIAN_MONITOR_BACKOFF_MAX_MS", "8000")

	baseURL := "https://flag.appiancloud.com/"
	c, err := Load(LoadOptions{
		ConfigFile: configFile,
		EnvFile:    filepath.Join(t.TempDir(), "missing.env"),
		Overrides:  Overrides{BaseURL: &baseURL},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://flag.appiancloud.com/", c.BaseURL, "flag wins over file")
	assert.Equal(t, "env-key", c.APIKey, "env wins over file")
	assert.Equal(t, 60, c.TimeoutSeconds, "file wins over default")
	assert.Equal(t, "debug", c.Logging.Level)
	assert.True(t, c.Monitor.Backoff)
	assert.Equal(t, 500*time.Millisecond, c.Monitor.BackoffInitial())
	assert.Equal(t, 8*time.Second, c.Monitor.BackoffMax())
	assert.True(t, c.Monitor.Jitter, "unset keys keep their defaults")
	assert.NoError(t, c.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	envFile := writeFile(t, "test.env", "APPIAN_TIMEOUT_SECONDS=42\n")
	t.Cleanup(func() { os.Unsetenv("APPIAN_TIMEOUT_SECONDS") })

	c, err := Load(LoadOptions{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, 42, c.TimeoutSeconds)
	assert.Equal(t, 42*time.Second, c.Timeout())
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.toml")})
		assert.Error(t, err)
	})

	t.Run("malformed config file", func(t *testing.T) {
		_, err := Load(LoadOptions{ConfigFile: writeFile(t, "bad.toml", "base_url = ")})
		assert.Error(t, err)
	})

	t.Run("malformed environment value", func(t *testing.T) {
		t.Setenv("APPIAN_TIMEOUT_SECONDS", "soon")
		_, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(c *Config) { c.APIKey = "key" },
		},
		{
			name:    "missing api key",
			modify:  func(c *Config) {},
			wantErr: "api_key / APPIAN_API_KEY",
		},
		{
			name:    "blank base url",
			modify:  func(c *Config) { c.APIKey = "key"; c.BaseURL = "  " },
			wantErr: "base_url / APPIAN_BASE_URL",
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.APIKey = "key"; c.TimeoutSeconds = 0 },
			wantErr: "timeout_seconds must be greater than 0",
		},
		{
			name:   "zero monitor interval",
			modify: func(c *Config) { c.APIKey = "key"; c.Monitor.IntervalSeconds = 0 },
		},
		{
			name:    "negative monitor interval",
			modify:  func(c *Config) { c.APIKey = "key"; c.Monitor.IntervalSeconds = -5 },
			wantErr: "monitor.interval_seconds cannot be negative, got -5",
		},
		{
			name:    "negative monitor timeout",
			modify:  func(c *Config) { c.APIKey = "key"; c.Monitor.TimeoutSeconds = -1 },
			wantErr: "monitor.timeout_seconds must be greater than 0, got -1",
		},
		{
			name:    "zero monitor timeout",
			modify:  func(c *Config) { c.APIKey = "key"; c.Monitor.TimeoutSeconds = 0 },
			wantErr: "monitor.timeout_seconds must be greater than 0, got 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedactedAPIKey(t *testing.T) {
	assert.Equal(t, "", (&Config{}).RedactedAPIKey())
	assert.Equal(t, "***", (&Config{APIKey: "abc"}).RedactedAPIKey())
	assert.Equal(t, "******cdef", (&Config{APIKey: "1234abcdef"}).RedactedAPIKey())
}
