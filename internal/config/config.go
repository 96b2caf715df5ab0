// Package config loads the process configuration of the CLI
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/appian-deploy/appian-deploy/internal/logger"
)

const (
	// EnvPrefix prefixes every environment variable read by the CLI
	EnvPrefix = "APPIAN"
	// DefaultConfigFile is read from the working directory when no file is given
	DefaultConfigFile = "appian-config.toml"
	// DefaultEnvFile is loaded into the environment when present
	DefaultEnvFile = ".env"

	DefaultBaseURL        = "https://mysite.appiancloud.com"
	DefaultTimeoutSeconds = 300
)

// Config is the complete CLI configuration
type Config struct {
	BaseURL        string `toml:"base_url" envconfig:"BASE_URL"`
	APIKey         string `toml:"api_key" envconfig:"API_KEY"`
	TimeoutSeconds int    `toml:"timeout_seconds" envconfig:"TIMEOUT_SECONDS"`

	Logging  LoggingConfig  `toml:"logging" envconfig:"LOG"`
	Download DownloadConfig `toml:"download" envconfig:"DOWNLOAD"`
	Monitor  MonitorConfig  `toml:"monitor" envconfig:"MONITOR"`
	History  HistoryConfig  `toml:"history" envconfig:"HISTORY"`
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	Level string `toml:"level" envconfig:"LEVEL"`
	JSON  bool   `toml:"json" envconfig:"JSON"`
}

// DownloadConfig configures artifact downloads
type DownloadConfig struct {
	Dir string `toml:"dir" envconfig:"DIR"`
}

// MonitorConfig configures operation polling
type MonitorConfig struct {
	IntervalSeconds   int  `toml:"interval_seconds" envconfig:"INTERVAL_SECONDS"`
	TimeoutSeconds    int  `toml:"timeout_seconds" envconfig:"TIMEOUT_SECONDS"`
	Backoff           bool `toml:"backoff" envconfig:"BACKOFF"`
	BackoffInitialMS  int  `toml:"backoff_initial_ms" envconfig:"BACKOFF_INITIAL_MS"`
	BackoffMaxMS      int  `toml:"backoff_max_ms" envconfig:"BACKOFF_MAX_MS"`
	Jitter            bool `toml:"jitter" envconfig:"JITTER"`
	LogsFollowDefault bool `toml:"logs_follow_default" envconfig:"LOGS_FOLLOW_DEFAULT"`
}

// HistoryConfig configures the local operation history
type HistoryConfig struct {
	Enabled bool `toml:"enabled" envconfig:"ENABLED"`
	// DSN is a postgres connection string or a sqlite file path
	DSN string `toml:"dsn" envconfig:"DSN"`
}

// Overrides are values given on the command line. Nil fields are not applied.
type Overrides struct {
	BaseURL *string
	APIKey  *string
}

// LoadOptions select the sources Load reads
type LoadOptions struct {
	// ConfigFile must exist when set. When empty DefaultConfigFile is used if present.
	ConfigFile string
	// EnvFile defaults to DefaultEnvFile and is skipped when missing
	EnvFile   string
	Overrides Overrides
}

// Default returns the configuration used when no source sets a value
func Default() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Logging: LoggingConfig{
			Level: "info",
		},
		Download: DownloadConfig{
			Dir: ".",
		},
		Monitor: MonitorConfig{
			IntervalSeconds:  10,
			TimeoutSeconds:   3600,
			BackoffInitialMS: 1000,
			BackoffMaxMS:     30000,
			Jitter:           true,
		},
		History: HistoryConfig{
			DSN: "appian-deploy-history.db",
		},
	}
}

// Load builds the configuration from defaults, the TOML file, the .env file,
// the environment and finally the command-line overrides. It does not validate.
func Load(opts LoadOptions) (*Config, error) {
	c := Default()

	configFile := opts.ConfigFile
	if configFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			configFile = DefaultConfigFile
		}
	}
	if configFile != "" {
		if err := c.loadFile(configFile); err != nil {
			return nil, err
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
	}

	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	c.apply(opts.Overrides)

	logger.DebugWithFields("loaded configuration", map[string]interface{}{
		"file":     configFile,
		"base_url": c.BaseURL,
		"api_key":  c.RedactedAPIKey(),
		"timeout":  c.Timeout().String(),
	})
	return c, nil
}

func (c *Config) loadFile(path string) error {
	logger.Infof("Loading configuration from: %s", path)

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logger.Warnf("Unknown configuration key %q in %s", key.String(), path)
	}
	return nil
}

func (c *Config) apply(o Overrides) {
	if o.BaseURL != nil {
		c.BaseURL = *o.BaseURL
	}
	if o.APIKey != nil {
		c.APIKey = *o.APIKey
	}
}

// Validate checks the settings every API call needs
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return missing("base_url", "BASE_URL")
	}
	if c.APIKey == "" {
		return missing("api_key", "API_KEY")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be greater than 0, got %d", c.TimeoutSeconds)
	}
	if c.Monitor.IntervalSeconds < 0 {
		return fmt.Errorf("monitor.interval_seconds cannot be negative, got %d", c.Monitor.IntervalSeconds)
	}
	if c.Monitor.TimeoutSeconds <= 0 {
		return fmt.Errorf("monitor.timeout_seconds must be greater than 0, got %d", c.Monitor.TimeoutSeconds)
	}
	return nil
}

func missing(key, env string) error {
	return fmt.Errorf("missing required configuration: %s / %s_%s", key, EnvPrefix, env)
}

// Timeout returns the per-request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedactedAPIKey returns the API key with all but its last four characters masked
func (c *Config) RedactedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

// PollInterval returns the default interval between status queries
func (m MonitorConfig) PollInterval() time.Duration {
	return time.Duration(m.IntervalSeconds) * time.Second
}

// PollTimeout returns the default overall polling timeout
func (m MonitorConfig) PollTimeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// BackoffInitial returns the first backoff wait
func (m MonitorConfig) BackoffInitial() time.Duration {
	return time.Duration(m.BackoffInitialMS) * time.Millisecond
}

// BackoffMax returns the backoff ceiling
func (m MonitorConfig) BackoffMax() time.Duration {
	return time.Duration(m.BackoffMaxMS) * time.Millisecond
}
