package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8991.
	Port int `envconfig:"PORT" default:"8991"`

	// DataDir is the root data directory. Defaults to ~/.formrelay.
	DataDir string `envconfig:"FORMRELAY_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// FormsFile is the path to the forms registry YAML file.
	// Defaults to <DataDir>/forms.yaml when empty.
	FormsFile string `envconfig:"FORMRELAY_FORMS_FILE"`

	// ConsumerCount is the number of queue consumers draining the dispatch
	// queue. The default of 1 processes submissions strictly sequentially;
	// raising it trades cross-submission ordering for throughput.
	ConsumerCount int `envconfig:"CONSUMER_COUNT" default:"1"`

	// AllowedOrigins is the CORS allow-list for the intake endpoints.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// DeliveryRetentionDays is how long delivery log entries are kept before
	// the maintenance job prunes them.
	DeliveryRetentionDays int `envconfig:"DELIVERY_RETENTION_DAYS" default:"30"`

	Retry RetryConfig
}

// RetryConfig is the retry/backoff configuration shared by all connector
// categories. Unrecognized BackoffType or JitterType values fall back to
// "exponential" and "decorrelated" respectively.
type RetryConfig struct {
	MaxRetryAttempts int    `envconfig:"MAX_RETRY_ATTEMPTS" default:"3"`
	BaseDelaySeconds int    `envconfig:"BASE_DELAY_SECONDS" default:"1"`
	MaxDelaySeconds  int    `envconfig:"MAX_DELAY_SECONDS" default:"30"`
	UseJitter        bool   `envconfig:"USE_JITTER" default:"true"`
	JitterType       string `envconfig:"JITTER_TYPE" default:"decorrelated"`
	BackoffType      string `envconfig:"BACKOFF_TYPE" default:"exponential"`
}

// BaseDelay returns BaseDelaySeconds as a duration.
func (c RetryConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelaySeconds) * time.Second
}

// MaxDelay returns MaxDelaySeconds as a duration.
func (c RetryConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelaySeconds) * time.Second
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.formrelay if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".formrelay")
	}
	if c.FormsFile == "" {
		c.FormsFile = filepath.Join(c.DataDir, "forms.yaml")
	}
	if c.ConsumerCount < 1 {
		c.ConsumerCount = 1
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (~/.formrelay/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DatabaseFile returns the path to the SQLite database file.
func (c *AppConfig) DatabaseFile() string {
	return filepath.Join(c.DataDir, "formrelay.db")
}

// DeliveryRetention returns the delivery log retention as a duration.
func (c *AppConfig) DeliveryRetention() time.Duration {
	return time.Duration(c.DeliveryRetentionDays) * 24 * time.Hour
}
