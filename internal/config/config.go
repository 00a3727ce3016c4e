// Package config provides configuration loading and validation for applyflow.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the service configuration. It can be loaded from a JSON
// file, from the environment, or both; missing values use defaults.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`
	Verbose     bool   `json:"verbose,omitempty"`

	// SMTP transport
	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
	SMTPUsername string `json:"smtp_username,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty"`
	EmailFrom    string `json:"email_from,omitempty"`
	EmailName    string `json:"email_from_name,omitempty"`

	// Delivery retry
	MaxRetries int `json:"max_retries,omitempty"` // retries after the first attempt

	// Job-alert dispatch
	AlertBatchSize    int `json:"alert_batch_size,omitempty"`
	AlertEmailDelayMS int `json:"alert_email_delay_ms,omitempty"`
	AlertBatchDelayMS int `json:"alert_batch_delay_ms,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Callers load .env via
// godotenv before calling this.
func FromEnv() *Config {
	return &Config{
		Port:              envInt("PORT"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          envInt("SMTP_PORT"),
		SMTPUsername:      os.Getenv("SMTP_USERNAME"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		EmailFrom:         os.Getenv("EMAIL_FROM"),
		EmailName:         os.Getenv("EMAIL_FROM_NAME"),
		MaxRetries:        envInt("NOTIFY_MAX_RETRIES"),
		AlertBatchSize:    envInt("ALERT_BATCH_SIZE"),
		AlertEmailDelayMS: envInt("ALERT_EMAIL_DELAY_MS"),
		AlertBatchDelayMS: envInt("ALERT_BATCH_DELAY_MS"),
	}
}

// envInt reads an integer environment variable, returning 0 when unset or
// malformed.
func envInt(key string) int {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}
	if c.AlertBatchSize < 0 {
		return fmt.Errorf("config error: 'alert_batch_size' must be non-negative")
	}
	if c.SMTPHost != "" && c.EmailFrom == "" {
		return fmt.Errorf("config error: 'email_from' is required when SMTP is configured")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for
// environment and CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SMTPHost == "" {
		result.SMTPHost = defaults.SMTPHost
	}
	if result.SMTPUsername == "" {
		result.SMTPUsername = defaults.SMTPUsername
	}
	if result.SMTPPassword == "" {
		result.SMTPPassword = defaults.SMTPPassword
	}
	if result.EmailFrom == "" {
		result.EmailFrom = defaults.EmailFrom
	}
	if result.EmailName == "" {
		result.EmailName = defaults.EmailName
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.SMTPPort == 0 {
		result.SMTPPort = defaults.SMTPPort
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.AlertBatchSize == 0 {
		result.AlertBatchSize = defaults.AlertBatchSize
	}
	if result.AlertEmailDelayMS == 0 {
		result.AlertEmailDelayMS = defaults.AlertEmailDelayMS
	}
	if result.AlertBatchDelayMS == 0 {
		result.AlertBatchDelayMS = defaults.AlertBatchDelayMS
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
