// Package config handles datto-check configuration loading and validation.
//
// # Configuration Sources
//
// Configuration is loaded from (in order of precedence):
// 1. Command-line flags and positional arguments
// 2. Environment variables (DATTOCHECK_*)
// 3. Config file (YAML)
// 4. Defaults
//
// # Example Config File
//
//	api:
//	  base_url: https://api.datto.com/v1/bcdr/device
//	  requests_per_minute: 60
//
//	thresholds:
//	  storage_percent: 95
//
//	email:
//	  enabled: true
//	  host: mail.example.com
//	  from: datto-check@example.com
//	  to: [noc@example.com]
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/proactive-net/datto-check/internal/check"
	"github.com/proactive-net/datto-check/internal/notify"
	"github.com/proactive-net/datto-check/internal/secrets"
)

// Config is the complete datto-check configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Thresholds check.Thresholds `yaml:"thresholds"`
	Email      notify.Config    `yaml:"email"`
	Secrets    secrets.Config   `yaml:"secrets,omitempty"`
}

// APIConfig defines how to reach the vendor API.
type APIConfig struct {
	BaseURL           string `yaml:"base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds,omitempty"`
	RequestsPerMinute int    `yaml:"requests_per_minute,omitempty"`
}

// DefaultConfig returns a config with the stock thresholds and endpoints.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://api.datto.com/v1/bcdr/device",
			TimeoutSeconds:    30,
			RequestsPerMinute: 60,
		},
		Thresholds: check.DefaultThresholds(),
		Email:      notify.DefaultConfig(),
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.Thresholds.CheckinLimit <= 0 {
		return fmt.Errorf("thresholds.checkin_limit must be positive")
	}
	if c.Email.Enabled {
		if c.Email.Host == "" {
			return fmt.Errorf("email.host is required when email is enabled")
		}
		if c.Email.From == "" || len(c.Email.To) == 0 {
			return fmt.Errorf("email.from and email.to are required when email is enabled")
		}
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides.
// Environment variables use the DATTOCHECK_ prefix:
// - DATTOCHECK_API_BASE_URL
// - DATTOCHECK_EMAIL_ENABLED ("true"/"false")
// - DATTOCHECK_EMAIL_HOST
// - DATTOCHECK_EMAIL_FROM
// - DATTOCHECK_EMAIL_TO (comma-separated)
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DATTOCHECK_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("DATTOCHECK_EMAIL_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Email.Enabled = enabled
		}
	}
	if v := os.Getenv("DATTOCHECK_EMAIL_HOST"); v != "" {
		c.Email.Host = v
	}
	if v := os.Getenv("DATTOCHECK_EMAIL_FROM"); v != "" {
		c.Email.From = v
	}
	if v := os.Getenv("DATTOCHECK_EMAIL_TO"); v != "" {
		var to []string
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				to = append(to, addr)
			}
		}
		if len(to) > 0 {
			c.Email.To = to
		}
	}
}
