package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the Lost & Found Pet CLI.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API, without trailing slash.
//   - RequestTimeout: per-request HTTP timeout.
//   - RefreshLeeway: how close to its exp claim a token is refreshed eagerly.
//   - Locale: Accept-Language value sent with every request.
//   - SessionDBPath: path of the local sqlite session database.
type Config struct {
	APIBaseURL     string `validate:"required,url"`
	RequestTimeout time.Duration
	RefreshLeeway  time.Duration
	Locale         string `validate:"required"`
	SessionDBPath  string `validate:"required"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://www.lostandfoundpetphnompenh.com/api"
	c.RequestTimeout = 15 * time.Second
	c.RefreshLeeway = 30 * time.Second
	c.Locale = "en"
	c.SessionDBPath = "session.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. The final result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
