// Package config loads and validates service configuration from the
// environment, with optional .env support for local development.
package config

import (
	"time"

	"forecastgen/internal/types"
)

// Config is the full service configuration. Fields are populated from
// FORECASTGEN_-prefixed environment variables and validated on load.
type Config struct {
	Environment string `envconfig:"ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server   ServerConfig   `envconfig:"SERVER"`
	Platform PlatformConfig `envconfig:"PLATFORM"`
	Forecast ForecastConfig `envconfig:"FORECAST"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"20s"`
}

// PlatformConfig locates the contact-center platform APIs.
type PlatformConfig struct {
	BaseURL     string             `envconfig:"BASE_URL" default:"https://api.platform.local" validate:"required,url"`
	AuthToken   types.SecretString `envconfig:"AUTH_TOKEN"`
	HTTPTimeout time.Duration      `envconfig:"HTTP_TIMEOUT" default:"30s"`
	UserAgent   string             `envconfig:"USER_AGENT" default:"forecastgen/1.0"`
}

// ForecastConfig sets run defaults that callers can override per run.
type ForecastConfig struct {
	HistoricalWeeks int  `envconfig:"HISTORICAL_WEEKS" default:"6" validate:"min=1,max=8"`
	IgnoreZeroes    bool `envconfig:"IGNORE_ZEROES" default:"true"`
}

// IsLocal reports whether the service runs in local development mode.
// Local mode substitutes stub platform services for the real clients.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
