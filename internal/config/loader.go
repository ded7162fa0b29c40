package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "FORECASTGEN"

// ConfigErrorType classifies load failures.
type ConfigErrorType string

const (
	ConfigErrorParse      ConfigErrorType = "parse"
	ConfigErrorValidation ConfigErrorType = "validation"
)

// ConfigError reports why configuration loading failed.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("config %s error: %s", e.Type, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load reads configuration from the environment. A .env file is loaded
// first when present; its absence is not an error. The process time zone
// is forced to UTC so interval math never depends on host settings.
func Load() (*Config, error) {
	time.Local = time.UTC

	// Best-effort: local development convenience only.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ConfigErrorParse,
			Message: "failed to process environment variables",
			Err:     err,
		}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, &ConfigError{
			Type:    ConfigErrorValidation,
			Message: "configuration failed validation",
			Err:     err,
		}
	}

	if !cfg.IsLocal() && cfg.Platform.AuthToken.Unmask() == "" {
		return nil, &ConfigError{
			Type:    ConfigErrorValidation,
			Message: "platform auth token is required outside local mode",
		}
	}
	return &cfg, nil
}
