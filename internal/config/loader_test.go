package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.True(t, cfg.IsLocal())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Forecast.HistoricalWeeks)
	assert.True(t, cfg.Forecast.IgnoreZeroes)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("FORECASTGEN_ENV", "staging")
	t.Setenv("FORECASTGEN_SERVER_PORT", "9090")
	t.Setenv("FORECASTGEN_FORECAST_HISTORICAL_WEEKS", "4")
	t.Setenv("FORECASTGEN_PLATFORM_AUTH_TOKEN", "tok-abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.False(t, cfg.IsLocal())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Forecast.HistoricalWeeks)
	assert.Equal(t, "tok-abc", cfg.Platform.AuthToken.Unmask())
	// Secrets never print.
	assert.NotContains(t, cfg.Platform.AuthToken.String(), "tok-abc")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("FORECASTGEN_ENV", "production") // not in the allowed set

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ConfigErrorValidation, cfgErr.Type)
}

func TestLoad_RequiresTokenOutsideLocal(t *testing.T) {
	t.Setenv("FORECASTGEN_ENV", "prod")
	t.Setenv("FORECASTGEN_PLATFORM_AUTH_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "auth token"))
}

func TestLoad_RejectsOutOfRangeWeeks(t *testing.T) {
	t.Setenv("FORECASTGEN_FORECAST_HISTORICAL_WEEKS", "12")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ConfigErrorValidation, cfgErr.Type)
}
