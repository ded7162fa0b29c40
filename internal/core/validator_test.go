package core

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastgen/internal/types"
)

func TestValidateStruct(t *testing.T) {
	v := NewValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	type sample struct {
		Name  string `validate:"required"`
		Weeks int    `validate:"min=1,max=8"`
		Mode  string `validate:"oneof=smooth flatten"`
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.ValidateStruct(sample{Name: "a", Weeks: 3, Mode: "smooth"}))
	})

	t.Run("collects per-field details", func(t *testing.T) {
		err := v.ValidateStruct(sample{Weeks: 99, Mode: "sharpen"})
		require.Error(t, err)

		appErr := types.AsAppError(err)
		assert.Equal(t, types.ErrCodeValidationFailed, appErr.Code)
		assert.Contains(t, appErr.Details["sample.Name"], "required")
		assert.Contains(t, appErr.Details["sample.Weeks"], "at most 8")
		assert.Contains(t, appErr.Details["sample.Mode"], "one of")
	})

	t.Run("non-struct input", func(t *testing.T) {
		err := v.ValidateStruct("not a struct")
		require.Error(t, err)
		assert.Equal(t, types.ErrCodeInternal, types.AsAppError(err).Code)
	})
}
