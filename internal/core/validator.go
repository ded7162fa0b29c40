package core

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"forecastgen/internal/types"
)

// Validator wraps go-playground/validator and translates tag failures into
// the AppError shape handlers return to clients.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// ValidateStruct checks the struct's validate tags. Failures come back as a
// validation_failed error with one detail entry per offending field.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: the caller passed something that is not
		// a struct. That is a programming error, not client input.
		v.logger.Error("validator invoked on non-struct value", "error", err)
		return types.NewAppError(types.ErrCodeInternal, "request validation failed", err)
	}

	appErr := types.NewAppError(types.ErrCodeValidationFailed, "request validation failed", err)
	for _, fe := range fieldErrs {
		appErr.WithDetail(fe.Namespace(), ruleMessage(fe))
	}
	return appErr
}

// ruleMessage renders a compact human-readable description of a failed rule.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in the form %s", fe.Param())
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}
