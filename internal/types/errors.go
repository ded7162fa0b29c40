package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a machine-readable error identifier. Codes are grouped by
// prefix so transport layers can map them to a status without knowing
// every individual code.
type ErrorCode string

const (
	// Validation errors (HTTP 400).
	ErrCodeValidationFailed            ErrorCode = "validation_failed"
	ErrCodeValidationInvalidDistrib    ErrorCode = "validation_invalid_distribution"
	ErrCodeValidationInvalidDay        ErrorCode = "validation_invalid_day"
	ErrCodeValidationInvalidOperation  ErrorCode = "validation_invalid_operation"
	ErrCodeValidationMalformedInterval ErrorCode = "validation_malformed_interval"

	// Run lifecycle errors.
	ErrCodeRunNotFound          ErrorCode = "run_not_found"
	ErrCodeRunGroupNotFound     ErrorCode = "run_group_not_found"
	ErrCodeRunInvalidTransition ErrorCode = "run_invalid_transition"
	ErrCodeRunNotReady          ErrorCode = "run_not_ready"
	ErrCodeRunNoHistoricalData  ErrorCode = "run_no_historical_data"
	ErrCodeRunTransformFailed   ErrorCode = "run_transform_failed"

	// Inbound forecast errors.
	ErrCodeInboundGenerationFailed ErrorCode = "inbound_generation_failed"
	ErrCodeInboundDataUnavailable  ErrorCode = "inbound_data_unavailable"

	// Import/export errors.
	ErrCodeExportEncodeFailed ErrorCode = "export_encode_failed"
	ErrCodeExportUploadFailed ErrorCode = "export_upload_failed"

	// Upstream platform errors (HTTP 502/504/429 passthrough semantics).
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamTimeout     ErrorCode = "upstream_timeout"
	ErrCodeUpstreamThrottled   ErrorCode = "upstream_throttled"
	ErrCodeUpstreamRejected    ErrorCode = "upstream_rejected"

	// Internal errors (HTTP 500).
	ErrCodeInternal ErrorCode = "internal_error"
)

// AppError is the error type used across service boundaries. It carries a
// stable code for clients, a human-readable message, and an optional cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
	Details map[string]any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail attaches a key/value pair to the error and returns it for
// chaining.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// HTTPStatus maps the error code to an HTTP status by prefix.
func (e *AppError) HTTPStatus() int {
	code := string(e.Code)
	switch {
	case strings.HasPrefix(code, "validation_"):
		return http.StatusBadRequest
	case e.Code == ErrCodeRunNotFound || e.Code == ErrCodeRunGroupNotFound:
		return http.StatusNotFound
	case e.Code == ErrCodeRunInvalidTransition || e.Code == ErrCodeRunNotReady:
		return http.StatusConflict
	case e.Code == ErrCodeRunNoHistoricalData:
		return http.StatusUnprocessableEntity
	case e.Code == ErrCodeUpstreamThrottled:
		return http.StatusTooManyRequests
	case e.Code == ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case strings.HasPrefix(code, "upstream_") || strings.HasPrefix(code, "inbound_") || strings.HasPrefix(code, "export_"):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError constructs an AppError with the given code and message.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// AsAppError extracts an *AppError from err's chain, or wraps err as an
// internal error when no AppError is present.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(ErrCodeInternal, "unexpected error", err)
}
