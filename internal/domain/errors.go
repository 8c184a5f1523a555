package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrProviderNotConfigured indicates a provider is missing its credential.
var ErrProviderNotConfigured = errors.New("provider not configured")

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// ConfigurationError reports a missing upstream credential.
type ConfigurationError struct {
	Provider string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s API key is not configured", e.Provider)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// UpstreamError reports an upstream rejection before any token was produced.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StatusCode maps an error from the proxy taxonomy to an HTTP status.
func StatusCode(err error) int {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
