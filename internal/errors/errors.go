// Package errors provides domain-specific error types and sentinel errors
// for the chat pipeline. Each type maps to one HTTP status via HTTPStatus.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrInvalidInput indicates the request body or prompt is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingAPIKey indicates a collaborator credential is not configured.
	ErrMissingAPIKey = errors.New("api key not configured")

	// ErrUnexpectedResponse indicates a collaborator returned an unparseable shape.
	ErrUnexpectedResponse = errors.New("unexpected response shape")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ConfigError reports a credential or setting that a request needs but the
// process was started without.
type ConfigError struct {
	Key  string // environment variable name
	Hint string // optional pointer for operators
}

func (e *ConfigError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s not set in environment. %s", e.Key, e.Hint)
	}
	return fmt.Sprintf("%s not set in environment", e.Key)
}

func (e *ConfigError) Unwrap() error {
	return ErrMissingAPIKey
}

// NewConfigError creates a new config error.
func NewConfigError(key, hint string) *ConfigError {
	return &ConfigError{Key: key, Hint: hint}
}

// UpstreamError represents a failed call to the completion, search or scrape collaborator.
// Body holds the raw response body for diagnostics.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s request failed", e.Service)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " with status %d", e.StatusCode)
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(service string, statusCode int, body string, err error) *UpstreamError {
	return &UpstreamError{
		Service:    service,
		StatusCode: statusCode,
		Body:       body,
		Err:        err,
	}
}

// FormatError represents a collaborator response whose shape could not be interpreted.
type FormatError struct {
	Service string
	Detail  string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected %s response: %s: %v", e.Service, e.Detail, e.Err)
	}
	return fmt.Sprintf("unexpected %s response: %s", e.Service, e.Detail)
}

func (e *FormatError) Unwrap() error {
	if e.Err != nil {
		return errors.Join(ErrUnexpectedResponse, e.Err)
	}
	return ErrUnexpectedResponse
}

// NewFormatError creates a new format error.
func NewFormatError(service, detail string, err error) *FormatError {
	return &FormatError{Service: service, Detail: detail, Err: err}
}

// IsInvalidInput checks if error is a validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMissingAPIKey checks if error is a missing credential.
func IsMissingAPIKey(err error) bool {
	return errors.Is(err, ErrMissingAPIKey)
}

// IsUpstream checks if error originated from a collaborator call.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
