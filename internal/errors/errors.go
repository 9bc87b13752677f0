// Package errors defines the application error taxonomy shared by the
// catalog, search and conversation layers.
package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeMalformedInput     = "E100"
	CodeCatalogUnavailable = "E200"
	CodeDeliveryFailed     = "E300"
	CodeState              = "E400"
	CodeRateLimit          = "E500"
	CodeInternal           = "E900"
)

// AppError carries a stable code and a translation key for the user facing text.
type AppError struct {
	Code      string
	Message   string
	UserKey   string
	Severity  Severity
	Retryable bool
	cause     error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// Is matches another AppError by code, so errors.Is(err, &AppError{Code: CodeX}) works.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) || t == nil || e == nil {
		return false
	}

	return t.Code != "" && t.Code == e.Code
}

func NewMalformedInputError(msg string) *AppError {
	return &AppError{
		Code:      CodeMalformedInput,
		Message:   msg,
		UserKey:   "error.malformed_input",
		Severity:  SeverityLow,
		Retryable: false,
	}
}

func NewCatalogUnavailableError(op string, cause error) *AppError {
	return &AppError{
		Code:      CodeCatalogUnavailable,
		Message:   fmt.Sprintf("catalog unavailable: %s", op),
		UserKey:   "error.try_later",
		Severity:  SeverityHigh,
		Retryable: true,
		cause:     cause,
	}
}

func NewDeliveryFailedError(action string, cause error) *AppError {
	return &AppError{
		Code:      CodeDeliveryFailed,
		Message:   fmt.Sprintf("delivery failed: %s", action),
		Severity:  SeverityMedium,
		Retryable: false,
		cause:     cause,
	}
}

func NewStateError(msg string) *AppError {
	return &AppError{
		Code:      CodeState,
		Message:   msg,
		UserKey:   "error.invalid_action",
		Severity:  SeverityMedium,
		Retryable: false,
	}
}

func NewRateLimitError(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:      CodeRateLimit,
		Message:   fmt.Sprintf("rate limit exceeded: retry after %d seconds", retryAfterSeconds),
		UserKey:   "error.rate_limited",
		Severity:  SeverityLow,
		Retryable: false,
	}
}

func NewInternalError(cause error) *AppError {
	return &AppError{
		Code:      CodeInternal,
		Message:   "internal error",
		UserKey:   "error.try_later",
		Severity:  SeverityHigh,
		Retryable: false,
		cause:     cause,
	}
}

// As extracts the AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr, true
	}

	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
