package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode defines error classification codes for structured error handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeDuplicate    ErrorCode = "DUPLICATE"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeDatabase     ErrorCode = "DATABASE_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeUnsupported  ErrorCode = "UNSUPPORTED"
)

// FieldError points a validation failure at a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error represents a structured error with classification code.
// Validation errors additionally carry per-field details so callers can
// present field-level feedback without losing prior state.
type Error struct {
	Code    ErrorCode
	Message string
	Fields  []FieldError
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("%s: %s", e.Code, e.Message)}
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	msg := strings.Join(parts, "; ")
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with classification code and additional context.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// newValidationError builds a VALIDATION_ERROR carrying field details.
func newValidationError(message string, fields ...FieldError) *Error {
	return &Error{Code: ErrCodeValidation, Message: message, Fields: fields}
}

// IsErrorCode checks if an error matches a specific error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// WarningCode classifies non-fatal consistency findings.
type WarningCode string

const (
	// WarnNegativeCash signals a linked cash balance driven below zero by a
	// trade. The mutation still commits; the warning is surfaced for display.
	WarnNegativeCash WarningCode = "NEGATIVE_CASH_BALANCE"
	// WarnNoFundingSource signals a buy with no linked cash position to
	// deduct from. The deduction is skipped rather than blocking the trade.
	WarnNoFundingSource WarningCode = "NO_FUNDING_SOURCE"
)

// Warning is a non-fatal consistency finding returned beside a result.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

func newWarning(code WarningCode, format string, args ...any) *Warning {
	return &Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}
