package schema

import (
	"errors"
	"fmt"
)

// Error codes for structured error reporting.
const (
	ErrCodeEmptyInput        = "EMPTY_INPUT"
	ErrCodeUpstream          = "UPSTREAM_UNAVAILABLE"
	ErrCodeMalformedResponse = "MALFORMED_RESPONSE"
	ErrCodeSchemaValidation  = "SCHEMA_VALIDATION"
	ErrCodeRender            = "RENDER_ERROR"
	ErrCodeConfig            = "CONFIG_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeStore             = "STORE_ERROR"
)

// FlowError is the structured error type for all flowlens operations.
type FlowError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *FlowError) Unwrap() error {
	return e.Cause
}

// NewError creates a new FlowError.
func NewError(code, message string) *FlowError {
	return &FlowError{Code: code, Message: message}
}

// NewErrorf creates a new FlowError with a formatted message.
func NewErrorf(code, format string, args ...any) *FlowError {
	return &FlowError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying cause.
func (e *FlowError) WithCause(err error) *FlowError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *FlowError) WithDetails(details map[string]any) *FlowError {
	e.Details = details
	return e
}

// ErrorCode extracts the code from an error chain, or "" if the chain
// contains no FlowError.
func ErrorCode(err error) string {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsCode reports whether the error chain contains a FlowError with the code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// UserMessage maps an error to the text shown to the submitting user.
// Parse and validation failures deliberately hide the raw trace.
func UserMessage(err error) string {
	switch ErrorCode(err) {
	case ErrCodeEmptyInput:
		return "Please paste some code first."
	case ErrCodeUpstream:
		return "The analysis service is unavailable. Please try again."
	case ErrCodeMalformedResponse, ErrCodeSchemaValidation:
		return "Could not analyze this code."
	case ErrCodeRender:
		return "The flowchart could not be drawn for this code."
	case ErrCodeNotFound:
		return "Analysis not found."
	default:
		return "Something went wrong. Please try again."
	}
}
