package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// ValidationErrors aggregates user-correctable input problems. Checks
// never fail fast; every violated rule contributes one message and the
// whole list is returned together. Implements AppError.
type ValidationErrors struct {
	Problems []string
}

// NewValidationErrors creates an empty aggregate ready to collect problems.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Addf records one problem message.
func (e *ValidationErrors) Addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// HasAny reports whether at least one problem was recorded.
func (e *ValidationErrors) HasAny() bool {
	return len(e.Problems) > 0
}

// Error joins all problems with a line separator for display.
func (e *ValidationErrors) Error() string {
	return strings.Join(e.Problems, "\n")
}

// HTTPCode returns the HTTP status code
func (e *ValidationErrors) HTTPCode() int {
	return http.StatusBadRequest
}

// ErrorCode returns the business error code
func (e *ValidationErrors) ErrorCode() string {
	return "VALIDATION_FAILED"
}

// Message returns the user-friendly error message
func (e *ValidationErrors) Message() string {
	return e.Error()
}

// Details returns detailed error information
func (e *ValidationErrors) Details() string {
	return ""
}
