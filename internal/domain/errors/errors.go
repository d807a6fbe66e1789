package errors

import (
	"net/http"

	"ftpadmin/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User not found.",
		"",
	)

	// ErrLoginTaken is the uniqueness conflict, reported with the same
	// wording the validator uses so callers can treat it as one more
	// validation failure.
	ErrLoginTaken = NewBaseError(
		http.StatusConflict,
		"LOGIN_TAKEN",
		"User name already exists; name must be unique.",
		"",
	)

	// ErrUserCreationFailed is the generic storage-fault message returned
	// to callers. The underlying error is logged, never returned.
	ErrUserCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_CREATION_FAILED",
		"User creation failed; check log files.",
		"",
	)

	ErrUserUpdateFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_UPDATE_FAILED",
		"User update failed; check log files.",
		"",
	)

	ErrUserRemovalFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_REMOVAL_FAILED",
		"User removal failed; check log files.",
		"",
	)

	ErrGroupNotFound = NewBaseError(
		http.StatusNotFound,
		"GROUP_NOT_FOUND",
		"Group not found.",
		"",
	)

	ErrGroupNameTaken = NewBaseError(
		http.StatusConflict,
		"GROUP_NAME_TAKEN",
		"Group name already exists; name must be unique.",
		"",
	)

	ErrGIDTaken = NewBaseError(
		http.StatusConflict,
		"GID_TAKEN",
		"GID already exists; GID must be unique.",
		"",
	)

	ErrGroupCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"GROUP_CREATION_FAILED",
		"Group creation failed; check log files.",
		"",
	)

	ErrGroupUpdateFailed = NewBaseError(
		http.StatusInternalServerError,
		"GROUP_UPDATE_FAILED",
		"Group update failed; check log files.",
		"",
	)

	ErrHashingFailed = NewBaseError(
		http.StatusInternalServerError,
		"HASHING_FAILED",
		"Password processing failed.",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error.",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found.",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"Resource conflict.",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the underlying database error for errors.Is/As.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database execution failed."
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
