package errors

import (
	"github.com/pkg/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(errorCode, message, details string) *BaseError {
	return &BaseError{
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

// WithDetails returns a copy carrying details. The copy is not the same sentinel,
// so callers comparing with errors.Is must keep the original in the chain.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	ErrUserNotFound = NewBaseError(
		"USER_NOT_FOUND",
		"user not found",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		"USER_ALREADY_EXISTS",
		"user already exists",
		"",
	)

	ErrConstraintViolated = NewBaseError(
		"CONSTRAINT_VIOLATED",
		"stored data violates a schema constraint",
		"",
	)

	ErrValidationFailed = NewBaseError(
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	ErrTransactionFailed = NewBaseError(
		"TRANSACTION_FAILED",
		"database transaction failed",
		"",
	)

	ErrReadOnlyTransaction = NewBaseError(
		"READ_ONLY_TRANSACTION",
		"write attempted inside a read-only transaction",
		"",
	)

	ErrNotFound = NewBaseError(
		"NOT_FOUND",
		"resource not found",
		"",
	)
)

// IsNotFound reports whether err means the targeted record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrNotFound)
}
