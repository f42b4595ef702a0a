package errors

import (
	"github.com/pkg/errors"
)

// StoreError reports an infrastructure or constraint failure from the underlying engine.
// It is opaque to callers and never retried by this layer.
type StoreError struct {
	err     error
	kind    *BaseError
	details string
}

// NewStoreError creates a database-related error
func NewStoreError(err error, details string) *StoreError {
	return &StoreError{
		err:     err,
		details: details,
	}
}

// NewStoreErrorOf creates a store error classified under a known sentinel such as
// ErrUserAlreadyExists, so errors.Is matches both the sentinel and *StoreError.
func NewStoreErrorOf(kind *BaseError, err error, details string) *StoreError {
	return &StoreError{
		err:     err,
		kind:    kind,
		details: details,
	}
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.err == nil {
		return "database execution failed: " + e.details
	}

	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error.
func (e *StoreError) Unwrap() error {
	return e.err
}

// Is matches the classifying sentinel, if any.
func (e *StoreError) Is(target error) bool {
	return e.kind != nil && target == e.kind
}

// ErrorCode returns the business error code
func (e *StoreError) ErrorCode() string {
	if e.kind != nil {
		return e.kind.ErrorCode()
	}

	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *StoreError) Message() string {
	if e.kind != nil {
		return e.kind.Message()
	}

	return "database execution failed"
}

// Details returns detailed error information
func (e *StoreError) Details() string {
	return e.details
}

// IsStoreError reports whether err carries a *StoreError.
func IsStoreError(err error) bool {
	var storeErr *StoreError

	return errors.As(err, &storeErr)
}
