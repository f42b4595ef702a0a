package errors

import (
	"strings"
)

// FieldViolation describes one rejected field.
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation. It matches ErrValidationFailed.
type ValidationError struct {
	Violations []FieldViolation
}

// NewValidationError builds a ValidationError from the given violations.
func NewValidationError(violations ...FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidationFailed.Message()
	}

	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" "+v.Message)
	}

	return ErrValidationFailed.Message() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidationFailed) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ErrorCode returns the business error code
func (e *ValidationError) ErrorCode() string {
	return ErrValidationFailed.ErrorCode()
}

// Message returns the user-friendly error message
func (e *ValidationError) Message() string {
	return ErrValidationFailed.Message()
}

// Details returns the violations joined into one line.
func (e *ValidationError) Details() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+":"+v.Rule)
	}

	return strings.Join(parts, ",")
}

// Fields returns the names of the violated fields in order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}

	return fields
}
