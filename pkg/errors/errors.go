package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrRenderFailed indicates the external document compiler failed
	ErrRenderFailed = errors.New("document generation failed")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// RenderError wraps a failure from the external document compiler
func RenderError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrRenderFailed)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
