// Package errors defines the structured error types used across the build
// pipeline, split into two severities: fatal errors abort the current
// generation cycle, recoverable errors are logged and the offending node
// is skipped.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes pipeline errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeTool       ErrorType = "tool"
	ErrorTypeInternal   ErrorType = "internal"
)

// PipelineError is a structured error with pipeline context.
type PipelineError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Path        string
	Recoverable bool
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}
	return result
}

// Unwrap returns the underlying cause error.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is matches errors by type and code.
func (e *PipelineError) Is(target error) bool {
	var t *PipelineError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithPath attaches the file path the error relates to.
func (e *PipelineError) WithPath(path string) *PipelineError {
	e.Path = path
	return e
}

// NewFatal creates an error that aborts the current generation cycle.
func NewFatal(errorType ErrorType, code, message string) *PipelineError {
	return &PipelineError{
		Type:        errorType,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewRecoverable creates a warn-and-skip error.
func NewRecoverable(errorType ErrorType, code, message string) *PipelineError {
	return &PipelineError{
		Type:        errorType,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// WrapFatal wraps an underlying error as a cycle-aborting pipeline error.
func WrapFatal(cause error, errorType ErrorType, code, message string) *PipelineError {
	return &PipelineError{
		Type:        errorType,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable reports whether err may be logged and skipped rather than
// aborting the cycle. Unknown error types are treated as fatal.
func IsRecoverable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Recoverable
	}
	return false
}
