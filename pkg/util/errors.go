// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the engine and its collaborators
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("resource not found")
	ErrNotConnected     = errors.New("device not connected")
	ErrUnsupported      = errors.New("unsupported")
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// AnnotationError reports a rejected reachability annotation. Nothing from
// the rejected call is recorded.
type AnnotationError struct {
	Category  string
	Addresses []string
	Reason    string
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("annotation rejected for %s: %s: %s",
		e.Category, e.Reason, strings.Join(e.Addresses, ", "))
}

func (e *AnnotationError) Unwrap() error {
	return ErrInvalidArgument
}

// NewAnnotationError creates an annotation error
func NewAnnotationError(category, reason string, addresses ...string) *AnnotationError {
	return &AnnotationError{
		Category:  category,
		Addresses: addresses,
		Reason:    reason,
	}
}
