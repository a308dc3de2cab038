// Package errors provides a lightweight structured error type (MlenvError)
// for category-based classification across the provisioner and launcher.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of an mlenv error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryNetwork ErrorCategory = "network"
	CategoryGit     ErrorCategory = "git"

	// Provisioning and launch errors
	CategoryProvision  ErrorCategory = "provision"
	CategoryExec       ErrorCategory = "exec"
	CategoryLaunch     ErrorCategory = "launch"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// MlenvError is a structured error with category, severity, and context
type MlenvError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for MlenvError
type ContextFields map[string]any

// Error implements the error interface
func (e *MlenvError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *MlenvError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *MlenvError) WithContext(key string, value any) *MlenvError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new MlenvError
func New(category ErrorCategory, severity ErrorSeverity, message string) *MlenvError {
	return &MlenvError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new MlenvError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *MlenvError {
	return &MlenvError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if me, ok := err.(*MlenvError); ok {
		return me.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not an MlenvError
func GetCategory(err error) ErrorCategory {
	if me, ok := err.(*MlenvError); ok {
		return me.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error
func ValidationError(message string) *MlenvError {
	return &MlenvError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// WrapError wraps an existing error with a new MlenvError at error severity
func WrapError(err error, category ErrorCategory, message string) *MlenvError {
	return &MlenvError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}
