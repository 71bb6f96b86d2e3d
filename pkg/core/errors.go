package core

import (
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: element_not_found, healing_exhausted, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is matches any ExecutionError with the same Code, so copies made by
// WithCause/WithMessage still satisfy errors.Is against the predefined errors.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors (codes follow W3C WebDriver error names where one exists)
var (
	// Lookup errors
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryLookup,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrHealingExhausted = &ExecutionError{
		Category: ErrCategoryLookup,
		Code:     "healing_exhausted",
		Message:  "element not found after self-healing attempts",
	}
	ErrStaleElement = &ExecutionError{
		Category: ErrCategoryLookup,
		Code:     "stale_element",
		Message:  "element is no longer attached to the page",
	}
	ErrInvalidSelector = &ExecutionError{
		Category: ErrCategoryLookup,
		Code:     "invalid_selector",
		Message:  "selector is not valid for the strategy",
	}

	// Timeout errors
	ErrTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "timeout",
		Message:  "operation timed out",
	}

	// Connection errors
	ErrSessionNotCreated = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "session_not_created",
		Message:  "could not create browser session",
	}
	ErrServerUnreachable = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "server_unreachable",
		Message:  "could not connect to automation server",
	}

	// Config errors
	ErrInvalidConfig = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrInvalidLocator = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_locator",
		Message:  "invalid locator",
	}
	ErrUnsupportedBackend = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "unsupported_backend",
		Message:  "unsupported backend",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
