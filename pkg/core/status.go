package core

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryLookup                          // Element not found, healing exhausted, stale or invalid selector
	ErrCategoryTimeout                         // Operation timed out
	ErrCategoryConnection                      // Browser/server connection lost or session not created
	ErrCategoryConfig                          // Invalid configuration, locator or backend
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryLookup:
		return "lookup"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}
