package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that a
// sentinel matches errors built from it with a more specific message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes. SELF_REFERENCE is a validation failure with its own code so
// clients can tell it apart; it maps to the same 400 status as
// VALIDATION_ERROR.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeValidation        = "VALIDATION_ERROR"
	CodeSelfReference     = "SELF_REFERENCE"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeConflict          = "CONFLICT"
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeInternal          = "INTERNAL_ERROR"
)

// Common domain errors
var (
	ErrUnauthorized      = NewDomainError(CodeUnauthorized, "Authentication required")
	ErrValidation        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrSelfReference     = NewDomainError(CodeSelfReference, "A user cannot follow themselves")
	ErrRateLimitExceeded = NewDomainError(CodeRateLimitExceeded, "Rate limit exceeded")
	ErrConflict          = NewDomainError(CodeConflict, "Resource was modified concurrently, please retry")
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists     = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInternal          = NewDomainError(CodeInternal, "An unexpected error occurred")
)

// NewValidationError builds a VALIDATION_ERROR with a field-specific message.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}
