// Package dto holds the wire shapes of the mutation API.
package dto

import (
	"net/http"

	"github.com/cafecrawl/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes come from the shared package.
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound    = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeUnauthorized:      http.StatusUnauthorized,
	shared.CodeValidation:        http.StatusBadRequest,
	shared.CodeSelfReference:     http.StatusBadRequest,
	shared.CodeRateLimitExceeded: http.StatusTooManyRequests,
	shared.CodeConflict:          http.StatusConflict,
	shared.CodeAlreadyExists:     http.StatusConflict,
	shared.CodeInternal:          http.StatusInternalServerError,

	// A missing row inside a mutation is a store inconsistency, not a client error.
	shared.CodeNotFound: http.StatusInternalServerError,

	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:    http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
