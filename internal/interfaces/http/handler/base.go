// Package handler implements the HTTP handlers of the mutation API.
package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	reviewapp "github.com/cafecrawl/backend/internal/application/review"
	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/domain/shared"
	"github.com/cafecrawl/backend/internal/infrastructure/logger"
	"github.com/cafecrawl/backend/internal/interfaces/http/dto"
	"github.com/cafecrawl/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Error sends the error envelope with the status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// HandleDomainError converts an error returned by a service into a response.
// Domain errors keep their code and message; anything else is logged and
// reported as a generic 500.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	var rateErr *reviewapp.RateLimitError
	if errors.As(err, &rateErr) {
		c.Header("Retry-After", retryAfterSeconds(rateErr.Decision.RetryAfter))
		h.Error(c, shared.CodeRateLimitExceeded, rateErr.Error())
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && dto.GetHTTPStatus(domainErr.Code) < http.StatusInternalServerError {
		h.Error(c, domainErr.Code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("Request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
	h.Error(c, shared.CodeInternal, shared.ErrInternal.Message)
}

// BindJSON decodes the body into req and writes the error response when it
// is malformed, too large or fails validation.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			shared.CodeValidation,
			"Request validation failed",
			middleware.GetRequestID(c),
			details,
		))
		return false
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return false
	}

	h.Error(c, dto.ErrCodeInvalidJSON, "Request body must be a valid JSON object")
	return false
}

// caller returns the authenticated caller, writing a 401 when the route is
// not behind the auth middleware.
func (h *BaseHandler) caller(c *gin.Context) (*identity.Caller, bool) {
	caller := middleware.GetCaller(c)
	if caller == nil {
		h.Error(c, shared.CodeUnauthorized, shared.ErrUnauthorized.Message)
		return nil, false
	}
	return caller, true
}

func retryAfterSeconds(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
