package middleware

import (
	"strings"

	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/domain/shared"
	"github.com/cafecrawl/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth context keys and header values
const (
	CallerKey     = "caller"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Auth resolves the bearer credential into a Caller before the body is read
// or any store is touched. Failures abort with 401.
func Auth(resolver identity.Resolver, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		credential, ok := bearerToken(c.GetHeader(AuthHeaderKey))
		if !ok {
			rejectUnauthenticated(c, log, "missing or malformed authorization header")
			return
		}

		caller, err := resolver.Resolve(c.Request.Context(), credential)
		if err != nil {
			rejectUnauthenticated(c, log, err.Error())
			return
		}

		c.Set(CallerKey, caller)
		c.Set(logger.GinCallerIDKey, caller.ID)
		c.Request = c.Request.WithContext(logger.WithCallerID(c.Request.Context(), logger.FromContext(c.Request.Context()), caller.ID))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < len(BearerPrefix) || !strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(BearerPrefix):])
	return token, token != ""
}

func rejectUnauthenticated(c *gin.Context, log *zap.Logger, reason string) {
	log.Debug("Authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", reason),
	)
	AbortWithError(c, shared.CodeUnauthorized, shared.ErrUnauthorized.Message)
}

// GetCaller returns the authenticated caller, or nil outside Auth
func GetCaller(c *gin.Context) *identity.Caller {
	if v, ok := c.Get(CallerKey); ok {
		if caller, ok := v.(*identity.Caller); ok {
			return caller
		}
	}
	return nil
}
