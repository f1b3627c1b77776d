package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/domain/shared"
	"github.com/cafecrawl/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func staticResolver(valid map[string]string) (identity.Resolver, *int) {
	calls := 0
	return identity.ResolverFunc(func(_ context.Context, credential string) (*identity.Caller, error) {
		calls++
		id, ok := valid[credential]
		if !ok {
			return nil, fmt.Errorf("unknown token: %w", identity.ErrUnauthenticated)
		}
		return identity.NewCaller(id)
	}), &calls
}

func TestAuth(t *testing.T) {
	resolver, calls := staticResolver(map[string]string{"good-token": "user-1"})

	reached := 0
	engine := gin.New()
	engine.Use(RequestID())
	engine.POST("/x", Auth(resolver, zaptest.NewLogger(t)), func(c *gin.Context) {
		reached++
		caller := GetCaller(c)
		c.JSON(http.StatusOK, gin.H{
			"caller":     caller.ID,
			"gin_caller": c.GetString(logger.GinCallerIDKey),
			"ctx_caller": logger.GetCallerID(c.Request.Context()),
		})
	})

	rejected := []struct {
		name          string
		header        string
		wantResolving bool
	}{
		{"missing header", "", false},
		{"wrong scheme", "Basic dXNlcjpwYXNz", false},
		{"empty bearer", "Bearer ", false},
		{"unknown token", "Bearer bad-token", true},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			before := *calls
			w := serve(engine, http.MethodPost, "/x", map[string]string{AuthHeaderKey: tt.header})

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, shared.CodeUnauthorized, resp.Code)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantResolving, *calls > before)
		})
	}
	assert.Zero(t, reached)

	t.Run("valid token", func(t *testing.T) {
		w := serve(engine, http.MethodPost, "/x", map[string]string{AuthHeaderKey: "bearer good-token"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"caller":"user-1","gin_caller":"user-1","ctx_caller":"user-1"}`, w.Body.String())
		assert.Equal(t, 1, reached)
	})
}

func TestGetCaller_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetCaller(c))
}
