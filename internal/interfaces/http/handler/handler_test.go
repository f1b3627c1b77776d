package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	reviewapp "github.com/cafecrawl/backend/internal/application/review"
	socialapp "github.com/cafecrawl/backend/internal/application/social"
	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/interfaces/http/dto"
	"github.com/cafecrawl/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type mockFollowMutator struct {
	mock.Mock
}

func (m *mockFollowMutator) MutateFollow(ctx context.Context, caller *identity.Caller, cmd socialapp.FollowCommand) error {
	return m.Called(ctx, caller, cmd).Error(0)
}

type mockReviewSubmitter struct {
	mock.Mock
}

func (m *mockReviewSubmitter) SubmitReview(ctx context.Context, caller *identity.Caller, cmd reviewapp.SubmitReviewCommand) (*reviewapp.SubmitReviewResult, error) {
	args := m.Called(ctx, caller, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reviewapp.SubmitReviewResult), args.Error(1)
}

// withCaller stands in for the auth middleware
func withCaller(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CallerKey, &identity.Caller{ID: id})
		c.Next()
	}
}

func postJSON(engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
