package middleware

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeRecorder) RecordRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method, route, status})
}

func TestHTTPMetrics(t *testing.T) {
	rec := &fakeRecorder{}
	engine := gin.New()
	engine.Use(HTTPMetrics(rec))
	engine.POST("/items/:id", okHandler)

	serve(engine, http.MethodPost, "/items/42", nil)
	serve(engine, http.MethodGet, "/nowhere", nil)

	require.Len(t, rec.requests, 2)
	assert.Equal(t, recordedRequest{http.MethodPost, "/items/:id", http.StatusOK}, rec.requests[0])
	assert.Equal(t, recordedRequest{http.MethodGet, "unmatched", http.StatusNotFound}, rec.requests[1])
}

func TestHTTPMetrics_NilRecorder(t *testing.T) {
	engine := gin.New()
	engine.Use(HTTPMetrics(nil))
	engine.GET("/x", okHandler)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/x", nil).Code)
}

func TestTracing_TagsServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	resolver := identity.ResolverFunc(func(context.Context, string) (*identity.Caller, error) {
		return identity.NewCaller("user-7")
	})

	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(Tracing("test-service", tp)...)
	engine.POST("/x", Auth(resolver, zap.NewNop()), okHandler)

	w := serve(engine, http.MethodPost, "/x", map[string]string{
		HeaderRequestID: "req-9",
		AuthHeaderKey:   "Bearer anything",
	})
	require.Equal(t, http.StatusOK, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String("request_id", "req-9"))
	assert.Contains(t, attrs, attribute.String(telemetry.SpanAttrCallerID, "user-7"))
}
