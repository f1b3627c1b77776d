package middleware

import (
	"github.com/cafecrawl/backend/internal/infrastructure/logger"
	"github.com/cafecrawl/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns otelgin followed by a handler that tags the server span
// with the request and caller IDs. Pass a nil TracerProvider to use the
// global one.
//
//	r.Use(middleware.Tracing("cafecrawl-backend", nil)...)
func Tracing(serviceName string, tp trace.TracerProvider) gin.HandlersChain {
	var opts []otelgin.Option
	if tp != nil {
		opts = append(opts, otelgin.WithTracerProvider(tp))
	}
	return gin.HandlersChain{otelgin.Middleware(serviceName, opts...), enrichSpan}
}

// enrichSpan runs inside the otelgin span, so it can still write to it after
// the handlers return.
func enrichSpan(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if callerID := c.GetString(logger.GinCallerIDKey); callerID != "" {
		span.SetAttributes(attribute.String(telemetry.SpanAttrCallerID, callerID))
	}
}
