package router

import (
	"fmt"

	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/infrastructure/logger"
	"github.com/cafecrawl/backend/internal/interfaces/http/dto"
	"github.com/cafecrawl/backend/internal/interfaces/http/handler"
	"github.com/cafecrawl/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// EngineConfig configures the engine-wide middleware
type EngineConfig struct {
	ServiceName    string
	MaxBodySize    int64
	CORS           middleware.CORSConfig
	TrustedProxies []string
	TracingEnabled bool
	// TracerProvider overrides the global provider when set
	TracerProvider trace.TracerProvider
}

// Handlers are the endpoint handlers mounted by NewEngine
type Handlers struct {
	Follow *handler.FollowHandler
	Review *handler.ReviewHandler
	System *handler.SystemHandler
}

// NewEngine builds the gin engine with the middleware stack and all routes.
// Authentication is applied per mutation route after the method check and
// before any body is read.
func NewEngine(cfg EngineConfig, resolver identity.Resolver, h Handlers, recorder middleware.RequestRecorder, log *zap.Logger) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	engine.Use(logger.Recovery(log), middleware.RequestID())
	if cfg.TracingEnabled {
		engine.Use(middleware.Tracing(cfg.ServiceName, cfg.TracerProvider)...)
	}
	engine.Use(
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(recorder),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.Secure(),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, dto.ErrCodeRouteNotFound, "Route not found")
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/health/ready", h.System.Ready)
	}

	social := NewDomainGroup("social", "").Use(middleware.Auth(resolver, log))
	if h.Follow != nil {
		social.Mutation("/follow", h.Follow.Mutate)
	}
	if h.Review != nil {
		social.Mutation("/reviews", h.Review.Submit)
	}
	NewRouter(engine).Register(social).Setup()

	return engine, nil
}
