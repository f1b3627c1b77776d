package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	reviewapp "github.com/cafecrawl/backend/internal/application/review"
	socialapp "github.com/cafecrawl/backend/internal/application/social"
	"github.com/cafecrawl/backend/internal/infrastructure/auth"
	"github.com/cafecrawl/backend/internal/infrastructure/cache"
	"github.com/cafecrawl/backend/internal/infrastructure/config"
	"github.com/cafecrawl/backend/internal/infrastructure/logger"
	"github.com/cafecrawl/backend/internal/infrastructure/persistence"
	"github.com/cafecrawl/backend/internal/infrastructure/storage"
	"github.com/cafecrawl/backend/internal/infrastructure/telemetry"
	"github.com/cafecrawl/backend/internal/interfaces/http/handler"
	"github.com/cafecrawl/backend/internal/interfaces/http/middleware"
	"github.com/cafecrawl/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logCfg := logger.ConfigForEnvironment(cfg.App.Env, logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})

	// Telemetry starts with a plain logger; the final logger tees into the
	// OTLP log bridge once the logger provider exists.
	bootLog, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	ctx := context.Background()
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			bootLog.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	log, err := logger.New(logCfg,
		telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, providers.Logs, logger.ParseLevel(cfg.Log.Level)),
	)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync(log)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting cafecrawl mutation service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, "postgresql", log).Register(db.DB); err != nil {
		return fmt.Errorf("register database tracing: %w", err)
	}
	log.Info("Database connected successfully")

	blacklist, err := cache.NewBlacklistFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create(ctx)
	if err != nil {
		return fmt.Errorf("create token blacklist: %w", err)
	}
	defer func() {
		if err := blacklist.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewSocialMetrics(providers.Meter.Meter(telemetry.MeterName))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	followRepo := persistence.NewGormFollowRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)

	reviewOpts := []reviewapp.ReviewServiceOption{reviewapp.WithReviewMetrics(metrics)}
	if cfg.Storage.Enabled {
		verifier, err := storage.NewS3PhotoVerifier(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return fmt.Errorf("create photo verifier: %w", err)
		}
		reviewOpts = append(reviewOpts, reviewapp.WithPhotoVerifier(verifier))
		log.Info("Review photo verification enabled", zap.String("bucket", verifier.GetBucket()))
	}

	limiter := reviewapp.NewRateLimiter(reviewRepo, reviewapp.RateLimitConfig{
		Limit:  cfg.RateLimit.ReviewLimit,
		Window: cfg.RateLimit.ReviewWindow,
	})
	followService := socialapp.NewFollowService(followRepo, log, socialapp.WithFollowMetrics(metrics))
	reviewService := reviewapp.NewReviewService(reviewRepo, limiter, log, reviewOpts...)

	jwtService := auth.NewJWTService(cfg.JWT)
	resolver := auth.NewJWTResolver(jwtService, blacklist, log)

	checks := map[string]handler.Pinger{"database": db}
	if blacklist.Client != nil {
		checks["redis"] = cache.NewRedisPinger(blacklist.Client)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORS:           cors,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		TracingEnabled: providers.Tracer.IsEnabled(),
	}, resolver, router.Handlers{
		Follow: handler.NewFollowHandler(followService),
		Review: handler.NewReviewHandler(reviewService),
		System: handler.NewSystemHandler(telemetry.ServiceVersion, checks),
	}, metrics, log)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}
