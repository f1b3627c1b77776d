package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cafecrawl/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// DBTracingPlugin registers otelgorm on a GORM handle and decorates its spans
// with rows affected, errors and a slow-query marker.
type DBTracingPlugin struct {
	enabled       bool
	dbName        string
	logFullSQL    bool
	slowThreshold time.Duration
	provider      trace.TracerProvider
	logger        *zap.Logger
}

// DBTracingOption configures a DBTracingPlugin
type DBTracingOption func(*DBTracingPlugin)

// WithDBTracerProvider overrides the global tracer provider.
func WithDBTracerProvider(tp trace.TracerProvider) DBTracingOption {
	return func(p *DBTracingPlugin) {
		p.provider = tp
	}
}

// NewDBTracingPlugin creates the plugin from the telemetry config. dbName is
// reported as db.system on every span.
func NewDBTracingPlugin(cfg config.TelemetryConfig, dbName string, logger *zap.Logger, opts ...DBTracingOption) *DBTracingPlugin {
	p := &DBTracingPlugin{
		enabled:       cfg.Enabled && cfg.DBTraceEnabled,
		dbName:        dbName,
		logFullSQL:    cfg.DBLogFullSQL,
		slowThreshold: cfg.DBSlowQueryThresh,
		logger:        logger,
	}
	if p.slowThreshold <= 0 {
		p.slowThreshold = defaultSlowQueryThreshold
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register installs the plugin on db. It does nothing when DB tracing is off.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.dbName)}
	if !p.logFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.provider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}

	if err := p.registerCallbacks(db); err != nil {
		return fmt.Errorf("register tracing callbacks: %w", err)
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.logFullSQL),
		zap.Duration("slow_query_threshold", p.slowThreshold),
		zap.String("db_system", p.dbName),
	)
	return nil
}

type gormHook interface {
	Register(name string, fn func(*gorm.DB)) error
}

func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	// The after hooks must run while otelgorm's span is still open.
	hooks := []struct {
		hook gormHook
		name string
		fn   func(*gorm.DB)
	}{
		{cb.Create().Before("gorm:create"), "before_create", markQueryStart},
		{cb.Create().After("gorm:create").Before("otel:after:create"), "after_create", p.annotateSpan},
		{cb.Query().Before("gorm:query"), "before_query", markQueryStart},
		{cb.Query().After("gorm:query").Before("otel:after:query"), "after_query", p.annotateSpan},
		{cb.Update().Before("gorm:update"), "before_update", markQueryStart},
		{cb.Update().After("gorm:update").Before("otel:after:update"), "after_update", p.annotateSpan},
		{cb.Delete().Before("gorm:delete"), "before_delete", markQueryStart},
		{cb.Delete().After("gorm:delete").Before("otel:after:delete"), "after_delete", p.annotateSpan},
		{cb.Row().Before("gorm:row"), "before_row", markQueryStart},
		{cb.Row().After("gorm:row").Before("otel:after:row"), "after_row", p.annotateSpan},
		{cb.Raw().Before("gorm:raw"), "before_raw", markQueryStart},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), "after_raw", p.annotateSpan},
	}
	for _, h := range hooks {
		if err := h.hook.Register("otel_timing:"+h.name, h.fn); err != nil {
			return err
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.slowThreshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("threshold_ms", p.slowThreshold.Milliseconds()),
			))
		}
	}
}
