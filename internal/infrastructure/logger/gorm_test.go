package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, 100*time.Millisecond), recorded
}

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("fast query logs at debug", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Info)
		ctx := WithRequestID(context.Background(), zap.NewNop(), "req-1")

		l.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), nil)

		entry := findEntry(t, recorded, "SQL Query")
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		assert.Equal(t, "req-1", entry.ContextMap()["request_id"])
	})

	t.Run("slow query logs at warn", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Warn)

		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn("SELECT pg_sleep(1)", 1), nil)

		assert.Equal(t, zapcore.WarnLevel, findEntry(t, recorded, "Slow SQL").Level)
	})

	t.Run("record not found is skipped", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Info)

		l.Trace(context.Background(), time.Now(), sqlFn("SELECT * FROM reviews", 0), gormlogger.ErrRecordNotFound)

		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("errors are logged", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Error)

		l.Trace(context.Background(), time.Now(), sqlFn("INSERT INTO follows", 0), errors.New("duplicate key"))

		assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Silent)

		l.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 1), errors.New("x"))

		assert.Equal(t, 0, recorded.Len())
	})
}

func TestGormLogger_LogModeReturnsCopy(t *testing.T) {
	l, _ := newObservedGormLogger(gormlogger.Warn)

	quiet := l.LogMode(gormlogger.Silent).(*GormLogger)

	assert.Equal(t, gormlogger.Silent, quiet.logLevel)
	assert.Equal(t, gormlogger.Warn, l.logLevel)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
