package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGorm(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func query(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	const stmt = `SELECT * FROM "documents" WHERE "number" = 'FA-2026-000042'`
	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		elapsed   time.Duration
		err       error
		opts      []GormLoggerOption
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{"query at info", gormlogger.Info, time.Millisecond, nil, nil, zapcore.DebugLevel, "Query"},
		{"query hidden at warn", gormlogger.Warn, time.Millisecond, nil, nil, 0, ""},
		{"slow query", gormlogger.Warn, time.Second, nil, nil, zapcore.WarnLevel, "Slow query"},
		{"slow warning disabled", gormlogger.Warn, time.Second, nil, []GormLoggerOption{WithSlowThreshold(0)}, 0, ""},
		{"failure", gormlogger.Error, time.Millisecond, errors.New("deadlock detected"), nil, zapcore.ErrorLevel, "Query failed"},
		{"failure hidden when silent", gormlogger.Silent, time.Millisecond, errors.New("deadlock detected"), nil, 0, ""},
		{"not found ignored", gormlogger.Error, time.Millisecond, gormlogger.ErrRecordNotFound, nil, 0, ""},
		{"not found at info is a query", gormlogger.Info, time.Millisecond, gormlogger.ErrRecordNotFound, nil, zapcore.DebugLevel, "Query"},
		{"not found logged on request", gormlogger.Error, time.Millisecond, gormlogger.ErrRecordNotFound,
			[]GormLoggerOption{WithIgnoreRecordNotFoundError(false)}, zapcore.ErrorLevel, "Query failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, logs := newObservedGorm(tt.level, tt.opts...)
			l.Trace(context.Background(), time.Now().Add(-tt.elapsed), query(stmt, 1), tt.err)

			if tt.wantMsg == "" {
				assert.Zero(t, logs.Len())
				return
			}
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.wantLevel, entry.Level)
			assert.Equal(t, tt.wantMsg, entry.Message)
			assert.Equal(t, stmt, entry.ContextMap()["sql"])
			assert.Equal(t, "gorm", entry.LoggerName)
		})
	}
}

func TestGormLogger_TraceCarriesRequest(t *testing.T) {
	l, logs := newObservedGorm(gormlogger.Info)
	ctx := WithUserID(WithRequestID(context.Background(), "req-7f3a"), "3b1f0c3e")

	l.Trace(ctx, time.Now(), query("SELECT 1", 1), nil)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-7f3a", fields["request_id"])
	assert.Equal(t, "3b1f0c3e", fields["user_id"])
	assert.Equal(t, int64(1), fields["rows"])
}

func TestGormLogger_Printf(t *testing.T) {
	l, logs := newObservedGorm(gormlogger.Warn)
	ctx := context.Background()

	l.Info(ctx, "migrated %d tables", 3)
	l.Warn(ctx, "pool at %d%%", 90)
	l.Error(ctx, "lost connection to %s", "db")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "pool at 90%", logs.All()[0].Message)
	assert.Equal(t, "lost connection to db", logs.All()[1].Message)
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	l, _ := newObservedGorm(gormlogger.Info)
	quiet := l.LogMode(gormlogger.Silent).(*GormLogger)

	assert.Equal(t, gormlogger.Info, l.level)
	assert.Equal(t, gormlogger.Silent, quiet.level)
}

type gormClient struct {
	ID    uint
	Email string
}

func TestGormLogger_ParameterizedQueries(t *testing.T) {
	for _, parameterized := range []bool{true, false} {
		l, logs := newObservedGorm(gormlogger.Info, WithParameterizedQueries(parameterized))
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: l})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&gormClient{}))
		logs.TakeAll()

		var c gormClient
		db.Where("email = ?", "salma@example.ma").Limit(1).Find(&c)

		require.Equal(t, 1, logs.Len())
		sql := logs.All()[0].ContextMap()["sql"].(string)
		if parameterized {
			assert.NotContains(t, sql, "salma@example.ma")
		} else {
			assert.Contains(t, sql, "salma@example.ma")
		}
	}
}

func TestMapGormLogLevel(t *testing.T) {
	for in, want := range map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"error":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"info":   gormlogger.Info,
		"debug":  gormlogger.Info,
		"":       gormlogger.Warn,
		"trace":  gormlogger.Warn,
	} {
		assert.Equal(t, want, MapGormLogLevel(in), in)
	}
}
