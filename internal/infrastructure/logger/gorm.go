package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes GORM output to zap. Statements go to debug, slow ones to
// warn and failures to error, tagged with the request and user of ctx.
type GormLogger struct {
	log           *zap.Logger
	level         gormlogger.LogLevel
	slow          time.Duration
	logNotFound   bool
	parameterized bool
}

type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is a slow
// query. Zero disables the warning.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slow = d }
}

// WithIgnoreRecordNotFoundError controls whether gorm.ErrRecordNotFound is
// logged as a failure. Lookups that miss are routine, so it is ignored by
// default.
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) { l.logNotFound = !ignore }
}

// WithParameterizedQueries logs statements with their $n placeholders
// instead of the bound values, keeping customer names, phones and emails out
// of the logs.
func WithParameterizedQueries(on bool) GormLoggerOption {
	return func(l *GormLogger) { l.parameterized = on }
}

func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{log: log.Named("gorm"), level: level, slow: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.with(ctx).Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.with(ctx).Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.with(ctx).Sugar().Errorf(msg, data...)
	}
}

// ParamsFilter is picked up by GORM before it renders a statement for Trace.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if l.parameterized {
		return sql, nil
	}
	return sql, params
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var level gormlogger.LogLevel
	switch {
	case err != nil && (l.logNotFound || !errors.Is(err, gormlogger.ErrRecordNotFound)):
		level = gormlogger.Error
	case l.slow > 0 && elapsed > l.slow:
		level = gormlogger.Warn
	default:
		level = gormlogger.Info
	}
	if l.level < level {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	log := l.with(ctx)
	switch level {
	case gormlogger.Error:
		log.Error("Query failed", append(fields, zap.Error(err))...)
	case gormlogger.Warn:
		log.Warn("Slow query", append(fields, zap.Duration("threshold", l.slow))...)
	default:
		log.Debug("Query", fields...)
	}
}

func (l *GormLogger) with(ctx context.Context) *zap.Logger {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetUserID(ctx); id != "" {
		fields = append(fields, zap.String("user_id", id))
	}
	if len(fields) == 0 {
		return l.log
	}
	return l.log.With(fields...)
}

// MapGormLogLevel translates the application log level. debug and info
// both trace every statement; anything unknown falls back to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
