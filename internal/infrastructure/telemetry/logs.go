package telemetry

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BridgeLogger returns log with every entry at or above level also shipped
// to the OTLP log pipeline. Without a log provider it returns log unchanged.
func (p *Providers) BridgeLogger(log *zap.Logger, name string, level zapcore.Level) *zap.Logger {
	if p == nil || p.Logs == nil {
		return log
	}
	otelCore := zapcore.Core(otelzap.NewCore(name, otelzap.WithLoggerProvider(p.Logs)))
	if filtered, err := zapcore.NewIncreaseLevelCore(otelCore, level); err == nil {
		otelCore = filtered
	}
	return log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, otelCore)
	}))
}
