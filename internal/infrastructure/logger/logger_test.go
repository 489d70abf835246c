package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("json logger at warn level", func(t *testing.T) {
		log, err := New(&Config{Level: "warn", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("writes to file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "api.log")
		log, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info("document issued")
		require.NoError(t, log.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "document issued")
	})

	t.Run("stamps the service", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "api.log")
		log, err := New(&Config{Output: path, Service: "ltb-api"})
		require.NoError(t, err)

		log.Warn("stock below threshold")
		require.NoError(t, log.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"service":"ltb-api"`)
	})

	t.Run("unwritable output", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "api.log")})
		assert.Error(t, err)
	})

	t.Run("tees into extra cores", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		log, err := New(&Config{Level: "info", Format: "json", Output: "stderr"}, core)
		require.NoError(t, err)

		log.Info("payment recorded")
		require.Len(t, recorded.All(), 1)
		assert.Equal(t, "payment recorded", recorded.All()[0].Message)
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
