package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Run("Initialize with defaults", func(t *testing.T) {
		logger, closer, err := NewLogger(DefaultLogConfig())
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.NoError(t, closer.Close())
	})

	t.Run("Log with different levels", func(t *testing.T) {
		var buf bytes.Buffer
		logger, _, err := NewLogger(LogConfig{Level: "debug", Format: "json", Output: "buffer", Buffer: &buf})
		require.NoError(t, err)

		logger.Debug("debug message", zap.String("key", "value"))
		logger.Info("info message", zap.Float64("alpha", 0.995))
		logger.Warn("warning message", zap.Int("iterations", 100))
		logger.Error("error message", zap.String("method", "var"))
		require.NoError(t, logger.Sync())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Len(t, lines, 4)

		for _, line := range lines {
			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			assert.NotEmpty(t, entry["timestamp"])
			assert.NotEmpty(t, entry["level"])
			assert.NotEmpty(t, entry["msg"])
		}
	})

	t.Run("Level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger, _, err := NewLogger(LogConfig{Level: "warn", Output: "buffer", Buffer: &buf})
		require.NoError(t, err)

		logger.Info("dropped")
		logger.Warn("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("Console format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, _, err := NewLogger(LogConfig{Format: "console", Output: "buffer", Buffer: &buf})
		require.NoError(t, err)

		logger.Info("run finished", zap.String("run_id", "abc"))
		assert.Contains(t, buf.String(), "run finished")
		assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})

	t.Run("File output with rotation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "estimate.log")
		logger, closer, err := NewLogger(LogConfig{Output: "file", FilePath: path, MaxSize: 1})
		require.NoError(t, err)

		logger.Info("written to file")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "written to file")
	})

	t.Run("File output requires a path", func(t *testing.T) {
		_, _, err := NewLogger(LogConfig{Output: "file"})
		assert.Error(t, err)
	})

	t.Run("Unknown output", func(t *testing.T) {
		_, _, err := NewLogger(LogConfig{Output: "syslog"})
		assert.Error(t, err)
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
	for input, want := range tests {
		assert.Equal(t, want, parseLevel(input), input)
	}
}
