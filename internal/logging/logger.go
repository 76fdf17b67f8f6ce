package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig defines logger configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days

	// Buffer receives entries when Output is "buffer"
	Buffer *bytes.Buffer `mapstructure:"-"`
}

// DefaultLogConfig logs info and above as JSON to stderr, leaving stdout
// for results
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "json",
		Output:     "stderr",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds a zap logger from config. The returned Closer releases
// the log file when Output is "file".
func NewLogger(config LogConfig) (*zap.Logger, io.Closer, error) {
	writer, closer, err := setupWriter(&config)
	if err != nil {
		return nil, nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(config.Format) {
	case "console", "text":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), parseLevel(config.Level))
	return zap.New(core), closer, nil
}

func setupWriter(config *LogConfig) (io.Writer, io.Closer, error) {
	switch config.Output {
	case "stdout":
		return os.Stdout, nopCloser{}, nil
	case "stderr", "":
		return os.Stderr, nopCloser{}, nil
	case "buffer":
		if config.Buffer == nil {
			config.Buffer = &bytes.Buffer{}
		}
		return config.Buffer, nopCloser{}, nil
	case "file":
		if config.FilePath == "" {
			return nil, nil, fmt.Errorf("file path required for file output")
		}
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
		}
		return rotator, rotator, nil
	default:
		return nil, nil, fmt.Errorf("unknown log output %q", config.Output)
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
