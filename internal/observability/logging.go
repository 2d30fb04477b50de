// Package observability builds the process and audit loggers.
package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// ServiceName is attached to every process log entry as the "service" field.
const ServiceName = "skirmish"

// NewLogger builds the process logger: production JSON or development
// console output on stderr, at the configured level.
//
// Precondition: cfg passes config validation.
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.InitialFields = map[string]any{"service": ServiceName}
	return build(zc, "logger")
}

// NewFileLogger builds an unsampled JSON logger appending to path. It backs
// the combat audit log, so every entry is kept and callers are not recorded.
// Missing parent directories are created.
//
// Postcondition: Returns a logger writing only to path, or a non-nil error.
func NewFileLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return nil, fmt.Errorf("file logger path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory for %q: %w", path, err)
	}

	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.DisableCaller = true
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{"stderr"}
	return build(zc, "file logger for "+path)
}

func build(zc zap.Config, what string) (*zap.Logger, error) {
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", what, err)
	}
	return logger, nil
}
