package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging for a sweep run
type Logger struct {
	base  *zap.Logger
	runID string
}

// NewZapLogger builds the process logger for the given environment and level
func NewZapLogger(environment, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// NewLogger creates a logger bound to a sweep run
func NewLogger(base *zap.Logger, runID string) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	if runID == "" {
		runID = "unknown"
	}
	return &Logger{base: base, runID: runID}
}

// With returns the underlying zap logger tagged with the run and operation
func (l *Logger) With(operation string) *zap.Logger {
	return l.base.With(zap.String("run_id", l.runID), zap.String("operation", operation))
}

// LogError logs an error with context
func (l *Logger) LogError(operation string, err error) {
	l.With(operation).Error("operation failed", zap.Error(err))
}

// LogInfo logs an info message with context
func (l *Logger) LogInfo(operation string, message string, fields ...zap.Field) {
	l.With(operation).Info(message, fields...)
}

// LogInfof logs a formatted info message with context
func (l *Logger) LogInfof(operation string, format string, args ...interface{}) {
	l.With(operation).Info(fmt.Sprintf(format, args...))
}

// LogWarn logs a warning with context
func (l *Logger) LogWarn(operation string, message string, fields ...zap.Field) {
	l.With(operation).Warn(message, fields...)
}
