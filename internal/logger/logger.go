// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package logger wraps zap with the small structured logging surface used by
// the converters and commands.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels accepted in Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Levels lists the accepted level names.
var Levels = []string{Debug, Info, Warning, Error}

// Config holds logger settings.
type Config struct {
	// Level is one of Levels. Empty means info.
	Level string `yaml:"level"`
}

// Logger is a wrapper around a zap logger.
type Logger struct {
	Zap *zap.Logger
}

// New builds a JSON logger writing to stderr at the configured level.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields:    map[string]any{"service": "avrobridge"},
	}

	z, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return &Logger{Zap: z}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Zap: zap.NewNop()}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{Zap: z}
}

func parseLevel(name string) (zapcore.Level, error) {
	switch name {
	case "", Info:
		return zap.InfoLevel, nil
	case Debug:
		return zap.DebugLevel, nil
	case Warning:
		return zap.WarnLevel, nil
	case Error:
		return zap.ErrorLevel, nil
	}
	return zap.InfoLevel, fmt.Errorf("unknown log level %q", name)
}

func (l *Logger) fields(err error, fields ...map[string]any) []zap.Field {
	var zapFields []zap.Field
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	for _, m := range fields {
		for k, v := range m {
			zapFields = append(zapFields, zap.Any(k, v))
		}
	}
	return zapFields
}

// Debug logs a debug-level message with an optional error and fields.
func (l *Logger) Debug(msg string, err error, fields ...map[string]any) {
	l.Zap.Debug(msg, l.fields(err, fields...)...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, err error, fields ...map[string]any) {
	l.Zap.Info(msg, l.fields(err, fields...)...)
}

// Warn logs a warning, e.g. a named type redefined with a different structure.
func (l *Logger) Warn(msg string, err error, fields ...map[string]any) {
	l.Zap.Warn(msg, l.fields(err, fields...)...)
}

// Error logs a failure that does not stop the current operation.
func (l *Logger) Error(msg string, err error, fields ...map[string]any) {
	l.Zap.Error(msg, l.fields(err, fields...)...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.Zap.Sync()
}
