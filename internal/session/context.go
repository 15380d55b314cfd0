// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package session loads the plugin configuration and logger shared by CLI commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dacolabs/avrobridge/internal/config"
	"github.com/dacolabs/avrobridge/internal/engine"
	"github.com/dacolabs/avrobridge/internal/logger"
)

var (
	// ErrConfigNotFound indicates an explicitly requested config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidConfig indicates the config file exists but is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// contextKey is used to store Context in context.Context.
type contextKey struct{}

// Options select where the session comes from.
type Options struct {
	// ConfigPath is the plugin config file. Empty means config.FileName in
	// the working directory, and a missing file then falls back to defaults.
	ConfigPath string

	// LogLevel overrides the configured log level when set.
	LogLevel string
}

// Context holds what every command works with.
type Context struct {
	Config *config.Config
	Logger *logger.Logger
	Engine *engine.Engine
}

// Load resolves the configuration and logger and returns a new
// context.Context with the session Context stored in it.
func Load(ctx context.Context, opts Options) (context.Context, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	log, err := logger.New(logger.Config{Level: level})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	log.Debug("Custom properties loaded", nil, map[string]any{"customProperties": cfg.CustomPropertiesMap()})

	s := &Context{
		Config: cfg,
		Logger: log,
		Engine: engine.New(cfg, log),
	}
	return context.WithValue(ctx, contextKey{}, s), nil
}

func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = config.FileName
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// From extracts the session Context from a context.Context.
// Returns nil if no Context is stored.
func From(ctx context.Context) *Context {
	if s, ok := ctx.Value(contextKey{}).(*Context); ok {
		return s
	}
	return nil
}
