// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package engine runs the conversions the way the modeling host asks for
// them: whole models or single entities forward, files in reverse, and
// validation of rendered scripts.
package engine

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/dacolabs/avrobridge/internal/config"
	"github.com/dacolabs/avrobridge/internal/logger"
	"github.com/dacolabs/avrobridge/internal/registry"
)

// Engine holds what every request shares: the plugin configuration and the logger.
type Engine struct {
	cfg       *config.Config
	log       *logger.Logger
	validator *registry.Validator
}

// New returns an engine. A nil config means config.Default and a nil logger
// discards output.
func New(cfg *config.Config, log *logger.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{cfg: cfg, log: log, validator: registry.NewValidator(log)}
}

// Error is a failure reported back to the host.
type Error struct {
	Message string `json:"message"`
	Stack   string `json:"stack"`
	Title   string `json:"title,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// newError records err with the stack of the caller unless err carries one.
func newError(err error, title string) *Error {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	cause := err
	var st stackTracer
	if !errors.As(err, &st) {
		err = errors.WithStack(err)
	}
	return &Error{Message: err.Error(), Stack: fmt.Sprintf("%+v", err), Title: title, cause: cause}
}

func (e *Engine) fail(err error, title string) *Error {
	failure := newError(err, title)
	e.log.Error(title, err, map[string]any{"stack": failure.Stack})
	return failure
}
