// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging constructs the process logger. The logger is built once
// at startup and passed by reference into every component that needs it;
// there is no ambient global.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production logger writing JSON to stderr, or a development
// logger with console output when debug is set.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
