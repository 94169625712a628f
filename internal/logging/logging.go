// Package logging constructs the zap logger shared across marlin's
// commands, scanner, watcher, and snapshot engine.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a leveled, console-encoded logger. verbose raises the level
// from Info to Debug, matching the --verbose global switch.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}

// Nop returns a logger that discards all output, used by tests and by
// packages that are handed no logger explicitly.
func Nop() *zap.Logger {
	return zap.NewNop()
}
