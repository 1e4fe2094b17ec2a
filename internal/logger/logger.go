// Package logger holds the process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
)

// Log is the shared logger. It is a no-op until Initialize is called.
var Log *zap.Logger = zap.NewNop()

var level = zap.NewAtomicLevel()

// Initialize builds the production logger at the given level ("debug", "info", ...).
func Initialize(lvl string) error {
	if err := SetLevel(lvl); err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = level

	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl
	return nil
}

// SetLevel changes the level of the shared logger at runtime.
func SetLevel(lvl string) error {
	if lvl == "" {
		lvl = "info"
	}
	parsed, err := zap.ParseAtomicLevel(lvl)
	if err != nil {
		return err
	}
	level.SetLevel(parsed.Level())
	return nil
}

// Level returns the current level name.
func Level() string {
	return level.Level().String()
}
