// Package logging builds the zap loggers used across applyflow services.
package logging

import (
	"go.uber.org/zap"
)

// New constructs a sugared logger. Verbose mode enables debug-level,
// human-readable console output; otherwise production JSON output at info
// level is used.
func New(verbose bool) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if verbose {
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		logger, err = config.Build()
	} else {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		logger, err = config.Build()
	}
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}
