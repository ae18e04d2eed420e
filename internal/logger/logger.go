// Package logger wires a process-wide zap logger.  Handlers log store
// failures here with full detail while returning generic messages to
// clients.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger = zap.NewNop()

// Init builds the production logger and installs it as the package logger.
// In the "dev" environment a development config is used instead so output
// stays human readable.
func Init(env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "dev" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	log = zl
	return zl, nil
}

// L returns the package logger.  Before Init it is a no-op logger, which
// keeps tests quiet without nil checks at call sites.
func L() *zap.Logger {
	return log
}
