// Package observability provides structured logging for the director host.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/survivor/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
// Output goes to stderr so it never interleaves with the interactive console.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// ForGame returns a child logger tagged with the game and session mode.
func ForGame(logger *zap.Logger, gameID uint64, mode string) *zap.Logger {
	return logger.With(
		zap.Uint64("game_id", gameID),
		zap.String("mode", mode),
	)
}
