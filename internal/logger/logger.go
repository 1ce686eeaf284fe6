package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/retail-receipt-ingest/internal/config"
)

// NewLogger creates and configures a new slog.Logger
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source code location to log output
		AddSource: level == slog.LevelDebug,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler).With("app", cfg.Application.Name)

	logger.Info("logger initialized", "level", level)

	return logger
}
