package logger

import (
	"log/slog"
	"os"
	"strings"

	"go-courier/config"
)

// Logger wraps slog so callers depend on one app-owned type.
type Logger struct {
	*slog.Logger
}

func NewLogger(cfg *config.Config) (*Logger, error) {
	level := parseLevel(cfg.Logger.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logger.Development {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return &Logger{Logger: slog.New(handler)}, nil
}

// Default returns a JSON logger at info level for code paths that run
// before configuration is available.
func Default() *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stdout, nil))}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
