package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/uwdate/review-backend/internal/config"
)

// ParseLevel maps LOG_LEVEL ("debug", "info", "warn", "error") to a slog
// level. Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewHandler returns a JSON handler writing to w at the configured level.
// Every record carries the deployment environment.
func NewHandler(w io.Writer, cfg *config.Config) slog.Handler {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(cfg.LogLevel),
	})
	return handler.WithAttrs([]slog.Attr{slog.String("env", cfg.AppEnv)})
}

// Setup installs the stdout JSON handler as the default logger and returns
// it, so callers can fan it out together with other sinks.
func Setup(cfg *config.Config) slog.Handler {
	handler := NewHandler(os.Stdout, cfg)
	slog.SetDefault(slog.New(handler))
	return handler
}
