package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/grace-lang/grace/internal/config"
)

// New builds a logger writing to w (stderr when nil) at the configured level
// and format. Unknown levels fall back to warn.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Verbose lowers cfg's level to debug.
func Verbose(cfg config.LogConfig) config.LogConfig {
	cfg.Level = "debug"
	return cfg
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
