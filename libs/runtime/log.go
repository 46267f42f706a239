package runtime

import (
	"log/slog"
	"os"
)

// NewLogger builds the JSON logger every component shares. LOG_LEVEL
// (debug, info, warn, error) adjusts verbosity; the default is info.
func NewLogger(service string) *slog.Logger {
	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		_ = level.UnmarshalText([]byte(v))
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With("service", service)
}
