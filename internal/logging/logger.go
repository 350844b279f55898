package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Level resolves the stdout log level from LOG_LEVEL (debug/info/warn/error),
// defaulting to info. The PG handler ignores it and stays at ERROR+.
func Level() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: Level(),
	})
	slog.SetDefault(slog.New(handler))
}
