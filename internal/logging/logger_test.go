package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Setenv("LOG_LEVEL", tt.in)
		if got := Level(); got != tt.want {
			t.Errorf("Level() with LOG_LEVEL=%q = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("db down") }
func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return f }
func (f failingHandler) WithGroup(string) slog.Handler           { return f }

func TestMultiHandlerDeliversPastFailingHandler(t *testing.T) {
	var buf bytes.Buffer
	ok := slog.NewJSONHandler(&buf, nil)
	m := NewMultiHandler(failingHandler{}, ok)

	logger := slog.New(m)
	logger.Error("boom")

	if buf.Len() == 0 {
		t.Fatal("record did not reach the second handler")
	}
}
