package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "info", "json")
		logger.Debug("hidden")
		logger.Info("dialect inferred", "separator", "comma")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("debug entry should be filtered at info level")
		}
		if !strings.Contains(out, `"separator":"comma"`) {
			t.Errorf("expected JSON attribute, got %s", out)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "debug", "text").Debug("sampled", "lines", 3)
		if !strings.Contains(buf.String(), "lines=3") {
			t.Errorf("expected text attribute, got %s", buf.String())
		}
	})
}

func TestFromContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	WithFields(ctx, "table", "orders").Info("import started")

	out := buf.String()
	if !strings.Contains(out, "request_id=req-42") {
		t.Errorf("expected request_id, got %s", out)
	}
	if !strings.Contains(out, "table=orders") {
		t.Errorf("expected table field, got %s", out)
	}
}
