package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_DefaultLevel(t *testing.T) {
	logger := New("", "text")
	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug level to be disabled by default")
	}
}

func TestNew_DebugLevel(t *testing.T) {
	logger := New("debug", "text")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug level to be enabled")
	}
}

func TestNew_ErrorLevel(t *testing.T) {
	logger := New("error", "json")
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Expected info level to be disabled at error level")
	}
}

func TestNew_TagsServiceName(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "text")
	logger.Info("hello")
	if !strings.Contains(buf.String(), "service=fraudscore") {
		t.Errorf("expected service attribute in output, got %q", buf.String())
	}

	buf.Reset()
	logger = newLogger(&buf, "info", "json")
	logger.Info("hello")
	if !strings.Contains(buf.String(), `"service":"fraudscore"`) {
		t.Errorf("expected service attribute in JSON output, got %q", buf.String())
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	if id := RequestID(ctx); id != "" {
		t.Errorf("Expected empty request ID, got %q", id)
	}

	ctx = WithRequestID(ctx, "req-123")
	if id := RequestID(ctx); id != "req-123" {
		t.Errorf("Expected req-123, got %q", id)
	}

	ctx = WithRequestID(ctx, "req-456")
	if id := RequestID(ctx); id != "req-456" {
		t.Errorf("Expected req-456, got %q", id)
	}
}

func TestLoggerRoundTrip(t *testing.T) {
	ctx := context.Background()

	if logger := FromContext(ctx); logger == nil {
		t.Fatal("Expected default logger")
	}

	custom := New("debug", "json")
	ctx = WithLogger(ctx, custom)
	if got := FromContext(ctx); got != custom {
		t.Error("Expected custom logger from context")
	}
}

func TestL(t *testing.T) {
	ctx := WithLogger(context.Background(), New("info", "text"))
	if L(ctx) == nil {
		t.Fatal("Expected non-nil logger from L()")
	}

	ctx = WithRequestID(ctx, "req-789")
	if L(ctx) == nil {
		t.Fatal("Expected non-nil logger from L() with request ID")
	}
}
