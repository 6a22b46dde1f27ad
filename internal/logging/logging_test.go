package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if TraceIDFrom(ctx) != "" {
		t.Error("empty context should have no trace ID")
	}

	id := NewTraceID()
	if id == "" {
		t.Fatal("NewTraceID returned empty string")
	}

	ctx = WithTraceID(ctx, id)
	if got := TraceIDFrom(ctx); got != id {
		t.Errorf("TraceIDFrom = %q, want %q", got, id)
	}
}

func TestNewTraceID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTraceID()
		if seen[id] {
			t.Fatalf("duplicate trace ID: %s", id)
		}
		seen[id] = true
	}
}

func TestLogRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("gateway", "info", &buf)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.LogRequest(ctx, "GET", "/api/reviews", 200, 15*time.Millisecond)

	out := buf.String()
	for _, want := range []string{"trace-123", "GET", "/api/reviews", "200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("test", "error", &buf)

	logger.Info().Msg("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info log should be filtered at error level, got %s", buf.String())
	}

	logger.Error().Msg("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("error log should pass at error level")
	}
}
