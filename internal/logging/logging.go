// Package logging provides structured logging with trace IDs for the
// panel core. All components log through a *Logger so the gateway can
// correlate cache, mutation, and HTTP activity per request.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type traceIDKey struct{}

// Logger wraps zerolog with trace-ID helpers.
type Logger struct {
	zerolog.Logger
}

// New creates a logger for the named service at the given level
// ("debug", "info", "warn", "error"; anything else means info).
func New(service, level string) *Logger {
	return NewWithWriter(service, level, os.Stderr)
}

// NewWithWriter creates a logger writing to w. Used by tests.
func NewWithWriter(service, level string, w io.Writer) *Logger {
	zl := zerolog.New(w).With().
		Timestamp().
		Str("service", service).
		Logger().
		Level(parseLevel(level))
	return &Logger{zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewTraceID generates a fresh trace ID.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID returns a context carrying the trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFrom extracts the trace ID from the context, empty if absent.
func TraceIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// LogRequest logs one completed HTTP request with its trace ID.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	l.Info().
		Str("trace_id", TraceIDFrom(ctx)).
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration", duration).
		Msg("http request")
}
