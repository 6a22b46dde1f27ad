// Package apierr defines the structured error taxonomy shared by the
// resource cache, the mutation executor, and the gateway handlers.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a failure for surfacing decisions.
type Kind int

const (
	// KindNetwork is a transport failure with no usable response.
	KindNetwork Kind = iota
	// KindServer is a non-2xx response (4xx/5xx) from the backend.
	KindServer
	// KindValidation is a client-side pre-submission failure.
	KindValidation
	// KindConflict is a 409 stale-state or duplicate-submission response.
	// It is surfaced the same way as KindServer but tagged for callers
	// that want to branch on it.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// ErrorInfo is the settled form of an expected failure. The cache and the
// executor never let expected failures escape as plain errors; they resolve
// entries and requests with an ErrorInfo instead.
type ErrorInfo struct {
	HTTPStatus int    `json:"http_status"`
	Message    string `json:"message"`
	Kind       Kind   `json:"kind"`
}

// Error implements the error interface so an ErrorInfo can also travel
// through ordinary error returns at package boundaries.
func (e *ErrorInfo) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

const genericMessage = "request failed, try again later"

// FromResponse builds an ErrorInfo from a non-2xx response. The server's
// own message is used when the body carries one ("message" or "error"
// JSON fields); otherwise a generic fallback.
func FromResponse(status int, body []byte) *ErrorInfo {
	kind := KindServer
	if status == 409 {
		kind = KindConflict
	}

	msg := messageFromBody(body)
	if msg == "" {
		msg = genericMessage
	}

	return &ErrorInfo{
		HTTPStatus: status,
		Message:    msg,
		Kind:       kind,
	}
}

// FromTransport builds an ErrorInfo from a failure that produced no
// response at all. Context cancellation is reported as-is; everything
// else becomes a generic network error.
func FromTransport(err error) *ErrorInfo {
	msg := genericMessage

	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	case errors.As(err, &netErr) && netErr.Timeout():
		msg = "request timed out"
	}

	return &ErrorInfo{
		HTTPStatus: 0,
		Message:    msg,
		Kind:       KindNetwork,
	}
}

// Validation builds a client-side validation ErrorInfo. Field errors are
// flattened into the message for logging; screens keep the per-field map.
func Validation(fields map[string]string) *ErrorInfo {
	parts := make([]string, 0, len(fields))
	for field, msg := range fields {
		parts = append(parts, field+": "+msg)
	}

	msg := "validation failed"
	if len(parts) > 0 {
		msg = "validation failed: " + strings.Join(parts, "; ")
	}

	return &ErrorInfo{
		Message: msg,
		Kind:    KindValidation,
	}
}

// AsInfo converts any error into an ErrorInfo, passing through values that
// already are one. Unexpected failures (e.g. a malformed JSON body) are
// treated as server errors with a generic message.
func AsInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	var info *ErrorInfo
	if errors.As(err, &info) {
		return info
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FromTransport(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return FromTransport(err)
	}
	return &ErrorInfo{Message: genericMessage, Kind: KindServer}
}

// messageFromBody probes an arbitrary JSON error body for a human-readable
// message. Bodies are backend-shaped, not ours, so probing beats decoding
// into a fixed struct.
func messageFromBody(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"message", "error", "detail"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
