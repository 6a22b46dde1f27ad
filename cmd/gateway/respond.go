package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/streamlift/panel_core/internal/apierr"
	"github.com/streamlift/panel_core/internal/resource"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses: validation
// failures carry their field map, network failures become 502, server
// failures keep the backend's status.
func writeError(w http.ResponseWriter, err error) {
	info := apierr.AsInfo(err)

	status := http.StatusInternalServerError
	switch info.Kind {
	case apierr.KindValidation:
		status = http.StatusUnprocessableEntity
	case apierr.KindNetwork:
		status = http.StatusBadGateway
	case apierr.KindServer, apierr.KindConflict:
		if info.HTTPStatus > 0 {
			status = info.HTTPStatus
		}
	}

	writeJSON(w, status, map[string]any{
		"message": info.Message,
		"kind":    info.Kind.String(),
	})
}

func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": "validation failed",
		"fields":  fields,
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// entryPayload is the wire shape of a cache read: last-known-good data
// plus the freshness the screen needs to render spinners and banners.
type entryPayload struct {
	Data      any    `json:"data"`
	Status    string `json:"status"`
	Stale     bool   `json:"stale"`
	FetchedAt string `json:"fetched_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

func entryJSON(e resource.Entry) entryPayload {
	p := entryPayload{
		Data:   e.Data,
		Status: e.Status.String(),
		Stale:  e.Stale,
	}
	if !e.FetchedAt.IsZero() {
		p.FetchedAt = e.FetchedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if e.Err != nil {
		p.Error = e.Err.Message
	}
	return p
}
