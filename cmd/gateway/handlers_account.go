package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streamlift/panel_core/internal/domain/account"
	"github.com/streamlift/panel_core/internal/forms"
	"github.com/streamlift/panel_core/internal/session"
)

var (
	profileSchema  = forms.NewSchema[account.ProfileUpdate]()
	passwordSchema = forms.NewSchema[account.PasswordChange]()
)

func (s *server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()) == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"message": "authentication required",
		})
		return
	}

	var in account.ProfileUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if errs := profileSchema.Validate(in); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	action, payload, affected := account.UpdateProfile(in)
	req, err := s.executor.ExecuteWait(r.Context(), action, payload, affected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "result": req.Result()})
}

// handleChangePassword rejects mismatched confirmations before any
// network write happens; an invalid form never reaches the executor.
func (s *server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()) == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"message": "authentication required",
		})
		return
	}

	var in account.PasswordChange
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if errs := passwordSchema.Validate(in); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	action, payload, affected := account.ChangePassword(in)
	req, err := s.executor.ExecuteWait(r.Context(), action, payload, affected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID})
}

func (s *server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": s.queue.Active(),
	})
}

func (s *server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.queue.Dismiss(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "notification not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
