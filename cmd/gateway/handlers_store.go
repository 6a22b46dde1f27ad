package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streamlift/panel_core/internal/domain/plan"
	"github.com/streamlift/panel_core/internal/domain/subscription"
	"github.com/streamlift/panel_core/internal/session"
)

func (s *server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	entry, err := s.cache.Get(r.Context(), plan.ListKey())
	if err != nil && entry.Data == nil {
		writeError(w, err)
		return
	}

	plans, _ := entry.Data.([]plan.Plan)

	// Only admins see hidden plans.
	if user := session.FromContext(r.Context()); !user.IsAdmin() {
		visible := make([]plan.Plan, 0, len(plans))
		for _, p := range plans {
			if p.Visible {
				visible = append(visible, p)
			}
		}
		plans = visible
	}

	payload := entryJSON(entry)
	payload.Data = plans
	writeJSON(w, http.StatusOK, map[string]any{"entry": payload})
}

func (s *server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	user := session.FromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"message": "authentication required",
		})
		return
	}

	entry, err := s.cache.Get(r.Context(), subscription.ListKey(user.ID))
	if err != nil && entry.Data == nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entryJSON(entry)})
}

func (s *server) handleChangeSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	user := session.FromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"message": "authentication required",
		})
		return
	}

	var in struct {
		Status subscription.Status `json:"status"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	// The current status comes from the cached list so the lifecycle
	// check runs against what the user is looking at.
	entry, err := s.cache.Get(r.Context(), subscription.ListKey(user.ID))
	if err != nil && entry.Data == nil {
		writeError(w, err)
		return
	}

	subs, _ := entry.Data.([]subscription.Subscription)
	id := mux.Vars(r)["id"]

	var current *subscription.Subscription
	for i := range subs {
		if subs[i].ID == id && subs[i].UserID == user.ID {
			current = &subs[i]
			break
		}
	}
	if current == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "subscription not found"})
		return
	}

	action, payload, affected, err := subscription.ChangeStatus(*current, in.Status)
	if err != nil {
		writeFieldErrors(w, map[string]string{"status": err.Error()})
		return
	}

	req, err := s.executor.ExecuteWait(r.Context(), action, payload, affected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "result": req.Result()})
}
