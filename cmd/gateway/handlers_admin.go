package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streamlift/panel_core/internal/domain/account"
	"github.com/streamlift/panel_core/internal/domain/invoice"
	"github.com/streamlift/panel_core/internal/domain/plan"
	"github.com/streamlift/panel_core/internal/domain/provider"
	"github.com/streamlift/panel_core/internal/domain/siteconfig"
	"github.com/streamlift/panel_core/internal/forms"
	"github.com/streamlift/panel_core/internal/resource"
)

// ============================================================================
// Invoices
// ============================================================================

// invoiceWrite is the admin invoice form payload. Totals are computed
// server-side from the line items, never trusted from the client.
type invoiceWrite struct {
	UserID        string             `json:"user_id" validate:"required"`
	Items         []invoice.LineItem `json:"items" validate:"required,min=1"`
	TaxCents      int64              `json:"tax_cents" validate:"gte=0"`
	DiscountCents int64              `json:"discount_cents" validate:"gte=0"`
	Status        string             `json:"status" validate:"omitempty,oneof=draft issued paid void"`
}

var invoiceSchema = forms.NewSchema[invoiceWrite]()

func (s *server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	entry, err := s.cache.Get(r.Context(), invoice.ListKey())
	if err != nil && entry.Data == nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entryJSON(entry)})
}

func (s *server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	s.writeInvoice(w, r, "POST /api/v1/admin/invoices", http.StatusCreated)
}

func (s *server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.writeInvoice(w, r, "PUT /api/v1/admin/invoices/"+id, http.StatusOK)
}

func (s *server) writeInvoice(w http.ResponseWriter, r *http.Request, action string, okStatus int) {
	var in invoiceWrite
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if errs := invoiceSchema.Validate(in); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	totals, err := invoice.ComputeTotals(in.Items, in.TaxCents, in.DiscountCents)
	if err != nil {
		writeFieldErrors(w, map[string]string{"items": err.Error()})
		return
	}

	body := map[string]any{
		"user_id":        in.UserID,
		"items":          in.Items,
		"tax_cents":      totals.TaxCents,
		"discount_cents": totals.DiscountCents,
		"subtotal_cents": totals.SubtotalCents,
		"total_cents":    totals.TotalCents,
		"status":         in.Status,
	}

	req, err := s.executor.ExecuteWait(r.Context(), action, body,
		[]resource.Key{invoice.ListKey()})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, okStatus, map[string]any{
		"id":     req.ID,
		"totals": totals,
		"result": req.Result(),
	})
}

// ============================================================================
// Plans
// ============================================================================

// planWrite is the admin plan form payload.
type planWrite struct {
	Name          string   `json:"name" validate:"required,max=128"`
	Description   string   `json:"description" validate:"max=2000"`
	Platform      string   `json:"platform" validate:"required,oneof=twitch youtube kick"`
	PriceCents    int64    `json:"price_cents" validate:"gte=0"`
	BillingPeriod string   `json:"billing_period" validate:"required,oneof=monthly quarterly yearly"`
	Features      []string `json:"features"`
	ViewerCount   int      `json:"viewer_count" validate:"gte=0"`
	Visible       bool     `json:"visible"`
}

var planSchema = forms.NewSchema[planWrite]()

func (s *server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	s.writePlan(w, r, "POST /api/v1/admin/plans", http.StatusCreated)
}

func (s *server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.writePlan(w, r, "PUT /api/v1/admin/plans/"+id, http.StatusOK)
}

func (s *server) writePlan(w http.ResponseWriter, r *http.Request, action string, okStatus int) {
	var in planWrite
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.Features = forms.CompactBlank(in.Features)

	if errs := planSchema.Validate(in); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	req, err := s.executor.ExecuteWait(r.Context(), action, in,
		[]resource.Key{plan.ListKey()})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, okStatus, map[string]any{"id": req.ID, "result": req.Result()})
}

func (s *server) handleTogglePlanVisibility(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Visible bool `json:"visible"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	action, payload, affected := plan.ToggleVisibility(mux.Vars(r)["id"], in.Visible)
	req, err := s.executor.ExecuteWait(r.Context(), action, payload, affected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "result": req.Result()})
}

// ============================================================================
// Providers
// ============================================================================

var providerImportSchema = forms.NewSchema[provider.ImportRequest]()

func (s *server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	entry, err := s.cache.Get(r.Context(), provider.ListKey())
	if err != nil && entry.Data == nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entryJSON(entry)})
}

func (s *server) handleImportProvider(w http.ResponseWriter, r *http.Request) {
	var in provider.ImportRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if errs := providerImportSchema.Validate(in); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	action, payload, affected := provider.Import(in)
	req, err := s.executor.ExecuteWait(r.Context(), action, payload, affected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": req.ID, "result": req.Result()})
}

func (s *server) handleToggleProviderActive(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Active bool `json:"active"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	action, payload, affected := provider.ToggleActive(mux.Vars(r)["id"], in.Active)
	req, err := s.executor.ExecuteWait(r.Context(), action, payload, affected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "result": req.Result()})
}

// ============================================================================
// Users
// ============================================================================

func (s *server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	entry, err := s.cache.Get(r.Context(), account.ListKey())
	if err != nil && entry.Data == nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entryJSON(entry)})
}

func (s *server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in account.AdminPatch
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	action, payload, affected := account.AdminUpdate(mux.Vars(r)["id"], in)
	req, err := s.executor.ExecuteWait(r.Context(), action, payload, affected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "result": req.Result()})
}

func (s *server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	action, affected := account.AdminDelete(mux.Vars(r)["id"])
	req, err := s.executor.ExecuteWait(r.Context(), action, nil, affected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID})
}

// ============================================================================
// Settings
// ============================================================================

var settingsSchema = forms.NewSchema[siteconfig.Config]()

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	entry, err := s.cache.Get(r.Context(), siteconfig.Key())
	if err != nil && entry.Data == nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entryJSON(entry)})
}

// handleUpdateSettings reconciles the cache from the server echo: the
// backend's response body becomes the cached document, so what the
// admin sees next is exactly what the server persisted.
func (s *server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in siteconfig.Config
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if errs := settingsSchema.Validate(in); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	action, payload, affected := siteconfig.Update(in)
	req, err := s.executor.ExecuteWait(r.Context(), action, payload, affected)
	if err != nil {
		writeError(w, err)
		return
	}

	var echoed siteconfig.Config
	if err := json.Unmarshal(req.Result(), &echoed); err == nil {
		s.cache.SetData(siteconfig.Key(), echoed)
		writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "config": echoed})
		return
	}

	// No usable echo; fall back to invalidation so the next read
	// refetches.
	s.cache.Invalidate(siteconfig.Key())
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID})
}
