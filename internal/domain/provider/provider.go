// Package provider holds the upstream SMM-provider entity the admin
// back office imports services from.
package provider

import (
	"github.com/streamlift/panel_core/internal/resource"
)

// Provider is one upstream service supplier configured by an admin.
type Provider struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	APIURL   string `json:"api_url"`
	Balance  int64  `json:"balance_cents"`
	Currency string `json:"currency"`
	Active   bool   `json:"active"`
	Services int    `json:"services"`
}

// ListKey addresses the cached provider list.
func ListKey() resource.Key {
	return resource.NewKey("providers")
}

// ImportRequest asks the backend to pull a provider's service catalog
// through its API.
type ImportRequest struct {
	Name   string `json:"name" validate:"required,max=128"`
	APIURL string `json:"api_url" validate:"required,url"`
	APIKey string `json:"api_key" validate:"required"`
}

// Import builds the write that registers a provider and imports its
// catalog.
func Import(req ImportRequest) (action string, payload ImportRequest, affected []resource.Key) {
	return "POST /api/v1/admin/providers/import", req, []resource.Key{ListKey()}
}

// ActivePatch is the body of an active toggle write.
type ActivePatch struct {
	Active bool `json:"active"`
}

// ToggleActive builds the targeted write that enables or disables one
// provider without touching the rest of the list.
func ToggleActive(id string, active bool) (action string, payload ActivePatch, affected []resource.Key) {
	return "PATCH /api/v1/admin/providers/" + id, ActivePatch{Active: active}, []resource.Key{ListKey()}
}
