// Package siteconfig holds the site-wide settings document edited on
// the admin settings screen.
package siteconfig

import (
	"github.com/streamlift/panel_core/internal/resource"
)

// Config is the site-wide settings document. The backend is the source
// of truth: after a successful update the server echo replaces the
// cached copy directly.
type Config struct {
	SiteName        string `json:"site_name" validate:"required,max=128"`
	SupportEmail    string `json:"support_email" validate:"required,email"`
	CurrencyCode    string `json:"currency_code" validate:"required,len=3"`
	Announcement    string `json:"announcement"`
	MaintenanceMode bool   `json:"maintenance_mode"`
}

// Key addresses the cached settings document.
func Key() resource.Key {
	return resource.NewKey("site-config")
}

// Update builds the write that replaces the settings document. The
// caller reconciles the cache from the server echo rather than through
// invalidation, so no keys are dirtied here.
func Update(cfg Config) (action string, payload Config, affected []resource.Key) {
	return "PUT /api/v1/admin/site-config", cfg, nil
}
