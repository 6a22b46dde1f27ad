// Package plan holds the subscription-plan entity sold on the
// storefront and the admin mutations that manage it.
package plan

import (
	"github.com/streamlift/panel_core/internal/resource"
)

// Plan is one purchasable subscription tier for a streaming platform.
type Plan struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Platform      string   `json:"platform"`
	PriceCents    int64    `json:"price_cents"`
	BillingPeriod string   `json:"billing_period"`
	Features      []string `json:"features"`
	ViewerCount   int      `json:"viewer_count"`
	Visible       bool     `json:"visible"`
}

// ListKey addresses the cached plan list shared by the storefront and
// the admin screens.
func ListKey() resource.Key {
	return resource.NewKey("subscription-plans")
}

// VisibilityPatch is the body of a visibility toggle write.
type VisibilityPatch struct {
	Visible bool `json:"visible"`
}

// ToggleVisibility builds the targeted write that flips a single plan's
// storefront visibility. It touches exactly one plan and dirties only
// the plan list, never replacing the collection wholesale.
func ToggleVisibility(id string, visible bool) (action string, payload VisibilityPatch, affected []resource.Key) {
	return "PATCH /api/v1/admin/plans/" + id, VisibilityPatch{Visible: visible}, []resource.Key{ListKey()}
}
