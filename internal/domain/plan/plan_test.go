package plan

import "testing"

func TestToggleVisibility(t *testing.T) {
	action, payload, affected := ToggleVisibility("plan-42", false)

	if action != "PATCH /api/v1/admin/plans/plan-42" {
		t.Fatalf("action = %q", action)
	}
	if payload.Visible {
		t.Fatal("payload.Visible = true, want false")
	}
	if len(affected) != 1 || affected[0].String() != "subscription-plans" {
		t.Fatalf("affected = %v, want exactly the plan list key", affected)
	}
}
