package subscription

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusActive, StatusCanceled, true},
		{StatusActive, StatusPastDue, true},
		{StatusPastDue, StatusActive, true},
		{StatusCanceled, StatusActive, true},
		{StatusCanceled, StatusPastDue, false},
		{StatusExpired, StatusPastDue, false},
		{StatusActive, StatusActive, false},
		{Status("bogus"), StatusActive, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestChangeStatus(t *testing.T) {
	sub := Subscription{ID: "sub-1", UserID: "user-9", Status: StatusActive}

	action, payload, affected, err := ChangeStatus(sub, StatusCanceled)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if action != "PATCH /api/v1/subscriptions/sub-1" {
		t.Fatalf("action = %q", action)
	}
	if payload.Status != StatusCanceled {
		t.Fatalf("payload = %+v", payload)
	}
	if len(affected) != 1 || affected[0].String() != "subscriptions/user-9" {
		t.Fatalf("affected = %v", affected)
	}

	if _, _, _, err := ChangeStatus(Subscription{Status: StatusCanceled}, StatusExpired); err == nil {
		t.Fatal("expected disallowed transition to error")
	}
}
