// Package subscription holds the customer subscription entity and its
// status lifecycle.
package subscription

import (
	"fmt"
	"time"

	"github.com/streamlift/panel_core/internal/resource"
)

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// transitions maps each status to the statuses it may move to.
var transitions = map[Status][]Status{
	StatusActive:   {StatusPastDue, StatusCanceled, StatusExpired},
	StatusPastDue:  {StatusActive, StatusCanceled, StatusExpired},
	StatusCanceled: {StatusActive},
	StatusExpired:  {StatusActive},
}

// CanTransition reports whether a subscription may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Subscription is one customer's active relationship to a plan.
type Subscription struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	PlanID     string     `json:"plan_id"`
	Status     Status     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	RenewsAt   time.Time  `json:"renews_at"`
	CanceledAt *time.Time `json:"canceled_at,omitempty"`
}

// ListKey addresses one user's cached subscription list.
func ListKey(userID string) resource.Key {
	return resource.NewKey("subscriptions", userID)
}

// StatusPatch is the body of a status-change write.
type StatusPatch struct {
	Status Status `json:"status"`
}

// ChangeStatus builds the write that moves a subscription to a new
// status, rejecting transitions the lifecycle does not allow.
func ChangeStatus(sub Subscription, next Status) (action string, payload StatusPatch, affected []resource.Key, err error) {
	if !sub.Status.CanTransition(next) {
		return "", StatusPatch{}, nil, fmt.Errorf("subscription %s: cannot move from %s to %s", sub.ID, sub.Status, next)
	}
	return "PATCH /api/v1/subscriptions/" + sub.ID,
		StatusPatch{Status: next},
		[]resource.Key{ListKey(sub.UserID)},
		nil
}
