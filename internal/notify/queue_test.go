package notify

import (
	"testing"
	"time"
)

func newTestQueue(now *time.Time) *Queue {
	return NewQueue(
		WithTTL(5*time.Second),
		WithClock(func() time.Time { return *now }),
	)
}

func TestQueue_FIFOOrder(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)
	defer q.Close()

	q.Push(KindSuccess, "first", "")
	q.Push(KindError, "second", "")
	q.Push(KindInfo, "third", "")

	active := q.Active()
	if len(active) != 3 {
		t.Fatalf("Active = %d items, want 3", len(active))
	}
	for i, want := range []string{"first", "second", "third"} {
		if active[i].Title != want {
			t.Errorf("active[%d].Title = %q, want %q", i, active[i].Title, want)
		}
	}
}

func TestQueue_Expiry(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)
	defer q.Close()

	q.Push(KindSuccess, "short-lived", "")
	q.PushWithTTL(KindInfo, "long-lived", "", time.Minute)

	now = now.Add(6 * time.Second)

	active := q.Active()
	if len(active) != 1 {
		t.Fatalf("Active = %d items, want 1", len(active))
	}
	if active[0].Title != "long-lived" {
		t.Errorf("surviving item = %q, want long-lived", active[0].Title)
	}
}

func TestQueue_Dismiss(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)
	defer q.Close()

	id := q.Push(KindError, "dismiss me", "")
	q.Push(KindInfo, "keep me", "")

	if !q.Dismiss(id) {
		t.Error("Dismiss should report the item was present")
	}
	if q.Dismiss(id) {
		t.Error("second Dismiss should report absence")
	}

	active := q.Active()
	if len(active) != 1 || active[0].Title != "keep me" {
		t.Errorf("Active = %v, want only the kept item", active)
	}
}

func TestQueue_SweepRemovesExpired(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)
	defer q.Close()

	q.Push(KindSuccess, "gone soon", "")
	now = now.Add(10 * time.Second)

	q.dropExpired()

	q.mu.Lock()
	remaining := len(q.items)
	q.mu.Unlock()
	if remaining != 0 {
		t.Errorf("sweeper left %d items, want 0", remaining)
	}
}

func TestQueue_UniqueIDs(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)
	defer q.Close()

	a := q.Push(KindInfo, "a", "")
	b := q.Push(KindInfo, "b", "")
	if a == b {
		t.Error("notification IDs should be unique")
	}
}
