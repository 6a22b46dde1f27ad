package mutation

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/streamlift/panel_core/internal/apierr"
	"github.com/streamlift/panel_core/internal/notify"
	"github.com/streamlift/panel_core/internal/resource"
)

type fakeDoer struct {
	mu       sync.Mutex
	writes   int
	lastKeys []string
	result   json.RawMessage
	err      error
	block    chan struct{}
}

func (d *fakeDoer) Write(ctx context.Context, action string, payload any, idempotencyKey string) (json.RawMessage, error) {
	d.mu.Lock()
	d.writes++
	d.lastKeys = append(d.lastKeys, idempotencyKey)
	block := d.block
	d.mu.Unlock()

	if block != nil {
		<-block
	}
	return d.result, d.err
}

func (d *fakeDoer) writeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}

func seededCache(t *testing.T, keys ...resource.Key) *resource.Cache {
	t.Helper()
	cache := resource.New(
		resource.FetchFunc(func(ctx context.Context, key resource.Key) (any, error) {
			return "seeded", nil
		}),
		resource.WithDefaultPolicy(resource.Policy{StaleAfter: time.Hour}),
	)
	for _, key := range keys {
		if _, err := cache.Get(context.Background(), key); err != nil {
			t.Fatal(err)
		}
	}
	return cache
}

func TestExecutor_SuccessInvalidatesAffectedKeys(t *testing.T) {
	affected := resource.NewKey("reviews", "p1")
	untouched := resource.NewKey("plans")
	cache := seededCache(t, affected, untouched)

	doer := &fakeDoer{result: json.RawMessage(`{"id":"r9"}`)}
	exec := NewExecutor(doer, cache, nil, nil, nil, nil)

	req, err := exec.ExecuteWait(context.Background(), "POST /api/v1/reviews", map[string]any{"rating": 5}, []resource.Key{affected})
	if err != nil {
		t.Fatal(err)
	}
	if req.Status() != StatusSuccess {
		t.Fatalf("Status = %v, want success", req.Status())
	}
	if string(req.Result()) != `{"id":"r9"}` {
		t.Errorf("Result = %s, want server body", req.Result())
	}

	entry, _ := cache.Lookup(affected)
	if !entry.Stale {
		t.Error("affected key should be stale after a successful mutation")
	}
	if entry.Data != "seeded" {
		t.Error("invalidation should not blank the affected key's data")
	}

	entry, _ = cache.Lookup(untouched)
	if entry.Stale {
		t.Error("unrelated key should not be invalidated")
	}
}

func TestExecutor_FailureLeavesCacheUntouched(t *testing.T) {
	affected := resource.NewKey("invoices")
	cache := seededCache(t, affected)

	doer := &fakeDoer{err: apierr.FromResponse(500, []byte(`{"message":"boom"}`))}
	exec := NewExecutor(doer, cache, nil, nil, nil, nil)

	req, err := exec.ExecuteWait(context.Background(), "POST /api/v1/admin/invoices", nil, []resource.Key{affected})
	if err == nil {
		t.Fatal("expected the settled failure as the error")
	}
	if req.Status() != StatusError {
		t.Fatalf("Status = %v, want error", req.Status())
	}
	if req.Err() == nil || req.Err().Message != "boom" {
		t.Errorf("Err = %v, want server message", req.Err())
	}

	entry, _ := cache.Lookup(affected)
	if entry.Stale {
		t.Error("failed mutation must not invalidate any affected key")
	}
}

func TestExecutor_ReturnsPendingImmediately(t *testing.T) {
	cache := seededCache(t)
	doer := &fakeDoer{block: make(chan struct{}), result: json.RawMessage(`{}`)}
	exec := NewExecutor(doer, cache, nil, nil, nil, nil)

	req := exec.Execute(context.Background(), "PATCH /api/v1/plans/1", nil, nil)
	if req.Status() != StatusPending {
		t.Errorf("Status = %v, want pending before settlement", req.Status())
	}

	close(doer.block)
	if err := req.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if req.Status() != StatusSuccess {
		t.Errorf("Status = %v, want success after settlement", req.Status())
	}
}

func TestExecutor_EmitsExactlyOneNotificationPerOutcome(t *testing.T) {
	cache := seededCache(t)
	queue := notify.NewQueue(notify.WithTTL(time.Minute))
	defer queue.Close()

	okDoer := &fakeDoer{result: json.RawMessage(`{}`)}
	exec := NewExecutor(okDoer, cache, nil, queue, nil, nil)
	if _, err := exec.ExecuteWait(context.Background(), "PUT /api/v1/site-config", nil, nil); err != nil {
		t.Fatal(err)
	}

	failDoer := &fakeDoer{err: apierr.FromResponse(422, []byte(`{"message":"invalid"}`))}
	exec = NewExecutor(failDoer, cache, nil, queue, nil, nil)
	if _, err := exec.ExecuteWait(context.Background(), "PUT /api/v1/site-config", nil, nil); err == nil {
		t.Fatal("expected the settled failure as the error")
	}

	active := queue.Active()
	if len(active) != 2 {
		t.Fatalf("notifications = %d, want exactly 2 (one per mutation)", len(active))
	}
	if active[0].Kind != notify.KindSuccess {
		t.Errorf("first notification kind = %v, want success", active[0].Kind)
	}
	if active[1].Kind != notify.KindError {
		t.Errorf("second notification kind = %v, want error", active[1].Kind)
	}
	if active[1].Description != "invalid" {
		t.Errorf("error notification should carry the server message, got %q", active[1].Description)
	}
}

func TestExecutor_ConcurrentIndependentMutations(t *testing.T) {
	cache := seededCache(t)
	doer := &fakeDoer{result: json.RawMessage(`{}`)}
	exec := NewExecutor(doer, cache, nil, nil, nil, nil)

	const n = 5
	reqs := make([]*Request, n)
	for i := 0; i < n; i++ {
		reqs[i] = exec.Execute(context.Background(), "POST /api/v1/reviews", i, nil)
	}
	for _, req := range reqs {
		if err := req.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
		if req.Status() != StatusSuccess {
			t.Errorf("Status = %v, want success", req.Status())
		}
	}
	if doer.writeCount() != n {
		t.Errorf("writes = %d, want %d (no coalescing)", doer.writeCount(), n)
	}
}

func TestExecutor_IdempotencyKeysDiffer(t *testing.T) {
	cache := seededCache(t)
	doer := &fakeDoer{result: json.RawMessage(`{}`)}
	exec := NewExecutor(doer, cache, nil, nil, nil, nil)

	for i := 0; i < 2; i++ {
		if _, err := exec.ExecuteWait(context.Background(), "POST /api/v1/reviews", nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	doer.mu.Lock()
	defer doer.mu.Unlock()
	if len(doer.lastKeys) != 2 || doer.lastKeys[0] == doer.lastKeys[1] {
		t.Errorf("each Execute should carry a fresh idempotency key, got %v", doer.lastKeys)
	}
}
