// Package mutation implements the single-write executor: one network
// write per Execute call, cache invalidation on success, structured
// errors and exactly one notification on either outcome.
package mutation

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/streamlift/panel_core/internal/apierr"
	"github.com/streamlift/panel_core/internal/logging"
	"github.com/streamlift/panel_core/internal/metrics"
	"github.com/streamlift/panel_core/internal/notify"
	"github.com/streamlift/panel_core/internal/resource"
)

// Status is the lifecycle state of a mutation request.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// IdempotencyKeyHeader carries the client-generated idempotency key on
// every write so the backend can reject duplicate submissions. The
// primary duplicate-submit guard remains the UI's disable-while-pending
// discipline; this header is the backstop.
const IdempotencyKeyHeader = "X-Idempotency-Key"

// Request tracks one write from dispatch to settlement. The executor
// owns it for its lifetime and discards it after settlement; there is no
// persistent history.
type Request struct {
	ID             string
	Action         string
	Payload        any
	AffectedKeys   []resource.Key
	IdempotencyKey string

	mu     sync.Mutex
	status Status
	result json.RawMessage
	err    *apierr.ErrorInfo
	done   chan struct{}
}

// Status returns the current lifecycle state.
func (r *Request) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Result returns the server's response body once the request settled
// successfully.
func (r *Request) Result() json.RawMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Err returns the structured error once the request settled with a
// failure, nil otherwise.
func (r *Request) Err() *apierr.ErrorInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Done is closed when the request settles.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the request settles or the context ends.
func (r *Request) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Request) settle(result json.RawMessage, errInfo *apierr.ErrorInfo) {
	r.mu.Lock()
	if errInfo != nil {
		r.status = StatusError
		r.err = errInfo
	} else {
		r.status = StatusSuccess
		r.result = result
	}
	r.mu.Unlock()
	close(r.done)
}

// Doer performs the single network write for an action. The response
// body (possibly empty) is returned for 2xx; a non-2xx or transport
// failure comes back as an *apierr.ErrorInfo error.
type Doer interface {
	Write(ctx context.Context, action string, payload any, idempotencyKey string) (json.RawMessage, error)
}

// Executor performs writes and their cache-invalidation side effects.
// It supports concurrent independent mutations and never deduplicates or
// coalesces distinct Execute calls; callers needing strict ordering must
// serialize manually.
type Executor struct {
	doer    Doer
	cache   *resource.Cache
	bus     resource.Bus
	queue   *notify.Queue
	log     *logging.Logger
	metrics *metrics.Metrics
}

// NewExecutor creates an executor. The bus may be resource.NopBus{} for
// single-replica deployments; queue may be nil to suppress notifications
// (tests).
func NewExecutor(doer Doer, cache *resource.Cache, bus resource.Bus, queue *notify.Queue, log *logging.Logger, m *metrics.Metrics) *Executor {
	if bus == nil {
		bus = resource.NopBus{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Executor{doer: doer, cache: cache, bus: bus, queue: queue, log: log, metrics: m}
}

// Execute dispatches exactly one write and returns immediately with a
// Pending request that settles asynchronously. On success every affected
// key is invalidated (locally and on the bus) and one success
// notification is emitted. On failure nothing is invalidated, nothing is
// retried, and exactly one error notification is emitted.
func (e *Executor) Execute(ctx context.Context, action string, payload any, affectedKeys []resource.Key) *Request {
	req := &Request{
		ID:             uuid.NewString(),
		Action:         action,
		Payload:        payload,
		AffectedKeys:   affectedKeys,
		IdempotencyKey: uuid.NewString(),
		status:         StatusPending,
		done:           make(chan struct{}),
	}

	// The write outlives the dispatching consumer; only the explicit
	// transport timeout bounds it.
	writeCtx := context.WithoutCancel(ctx)
	go e.run(writeCtx, req)

	return req
}

// ExecuteWait dispatches a write and blocks until it settles, returning
// the settled failure (if any) as the error. The request is settled
// unless ctx ended first.
func (e *Executor) ExecuteWait(ctx context.Context, action string, payload any, affectedKeys []resource.Key) (*Request, error) {
	req := e.Execute(ctx, action, payload, affectedKeys)
	if err := req.Wait(ctx); err != nil {
		return req, err
	}
	if info := req.Err(); info != nil {
		return req, info
	}
	return req, nil
}

func (e *Executor) run(ctx context.Context, req *Request) {
	result, err := e.doer.Write(ctx, req.Action, req.Payload, req.IdempotencyKey)
	if err != nil {
		info := apierr.AsInfo(err)
		e.metrics.RecordMutation(req.Action, "error")
		e.log.Warn().
			Str("mutation_id", req.ID).
			Str("action", req.Action).
			Str("error", info.Message).
			Msg("mutation failed")
		if e.queue != nil {
			e.queue.Push(notify.KindError, "Request failed", info.Message)
		}
		req.settle(nil, info)
		return
	}

	for _, key := range req.AffectedKeys {
		e.cache.Invalidate(key)
		if busErr := e.bus.Publish(ctx, key); busErr != nil {
			e.log.Warn().Str("key", key.String()).Err(busErr).Msg("bus publish failed")
		}
	}

	e.metrics.RecordMutation(req.Action, "success")
	if e.queue != nil {
		e.queue.Push(notify.KindSuccess, "Saved", "")
	}
	req.settle(result, nil)
}
