// Package resource implements the process-wide remote resource cache:
// keyed entries with staleness tracking, request de-duplication, and
// manual invalidation. All screen reads go through Cache.Get; nothing
// else touches entry internals.
package resource

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/streamlift/panel_core/internal/apierr"
	"github.com/streamlift/panel_core/internal/logging"
	"github.com/streamlift/panel_core/internal/metrics"
)

// Status is the lifecycle state of a cache entry.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Staleness policy sentinels for Policy.StaleAfter.
const (
	// RevalidateAlways makes every access refetch.
	RevalidateAlways time.Duration = 0
	// KeepUntilInvalidated caches until an explicit invalidation.
	KeepUntilInvalidated time.Duration = -1
)

// Policy configures staleness per key family.
type Policy struct {
	// StaleAfter is how long a successful fetch stays fresh.
	// RevalidateAlways (0) means revalidate on every access;
	// KeepUntilInvalidated (< 0) means only explicit invalidation.
	StaleAfter time.Duration
	// RefreshOnFocus marks the family stale on NotifyFocus. List
	// resources default to true.
	RefreshOnFocus bool
}

// Entry is a snapshot of a cached resource's state. Data retains the
// last-known-good value through staleness and fetch errors so screens
// never blank out.
type Entry struct {
	Key       Key
	Status    Status
	Data      any
	Err       *apierr.ErrorInfo
	FetchedAt time.Time
	Stale     bool
}

// Fetcher loads one resource from the backend.
type Fetcher interface {
	Fetch(ctx context.Context, key Key) (any, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context, key Key) (any, error)

// Fetch implements Fetcher.
func (f FetchFunc) Fetch(ctx context.Context, key Key) (any, error) {
	return f(ctx, key)
}

// entry is the cache-internal state for one key. gen is the generation
// counter used to fence out-of-order fetch responses: any invalidation or
// direct write bumps it, and a fetch started under an older generation
// must not overwrite the entry.
type entry struct {
	key       Key
	status    Status
	data      any
	err       *apierr.ErrorInfo
	fetchedAt time.Time
	stale     bool
	gen       uint64
}

// Cache is the process-wide keyed store of server resources.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	fetcher  Fetcher
	policies map[string]Policy
	fallback Policy
	group    singleflight.Group
	now      func() time.Time
	log      *logging.Logger
	metrics  *metrics.Metrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithPolicies sets the per-family staleness policies.
func WithPolicies(policies map[string]Policy) Option {
	return func(c *Cache) { c.policies = policies }
}

// WithDefaultPolicy sets the policy for families without an explicit one.
func WithDefaultPolicy(p Policy) Option {
	return func(c *Cache) { c.fallback = p }
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithClock overrides the clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache backed by the given fetcher.
func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[string]*entry),
		fetcher:  fetcher,
		policies: make(map[string]Policy),
		fallback: Policy{StaleAfter: 30 * time.Second, RefreshOnFocus: true},
		now:      time.Now,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) policyFor(family string) Policy {
	if p, ok := c.policies[family]; ok {
		return p
	}
	return c.fallback
}

// Get returns the entry for key, fetching first when the entry is
// missing, Idle, expired, or marked stale. Concurrent Gets for the same
// key join a single in-flight fetch; independent keys fetch in parallel.
//
// Expected fetch failures never surface as an error return: the entry
// settles with StatusError and retains any previously cached data
// (stale-while-error). The error return covers context cancellation only.
func (c *Cache) Get(ctx context.Context, key Key) (Entry, error) {
	slot := key.String()

	c.mu.Lock()
	e, ok := c.entries[slot]
	if !ok {
		e = &entry{key: key, status: StatusIdle}
		c.entries[slot] = e
	}

	if !c.needsFetchLocked(e) {
		snap := e.snapshot()
		c.mu.Unlock()
		c.metrics.RecordCacheHit(key.Family())
		return snap, nil
	}

	gen := e.gen
	e.status = StatusLoading
	c.mu.Unlock()
	c.metrics.RecordCacheMiss(key.Family())

	// Joined under the generation so a fetch started before an
	// invalidation is never shared with callers arriving after it.
	sfKey := slot + "#" + strconv.FormatUint(gen, 10)
	data, err, _ := c.group.Do(sfKey, func() (any, error) {
		// The fetch outlives any single caller: an abandoned consumer
		// discards its result, the shared entry still settles.
		return c.fetcher.Fetch(context.WithoutCancel(ctx), key)
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		c.settle(slot, gen, data, err)
		return Entry{}, ctxErr
	}

	return c.settle(slot, gen, data, err), nil
}

// Lookup returns the current entry without ever fetching.
func (c *Cache) Lookup(key Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return Entry{}, false
	}
	return e.snapshot(), true
}

// settle applies a completed fetch to the entry, unless a newer
// generation has superseded it (last valid-generation write wins).
func (c *Cache) settle(slot string, gen uint64, data any, err error) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[slot]
	if !ok {
		// Cleared while in flight; nothing to settle.
		return Entry{Status: StatusIdle}
	}

	if e.gen != gen {
		// A newer invalidation or direct write landed mid-flight.
		// Discard this response rather than overwriting fresher state.
		c.metrics.RecordDiscardedResponse()
		c.log.Debug().Str("key", slot).Msg("discarded out-of-order response")
		return e.snapshot()
	}

	if err != nil {
		e.status = StatusError
		e.err = apierr.AsInfo(err)
		e.stale = true
		c.metrics.RecordFetchError(e.key.Family())
		c.log.Warn().Str("key", slot).Str("error", e.err.Message).Msg("fetch failed")
		return e.snapshot()
	}

	e.status = StatusSuccess
	e.data = data
	e.err = nil
	e.fetchedAt = c.now()
	e.stale = false
	return e.snapshot()
}

// needsFetchLocked reports whether Get must fetch. Fresh data
// short-circuits unconditionally, so a direct write that supersedes an
// in-flight fetch is served immediately instead of blocking on a new
// round-trip. Callers that do need the in-flight fetch join it through
// the generation-keyed singleflight group.
func (c *Cache) needsFetchLocked(e *entry) bool {
	if e.status != StatusSuccess || e.stale {
		return true
	}
	policy := c.policyFor(e.key.Family())
	if policy.StaleAfter == KeepUntilInvalidated || policy.StaleAfter < 0 {
		return false
	}
	if policy.StaleAfter == RevalidateAlways {
		return true
	}
	return c.now().Sub(e.fetchedAt) >= policy.StaleAfter
}

// Invalidate marks one exact key stale. Data stays visible until the next
// successful refetch.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok {
		c.markStaleLocked(e)
	}
}

// InvalidatePrefix marks every key sharing the prefix stale.
func (c *Cache) InvalidatePrefix(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			c.markStaleLocked(e)
		}
	}
}

func (c *Cache) markStaleLocked(e *entry) {
	e.stale = true
	e.gen++
	c.metrics.RecordInvalidation(e.key.Family())
}

// SetData writes data for key directly, as from a server echo after a
// mutation, without a refetch round-trip. The write supersedes any fetch
// still in flight.
func (c *Cache) SetData(key Key, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot := key.String()
	e, ok := c.entries[slot]
	if !ok {
		e = &entry{key: key}
		c.entries[slot] = e
	}
	e.status = StatusSuccess
	e.data = data
	e.err = nil
	e.fetchedAt = c.now()
	e.stale = false
	e.gen++
}

// NotifyFocus marks every entry whose family has RefreshOnFocus stale,
// the service-side analog of revalidate-on-window-refocus.
func (c *Cache) NotifyFocus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if c.policyFor(e.key.Family()).RefreshOnFocus {
			c.markStaleLocked(e)
		}
	}
}

// Clear drops every entry. Called on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len returns the number of entries. Used by monitoring and tests.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (e *entry) snapshot() Entry {
	return Entry{
		Key:       e.key,
		Status:    e.status,
		Data:      e.data,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
		Stale:     e.stale,
	}
}
