// Package notify implements the process-wide queue of transient
// user-facing status messages. Any component appends; only the queue
// removes entries, either on explicit dismissal or when their TTL runs
// out.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is one transient status message.
type Notification struct {
	ID          string        `json:"id"`
	Kind        Kind          `json:"kind"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	TTL         time.Duration `json:"-"`
}

// Expired reports whether the notification's TTL has run out at now.
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) > n.TTL
}

// Queue holds notifications in FIFO display order with independent
// per-item expiry.
type Queue struct {
	mu         sync.Mutex
	items      []Notification
	defaultTTL time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// Option configures a Queue.
type Option func(*Queue)

// WithTTL sets the default per-item TTL.
func WithTTL(ttl time.Duration) Option {
	return func(q *Queue) { q.defaultTTL = ttl }
}

// WithClock overrides the clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// NewQueue creates a queue and starts its background sweeper.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		defaultTTL: 5 * time.Second,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.sweep()
	return q
}

// Push appends a notification and returns its ID.
func (q *Queue) Push(kind Kind, title, description string) string {
	n := Notification{
		ID:          uuid.NewString(),
		Kind:        kind,
		Title:       title,
		Description: description,
		CreatedAt:   q.now(),
		TTL:         q.defaultTTL,
	}

	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
	return n.ID
}

// PushWithTTL appends a notification with an explicit TTL.
func (q *Queue) PushWithTTL(kind Kind, title, description string, ttl time.Duration) string {
	id := q.Push(kind, title, description)
	q.mu.Lock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].TTL = ttl
			break
		}
	}
	q.mu.Unlock()
	return id
}

// Dismiss removes a notification by ID, reporting whether it was present.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the unexpired notifications in FIFO order.
func (q *Queue) Active() []Notification {
	now := q.now()

	q.mu.Lock()
	defer q.mu.Unlock()

	active := make([]Notification, 0, len(q.items))
	for _, n := range q.items {
		if !n.Expired(now) {
			active = append(active, n)
		}
	}
	return active
}

// Close stops the background sweeper.
func (q *Queue) Close() {
	q.stopOnce.Do(func() { close(q.stop) })
}

func (q *Queue) sweep() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case <-ticker.C:
			q.dropExpired()
		}
	}
}

func (q *Queue) dropExpired() {
	now := q.now()

	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	for _, n := range q.items {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	q.items = kept
}
