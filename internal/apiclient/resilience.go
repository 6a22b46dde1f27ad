// Resilience for the read path: retry with exponential backoff and a
// circuit breaker, applied to idempotent GETs only. Writes are never
// retried; the mutation executor surfaces their failures directly.
package apiclient

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"
)

// RetryConfig configures GET retry behavior.
type RetryConfig struct {
	MaxRetries           int
	InitialBackoff       time.Duration
	MaxBackoff           time.Duration
	BackoffMultiplier    float64
	Jitter               float64
	RetryableStatusCodes []int
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryableStatusCodes: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// BreakerState represents the state of the circuit breaker.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// DefaultBreakerConfig returns sensible defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// ErrBreakerOpen is returned when the circuit is open.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// Breaker implements the circuit breaker pattern for the read path.
type Breaker struct {
	mu        sync.Mutex
	cfg       BreakerConfig
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
}

// NewBreaker creates a closed circuit breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{cfg: cfg, state: BreakerClosed}
}

// Allow reports whether a request may proceed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen {
		if time.Since(b.openedAt) > b.cfg.OpenTimeout {
			b.state = BreakerHalfOpen
			b.successes = 0
			return nil
		}
		return ErrBreakerOpen
	}
	return nil
}

// RecordSuccess records a successful request.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = BreakerClosed
			b.failures = 0
		}
	}
}

// RecordFailure records a failed request.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.state = BreakerOpen
			b.openedAt = time.Now()
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.openedAt = time.Now()
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// retryTransport wraps a RoundTripper with retry and breaker logic for
// GET requests. Every other method passes through untouched.
type retryTransport struct {
	base    http.RoundTripper
	retry   RetryConfig
	breaker *Breaker
}

// NewResilientHTTPClient builds an http.Client whose GETs retry transient
// failures behind a circuit breaker.
func NewResilientHTTPClient(retry RetryConfig, breaker BreakerConfig, timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	base := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			base:    base,
			retry:   retry,
			breaker: NewBreaker(breaker),
		},
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	if err := t.breaker.Allow(); err != nil {
		return nil, err
	}

	var (
		resp    *http.Response
		lastErr error
	)
	for attempt := 0; attempt <= t.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(t.backoff(attempt)):
			}
			req = req.Clone(req.Context())
		}

		resp, lastErr = t.base.RoundTrip(req)
		if lastErr != nil {
			if retryableError(lastErr) {
				continue
			}
			t.breaker.RecordFailure()
			return nil, lastErr
		}

		if t.retryableStatus(resp.StatusCode) {
			resp.Body.Close()
			lastErr = errors.New(http.StatusText(resp.StatusCode))
			continue
		}

		t.breaker.RecordSuccess()
		return resp, nil
	}

	t.breaker.RecordFailure()
	if lastErr != nil {
		return nil, lastErr
	}
	return resp, nil
}

func (t *retryTransport) backoff(attempt int) time.Duration {
	d := float64(t.retry.InitialBackoff) * math.Pow(t.retry.BackoffMultiplier, float64(attempt-1))
	if d > float64(t.retry.MaxBackoff) {
		d = float64(t.retry.MaxBackoff)
	}
	if t.retry.Jitter > 0 {
		d += d * t.retry.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(d)
}

func (t *retryTransport) retryableStatus(code int) bool {
	for _, c := range t.retry.RetryableStatusCodes {
		if code == c {
			return true
		}
	}
	return false
}

func retryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
