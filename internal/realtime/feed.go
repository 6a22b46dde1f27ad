// Package realtime keeps the resource cache honest while the backend
// changes underneath it: a WebSocket feed of change topics, each mapped
// to a cache key prefix and invalidated on arrival.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/streamlift/panel_core/internal/logging"
	"github.com/streamlift/panel_core/internal/resource"
)

const (
	handshakeTimeout  = 10 * time.Second
	heartbeatInterval = 30 * time.Second
	maxReconnectWait  = 30 * time.Second
)

// Event is one change notification from the backend. Topic names the
// changed resource as a slash-joined key prefix ("reviews/prod-1",
// "invoices").
type Event struct {
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
	Ref     string         `json:"ref,omitempty"`
}

// Feed is a reconnecting WebSocket subscriber that translates change
// topics into cache invalidations.
type Feed struct {
	mu     sync.Mutex
	url    string
	token  string
	cache  *resource.Cache
	log    *logging.Logger
	conn   *websocket.Conn
	done   chan struct{}
	closed bool
	ref    int
}

// NewFeed builds a feed against the backend's change endpoint. An
// http(s) base URL is converted to its ws(s) form.
func NewFeed(baseURL, token string, cache *resource.Cache, log *logging.Logger) *Feed {
	wsURL := baseURL
	if strings.HasPrefix(wsURL, "https") {
		wsURL = "wss" + wsURL[len("https"):]
	} else if strings.HasPrefix(wsURL, "http") {
		wsURL = "ws" + wsURL[len("http"):]
	}
	wsURL += "/api/v1/changes/ws"
	if token != "" {
		wsURL += "?token=" + token
	}

	if log == nil {
		log = logging.Nop()
	}
	return &Feed{
		url:   wsURL,
		token: token,
		cache: cache,
		log:   log,
		done:  make(chan struct{}),
	}
}

// Start dials the feed and keeps it alive in the background until
// Close. The initial dial failure is returned so misconfiguration
// surfaces at startup; later drops reconnect with capped backoff.
func (f *Feed) Start(ctx context.Context) error {
	if err := f.dial(ctx); err != nil {
		return err
	}
	go f.run(ctx)
	return nil
}

// Close tears the feed down. Safe to call more than once.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	close(f.done)

	if f.conn != nil {
		f.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		f.conn.Close()
		f.conn = nil
	}
	return nil
}

func (f *Feed) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial change feed: %w", err)
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		conn.Close()
		return fmt.Errorf("feed is closed")
	}
	f.conn = conn
	f.mu.Unlock()

	go f.heartbeat(conn)
	return nil
}

// run reads the current connection until it drops, then redials with
// exponential backoff capped at maxReconnectWait.
func (f *Feed) run(ctx context.Context) {
	backoff := time.Second
	for {
		f.readLoop()

		select {
		case <-f.done:
			return
		case <-ctx.Done():
			f.Close()
			return
		case <-time.After(backoff):
		}

		if err := f.dial(ctx); err != nil {
			f.log.Warn().Err(err).Str("url", f.url).Msg("change feed reconnect failed")
			backoff *= 2
			if backoff > maxReconnectWait {
				backoff = maxReconnectWait
			}
			continue
		}
		f.log.Info().Str("url", f.url).Msg("change feed reconnected")
		backoff = time.Second
	}
}

func (f *Feed) readLoop() {
	f.mu.Lock()
	conn := f.conn
	f.mu.Unlock()
	if conn == nil {
		return
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			f.mu.Lock()
			if f.conn == conn {
				f.conn = nil
			}
			f.mu.Unlock()
			conn.Close()
			return
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		f.handle(event)
	}
}

func (f *Feed) handle(event Event) {
	if event.Topic == "" || event.Event == "heartbeat" {
		return
	}

	prefix := resource.NewKey(strings.Split(event.Topic, "/")...)
	f.cache.InvalidatePrefix(prefix)
	f.log.Debug().
		Str("topic", event.Topic).
		Str("event", event.Event).
		Msg("change feed invalidated prefix")
}

func (f *Feed) heartbeat(conn *websocket.Conn) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.mu.Lock()
			if f.conn != conn {
				f.mu.Unlock()
				return
			}
			f.ref++
			err := conn.WriteJSON(Event{
				Topic: "system",
				Event: "heartbeat",
				Ref:   fmt.Sprintf("%d", f.ref),
			})
			f.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
