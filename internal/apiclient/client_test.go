package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamlift/panel_core/internal/apierr"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return client, srv
}

func TestClient_GetDecodesJSON(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/plans", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"starter","price_cents":999}`))
	}))

	resp, err := client.Get(context.Background(), "/api/v1/plans")
	require.NoError(t, err)
	require.True(t, resp.OK())

	var got struct {
		Name       string `json:"name"`
		PriceCents int64  `json:"price_cents"`
	}
	require.NoError(t, resp.JSON(&got))
	assert.Equal(t, "starter", got.Name)
	assert.Equal(t, int64(999), got.PriceCents)
}

func TestClient_WithTokenSendsBearer(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))

	_, err := client.WithToken("session-token").Get(context.Background(), "/api/v1/plans")
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-token", gotAuth)

	// The original client stays anonymous.
	_, err = client.Get(context.Background(), "/api/v1/plans")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apierr.Kind
		wantMsg  string
	}{
		{
			name:     "server message surfaced",
			status:   http.StatusBadRequest,
			body:     `{"message":"product not found"}`,
			wantKind: apierr.KindServer,
			wantMsg:  "product not found",
		},
		{
			name:     "malformed body falls back to generic",
			status:   http.StatusInternalServerError,
			body:     `<html>oops</html>`,
			wantKind: apierr.KindServer,
			wantMsg:  "request failed, try again later",
		},
		{
			name:     "conflict tagged",
			status:   http.StatusConflict,
			body:     `{"error":"duplicate submission"}`,
			wantKind: apierr.KindConflict,
			wantMsg:  "duplicate submission",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			resp, err := client.Get(context.Background(), "/x")
			require.NoError(t, err)
			require.False(t, resp.OK())

			info := resp.ErrorInfo()
			require.NotNil(t, info)
			assert.Equal(t, tt.status, info.HTTPStatus)
			assert.Equal(t, tt.wantKind, info.Kind)
			assert.Equal(t, tt.wantMsg, info.Message)
		})
	}
}

func TestClient_TransportFailureIsNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	srv.Close()

	_, err = client.Get(context.Background(), "/x")
	require.Error(t, err)

	info := apierr.AsInfo(err)
	require.NotNil(t, info)
	assert.Equal(t, apierr.KindNetwork, info.Kind)
	assert.Equal(t, 0, info.HTTPStatus)
}

func TestRetryTransport_RetriesGetsOnly(t *testing.T) {
	var gets, posts int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets++
			if gets < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		case http.MethodPost:
			posts++
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	retry := DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	retry.MaxBackoff = 2 * time.Millisecond
	httpClient := NewResilientHTTPClient(retry, DefaultBreakerConfig(), 5*time.Second)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Config{BaseURL: srv.URL, HTTPClient: httpClient})
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/flaky")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, 3, gets, "GET should be retried until it succeeds")

	resp, err = client.Post(context.Background(), "/write", map[string]string{"a": "b"}, nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, 1, posts, "writes must never be retried")
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Hour})

	require.NoError(t, b.Allow())
	b.RecordFailure()
	require.NoError(t, b.Allow())
	b.RecordFailure()

	assert.ErrorIs(t, b.Allow(), ErrBreakerOpen)
}
