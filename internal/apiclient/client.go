// Package apiclient provides the REST client for the panel backend.
// The backend is treated purely as a resource address space: reads are
// GETs returning JSON, writes are POST/PUT/PATCH/DELETE with JSON bodies,
// and 2xx is the only success criterion.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/streamlift/panel_core/internal/apierr"
)

const maxBodyBytes = 8 << 20

// Client is the panel API client.
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	// HTTPClient overrides the default transport. The resilient GET
	// transport is installed here when resilience is enabled.
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a new panel API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// WithToken returns a copy of the client that attaches the given session
// token to every request. The zero token means anonymous access.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Response is a generic API response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ErrorInfo returns the structured error for a non-2xx response, nil otherwise.
func (r *Response) ErrorInfo() *apierr.ErrorInfo {
	if r.OK() {
		return nil
	}
	return apierr.FromResponse(r.StatusCode, r.Body)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.roundTrip(ctx, http.MethodGet, path, nil, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, headers http.Header) (*Response, error) {
	return c.roundTrip(ctx, http.MethodPost, path, body, headers)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, headers http.Header) (*Response, error) {
	return c.roundTrip(ctx, http.MethodPut, path, body, headers)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, headers http.Header) (*Response, error) {
	return c.roundTrip(ctx, http.MethodPatch, path, body, headers)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, headers http.Header) (*Response, error) {
	return c.roundTrip(ctx, http.MethodDelete, path, nil, headers)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, headers http.Header) (*Response, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", apierr.FromTransport(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", apierr.FromTransport(err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    resp.Header,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}
