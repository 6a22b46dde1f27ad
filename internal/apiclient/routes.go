package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/streamlift/panel_core/internal/domain/account"
	"github.com/streamlift/panel_core/internal/domain/invoice"
	"github.com/streamlift/panel_core/internal/domain/plan"
	"github.com/streamlift/panel_core/internal/domain/provider"
	"github.com/streamlift/panel_core/internal/domain/review"
	"github.com/streamlift/panel_core/internal/domain/siteconfig"
	"github.com/streamlift/panel_core/internal/domain/subscription"
	"github.com/streamlift/panel_core/internal/mutation"
	"github.com/streamlift/panel_core/internal/resource"
)

// ============================================================================
// Key -> backend route mapping
// ============================================================================

// Routes turns the backend REST API into the cache's address space:
// every cache key resolves to one read path, every mutation action to
// one write. It implements resource.Fetcher and mutation.Doer.
type Routes struct {
	client *Client
}

// NewRoutes wires a client into the route table.
func NewRoutes(client *Client) *Routes {
	return &Routes{client: client}
}

// Fetch loads and decodes the resource behind a cache key. The decoded
// value carries the typed entity for its family, so screens never see
// raw JSON.
func (r *Routes) Fetch(ctx context.Context, key resource.Key) (any, error) {
	path, decode, err := readRoute(key)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.ErrorInfo()
	}
	return decode(resp)
}

func readRoute(key resource.Key) (string, func(*Response) (any, error), error) {
	switch key.Family() {
	case "reviews":
		if len(key) != 2 {
			return "", nil, fmt.Errorf("review key %q needs a product id", key)
		}
		return "/api/v1/reviews?product_id=" + url.QueryEscape(key[1]), decodeList[review.Review], nil
	case "invoices":
		return "/api/v1/admin/invoices", decodeList[invoice.Invoice], nil
	case "subscription-plans":
		return "/api/v1/plans", decodeList[plan.Plan], nil
	case "providers":
		return "/api/v1/admin/providers", decodeList[provider.Provider], nil
	case "admin":
		if len(key) == 2 && key[1] == "users" {
			return "/api/v1/admin/users", decodeList[account.User], nil
		}
		return "", nil, fmt.Errorf("unknown admin resource %q", key)
	case "site-config":
		return "/api/v1/admin/site-config", decodeOne[siteconfig.Config], nil
	case "subscriptions":
		if len(key) != 2 {
			return "", nil, fmt.Errorf("subscription key %q needs a user id", key)
		}
		return "/api/v1/subscriptions?user_id=" + url.QueryEscape(key[1]), decodeList[subscription.Subscription], nil
	default:
		return "", nil, fmt.Errorf("no route for resource family %q", key.Family())
	}
}

func decodeList[T any](resp *Response) (any, error) {
	var out []T
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeOne[T any](resp *Response) (any, error) {
	var out T
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================================
// Mutation writes
// ============================================================================

// Write performs one mutation. The action is "METHOD /path"; the
// idempotency key travels in a header so the backend can drop
// duplicate deliveries of the same logical write.
func (r *Routes) Write(ctx context.Context, action string, payload any, idempotencyKey string) (json.RawMessage, error) {
	method, path, ok := strings.Cut(action, " ")
	if !ok || !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("malformed mutation action %q", action)
	}

	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set(mutation.IdempotencyKeyHeader, idempotencyKey)
	}

	var (
		resp *Response
		err  error
	)
	switch method {
	case http.MethodPost:
		resp, err = r.client.Post(ctx, path, payload, headers)
	case http.MethodPut:
		resp, err = r.client.Put(ctx, path, payload, headers)
	case http.MethodPatch:
		resp, err = r.client.Patch(ctx, path, payload, headers)
	case http.MethodDelete:
		resp, err = r.client.Delete(ctx, path, headers)
	default:
		return nil, fmt.Errorf("mutation action %q: method %s not allowed", action, method)
	}
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.ErrorInfo()
	}
	return json.RawMessage(resp.Body), nil
}
