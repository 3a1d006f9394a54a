package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"roster/internal/api"
)

// Client provides HTTP access to a running roster daemon.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the daemon listening at addr. The address may be
// a bare host:port or a full http:// URL. The timeout bounds every call,
// including lookups that wait on a cold-cache refresh.
func New(addr, token string, timeout time.Duration) *Client {
	base := strings.TrimRight(strings.TrimSpace(addr), "/")
	if base != "" && !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: base,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Health fetches the daemon health summary.
func (c *Client) Health(ctx context.Context) (*api.Health, error) {
	var resp api.Health
	if err := c.doJSON(ctx, http.MethodGet, "/healthz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Lookup queries the register cache for a registration number.
func (c *Client) Lookup(ctx context.Context, key string) (*api.LookupResponse, error) {
	query := url.Values{}
	query.Set("key", key)
	var resp api.LookupResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/lookup", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats fetches cache statistics.
func (c *Client) Stats(ctx context.Context) (*api.Stats, error) {
	var resp api.Stats
	if err := c.doJSON(ctx, http.MethodGet, "/api/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refreshes lists recent refresh journal rows, newest first.
func (c *Client) Refreshes(ctx context.Context, limit int) (*api.RefreshListResponse, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{}
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp api.RefreshListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/refreshes", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh asks the daemon to start a forced refresh in the background.
func (c *Client) Refresh(ctx context.Context) (*api.RefreshResponse, error) {
	var resp api.RefreshResponse
	if err := c.doJSON(ctx, http.MethodPost, "/admin/refresh", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification(ctx context.Context) (*api.NotifyTestResponse, error) {
	var resp api.NotifyTestResponse
	if err := c.doJSON(ctx, http.MethodPost, "/admin/test-notification", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
