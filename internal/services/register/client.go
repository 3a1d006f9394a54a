package register

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"roster/internal/config"
	"roster/internal/logging"
	"roster/internal/services"
)

const userAgent = "Roster/0.1.0"

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client downloads the full producer export from the register endpoint.
type Client struct {
	url        string
	apiKey     string
	authMode   string
	authHeader string
	authParam  string
	maxBytes   int64
	client     HTTPDoer
	logger     *slog.Logger
}

// NewClient constructs a register client from configuration. A nil doer
// selects a plain http.Client with the configured timeout.
func NewClient(cfg *config.Config, doer HTTPDoer, logger *slog.Logger) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: cfg.UpstreamTimeout()}
	}
	return &Client{
		url:        cfg.Upstream.URL,
		apiKey:     cfg.Upstream.APIKey,
		authMode:   cfg.Upstream.AuthMode,
		authHeader: cfg.Upstream.AuthHeader,
		authParam:  cfg.Upstream.AuthParam,
		maxBytes:   cfg.MaxResponseBytes(),
		client:     doer,
		logger:     logging.NewComponentLogger(logger, "register"),
	}
}

// Fetch downloads the raw export document. The response body is read fully
// and capped at the configured size; oversized responses are rejected before
// parsing begins.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	requestURL, err := c.buildURL()
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "register", "fetch", "invalid upstream url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "register", "fetch", "build request", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" && c.authMode == "header" {
		req.Header.Set(c.authHeader, c.apiKey)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, services.Wrap(services.ErrRateLimited, "register", "fetch", "upstream asked to slow down", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, services.Wrap(services.ErrUpstream, "register", "fetch",
			fmt.Sprintf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}

	if resp.ContentLength > c.maxBytes {
		return nil, services.Wrap(services.ErrTooLarge, "register", "fetch",
			fmt.Sprintf("declared size %d exceeds cap %d", resp.ContentLength, c.maxBytes), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, c.classifyTransport(err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, services.Wrap(services.ErrTooLarge, "register", "fetch",
			fmt.Sprintf("response exceeds cap %d", c.maxBytes), nil)
	}

	c.log(ctx).Info("export downloaded",
		logging.Int("bytes", len(body)),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return body, nil
}

func (c *Client) buildURL() (string, error) {
	if c.apiKey == "" || c.authMode != "query" {
		return c.url, nil
	}
	parsed, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set(c.authParam, c.apiKey)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) classifyTransport(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return services.Wrap(services.ErrTimeout, "register", "fetch", "download timed out", err)
	}
	return services.Wrap(services.ErrUnreachable, "register", "fetch", "upstream unreachable", err)
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, c.logger)
}
