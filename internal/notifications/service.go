package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"roster/internal/config"
)

const userAgent = "Roster/0.1.0"

// Service defines the notification surface exposed to the refresh pipeline.
type Service interface {
	NotifyRefreshCompleted(ctx context.Context, trigger string, entries int, duration time.Duration) error
	NotifyRefreshFailed(ctx context.Context, trigger string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRefreshCompleted(ctx context.Context, trigger string, entries int, duration time.Duration) error {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		trigger = "unknown"
	}

	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	data := payload{
		title:   "Roster - Refresh Complete",
		message: fmt.Sprintf("Register refreshed (%s): %d producers loaded in %s", trigger, entries, durationText),
		tags:    []string{"roster", "refresh", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRefreshFailed(ctx context.Context, trigger string, err error) error {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		trigger = "unknown"
	}

	var builder strings.Builder
	builder.WriteString("Register refresh failed (")
	builder.WriteString(trigger)
	builder.WriteString("): ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	builder.WriteString("\nServing the previous snapshot until the next attempt succeeds")

	data := payload{
		title:    "Roster - Refresh Failed",
		message:  builder.String(),
		tags:     []string{"roster", "refresh", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Roster - Test",
		message:  "Notification system test",
		tags:     []string{"roster", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRefreshCompleted(context.Context, string, int, time.Duration) error {
	return nil
}
func (noopService) NotifyRefreshFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error                   { return nil }
