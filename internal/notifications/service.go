package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bindery/internal/config"
)

const userAgent = "Bindery/0.1.0"

// Service defines the notification surface exposed to the build pipeline.
type Service interface {
	NotifyBuildStarted(ctx context.Context, total, misses int) error
	NotifyBuildCompleted(ctx context.Context, total, succeeded, failed int, duration time.Duration) error
	NotifyBuildFailed(ctx context.Context, err error) error
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

	return &ntfyService{
		endpoint:       topic,
		client:         &http.Client{Timeout: timeout},
		buildCompleted: cfg.Notifications.BuildCompleted,
		errors:         cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	buildCompleted bool
	errors         bool
}

func (n *ntfyService) NotifyBuildStarted(ctx context.Context, total, misses int) error {
	if !n.buildCompleted {
		return nil
	}
	data := payload{
		title:   "Bindery - Build Started",
		message: fmt.Sprintf("Building catalog: %d records, %d to look up", total, misses),
		tags:    []string{"bindery", "build", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBuildCompleted(ctx context.Context, total, succeeded, failed int, duration time.Duration) error {
	if !n.buildCompleted {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if failed == 0 {
		title = "Bindery - Build Complete"
		message = fmt.Sprintf("Catalog built: %d records in %s", total, durationText)
	} else {
		title = "Bindery - Build Complete (with errors)"
		message = fmt.Sprintf("Catalog built: %d records, %d lookups succeeded, %d failed in %s", total, succeeded, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"bindery", "build", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBuildFailed(ctx context.Context, err error) error {
	if !n.errors {
		return nil
	}
	message := "Build failed: "
	if err != nil {
		message += strings.TrimSpace(err.Error())
	} else {
		message += "unknown error"
	}
	data := payload{
		title:    "Bindery - Build Failed",
		message:  message,
		tags:     []string{"bindery", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Bindery - Test",
		message:  "Notification system test",
		tags:     []string{"bindery", "test"},
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

func (noopService) NotifyBuildStarted(context.Context, int, int) error { return nil }
func (noopService) NotifyBuildCompleted(context.Context, int, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyBuildFailed(context.Context, error) error { return nil }
func (noopService) TestNotification(context.Context) error         { return nil }
