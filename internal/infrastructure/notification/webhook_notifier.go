package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	appnotification "github.com/dormhub/backend/internal/application/notification"
	"github.com/dormhub/backend/internal/infrastructure/config"
)

// maxWebhookResponseSize caps how much of the webhook response body is
// drained before closing
const maxWebhookResponseSize = 64 * 1024

// WebhookNotifier posts operator notifications as JSON to a configured
// webhook URL, compatible with Discord and Slack style incoming hooks.
type WebhookNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *zap.Logger
}

type webhookPayload struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewWebhookNotifier creates a notifier from notification config
func NewWebhookNotifier(cfg *config.NotificationConfig, logger *zap.Logger) (*WebhookNotifier, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("notification webhook URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebhookNotifier{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Notify posts one message to the webhook
func (n *WebhookNotifier) Notify(ctx context.Context, title, message string) error {
	body, err := json.Marshal(webhookPayload{
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxWebhookResponseSize))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// NopNotifier discards every notification. Used when notifications
// are disabled in config.
type NopNotifier struct{}

// Notify does nothing
func (NopNotifier) Notify(ctx context.Context, title, message string) error {
	return nil
}

var (
	_ appnotification.Notifier = (*WebhookNotifier)(nil)
	_ appnotification.Notifier = NopNotifier{}
)
