package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/solemate/solemate-backend/pkg/config"
)

// Sender delivers a serialized notification to its destination.
type Sender interface {
	Send(ctx context.Context, eventType string, payload json.RawMessage) error
}

// WebhookSender posts payloads to the configured ops webhook.
type WebhookSender struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

func NewWebhookSender(cfg config.NotifierConfig) (*WebhookSender, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WebhookSender{
		url:     cfg.WebhookURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Send posts the payload. Any non-2xx response is an error so the dispatcher
// can retry.
func (s *WebhookSender) Send(ctx context.Context, eventType string, payload json.RawMessage) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-SoleMate-Event", eventType)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
