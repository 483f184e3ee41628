package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"cargo-tracker/internal/features/notifications/domain"
)

const structuredContentType = "application/cloudevents+json"

// WebhookSender POSTs structured-mode CloudEvents to a fixed URL.
type WebhookSender struct {
	client *http.Client
	url    string
}

// NewWebhookSender creates a new WebhookSender. client is normally built with core/httpclient.
func NewWebhookSender(client *http.Client, url string) *WebhookSender {
	return &WebhookSender{client: client, url: url}
}

// Name implements ports.Sender.
func (s *WebhookSender) Name() string {
	return "webhook"
}

// Send posts the event. Any non-2xx response is a failure.
func (s *WebhookSender) Send(ctx context.Context, event domain.CloudEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification %s: %w", event.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", structuredContentType)
	req.Header.Set("Ce-Id", event.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d for notification %s", resp.StatusCode, event.ID)
	}
	return nil
}

// Close releases idle connections.
func (s *WebhookSender) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
