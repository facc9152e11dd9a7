package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookObserver posts chat notifications for command-triggered runs.
// Timer and manual runs stay silent.
type WebhookObserver struct {
	url    string
	client *http.Client
}

// NewWebhookObserver creates a webhook observer posting to url
func NewWebhookObserver(url string, timeout time.Duration) *WebhookObserver {
	return &WebhookObserver{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (o *WebhookObserver) HandleEvent(ctx context.Context, e Event) error {
	if o.url == "" {
		return nil
	}
	if e.Trigger != TriggerCommand {
		return nil
	}

	text := messageFor(e)
	if text == "" {
		return nil
	}

	return o.post(ctx, text)
}

// messageFor maps an event to its chat wording. Only phase boundaries
// produce messages; run-level aborts stay in the log and journal.
func messageFor(e Event) string {
	switch e.Type {
	case PhaseStarted:
		return fmt.Sprintf("Updating %s tags...", e.Kind.Label())
	case PhaseCompleted:
		if e.Failed > 0 {
			return fmt.Sprintf("Updated %s tags (%d of %d writes failed).", e.Kind.Label(), e.Failed, e.Listed)
		}
		return fmt.Sprintf("Updated %s tags.", e.Kind.Label())
	default:
		return ""
	}
}

func (o *WebhookObserver) post(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}

	return nil
}
