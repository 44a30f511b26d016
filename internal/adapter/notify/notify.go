// Package notify delivers reminder notifications.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"meowscale/internal/domain"
)

// Log writes notifications to the structured log. It is the default when no
// webhook is configured.
type Log struct{}

// Notify implements domain.Notifier.
func (Log) Notify(ctx context.Context, p domain.UserProfile, title, body string) error {
	slog.InfoContext(ctx, "reminder", "user_id", p.ID, "title", title, "body", body)
	return nil
}

// Webhook posts notifications as JSON to a URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook returns a Webhook notifier posting to url.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{url: url, client: &http.Client{Timeout: timeout}}
}

type webhookPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}

// Notify implements domain.Notifier.
func (w *Webhook) Notify(ctx context.Context, p domain.UserProfile, title, body string) error {
	b, err := json.Marshal(webhookPayload{
		UserID:      p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Title:       title,
		Body:        body,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
