package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// WebhookNotifier implements SelectionNotifier by POSTing JSON to a URL.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
	nowFunc func() time.Time
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookNotifier) {
		w.client = c
	}
}

// WithHeaders adds headers to every request, e.g. for authentication.
func WithHeaders(h map[string]string) WebhookOption {
	return func(w *WebhookNotifier) {
		w.headers = h
	}
}

// WithNowFunc overrides the timestamp source.
func WithNowFunc(f func() time.Time) WebhookOption {
	return func(w *WebhookNotifier) {
		w.nowFunc = f
	}
}

// NewWebhookNotifier creates a new WebhookNotifier posting to url.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	w := &WebhookNotifier{
		url:     url,
		client:  http.DefaultClient,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// webhookPayload is the JSON body sent to the host.
type webhookPayload struct {
	Event     string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Query     string         `json:"query,omitempty"`
	Photos    []webhookPhoto `json:"photos,omitempty"`
}

type webhookPhoto struct {
	ID          string            `json:"id"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Description string            `json:"description,omitempty"`
	URLs        domain.PhotoURLs  `json:"urls"`
	Links       domain.PhotoLinks `json:"links"`
	User        domain.User       `json:"user"`
}

// PhotosSelected sends the selected photos.
func (w *WebhookNotifier) PhotosSelected(ctx context.Context, payload SelectionPayload) error {
	photos := make([]webhookPhoto, 0, len(payload.Photos))
	for i := range payload.Photos {
		p := &payload.Photos[i]
		photos = append(photos, webhookPhoto{
			ID:          p.ID,
			Width:       p.Width,
			Height:      p.Height,
			Description: p.Description,
			URLs:        p.URLs,
			Links:       p.Links,
			User:        p.User,
		})
	}

	return w.post(ctx, webhookPayload{
		Event:     EventPhotosSelected,
		Timestamp: w.nowFunc().UTC(),
		Query:     payload.Query,
		Photos:    photos,
	})
}

// PickerCancelled sends a cancellation event.
func (w *WebhookNotifier) PickerCancelled(ctx context.Context) error {
	return w.post(ctx, webhookPayload{
		Event:     EventPickerCancelled,
		Timestamp: w.nowFunc().UTC(),
	})
}

func (w *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("webhook rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return fmt.Errorf("webhook returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
