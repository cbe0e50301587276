package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testPhotos() []domain.Photo {
	return []domain.Photo{
		{
			ID:     "abc",
			Width:  4000,
			Height: 3000,
			URLs:   domain.PhotoURLs{Regular: "https://images.unsplash.com/abc?w=1080"},
			Links:  domain.PhotoLinks{HTML: "https://unsplash.com/photos/abc"},
			User:   domain.User{Name: "Jane Doe", Username: "jane"},
		},
		{
			ID:     "def",
			Width:  1000,
			Height: 1000,
			URLs:   domain.PhotoURLs{Thumb: "https://images.unsplash.com/def?w=200"},
		},
	}
}

func TestWebhookNotifier_PhotosSelected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
		errMsg     string
	}{
		{
			name:       "delivers selection",
			statusCode: http.StatusNoContent,
		},
		{
			name:       "200 is success",
			statusCode: http.StatusOK,
		},
		{
			name:       "host returns 429 rate limited",
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "host returns 400 error",
			statusCode: http.StatusBadRequest,
			wantErr:    true,
			errMsg:     "webhook returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received webhookPayload

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
					assert.Equal(t, http.MethodPost, r.Method)

					err := json.NewDecoder(r.Body).Decode(&received)
					assert.NoError(t, err)

					w.WriteHeader(tt.statusCode)
				}),
			)
			defer srv.Close()

			n := NewWebhookNotifier(srv.URL,
				WithHeaders(map[string]string{"Authorization": "Bearer secret"}),
				WithNowFunc(func() time.Time { return fixedNow }),
			)
			err := n.PhotosSelected(context.Background(), SelectionPayload{
				Photos: testPhotos(),
				Query:  "cats",
			})

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, EventPhotosSelected, received.Event)
			assert.Equal(t, "cats", received.Query)
			assert.True(t, fixedNow.Equal(received.Timestamp))
			require.Len(t, received.Photos, 2)
			assert.Equal(t, "abc", received.Photos[0].ID)
			assert.Equal(t, "Jane Doe", received.Photos[0].User.Name)
			assert.Equal(t, "https://images.unsplash.com/abc?w=1080", received.Photos[0].URLs.Regular)
			assert.Equal(t, "def", received.Photos[1].ID)
		})
	}
}

func TestWebhookNotifier_PickerCancelled(t *testing.T) {
	t.Parallel()

	var received map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	require.NoError(t, n.PickerCancelled(context.Background()))

	assert.Equal(t, EventPickerCancelled, received["event"])
	assert.NotContains(t, received, "photos")
	assert.NotContains(t, received, "query")
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	n := NewWebhookNotifier(url, WithHTTPClient(&http.Client{Timeout: time.Second}))
	err := n.PickerCancelled(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending webhook")
}

// compile-time interface check.
var _ SelectionNotifier = (*WebhookNotifier)(nil)
