package unsplash_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/unsplash-picker/internal/unsplash"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

func TestDownloadTracker_Track(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		hits = map[string]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path] = r.URL.Query().Get("client_id")
		mu.Unlock()
		assert.Equal(t, "v1", r.Header.Get("Accept-Version"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	photos := []domain.Photo{
		{ID: "a", Links: domain.PhotoLinks{DownloadLocation: srv.URL + "/photos/a/download"}},
		{ID: "b"},
		{ID: "c", Links: domain.PhotoLinks{DownloadLocation: srv.URL + "/photos/c/download"}},
	}

	tracker := unsplash.NewDownloadTracker("test-key")

	ctx, cancel := context.WithCancel(context.Background())
	started := tracker.Track(ctx, photos)
	// Tracking outlives the caller's context.
	cancel()
	tracker.Wait()

	assert.Equal(t, 2, started)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]string{
		"/photos/a/download": "test-key",
		"/photos/c/download": "test-key",
	}, hits)
}

func TestDownloadTracker_IgnoresFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tracker := unsplash.NewDownloadTracker("test-key")
	started := tracker.Track(context.Background(), []domain.Photo{
		{ID: "a", Links: domain.PhotoLinks{DownloadLocation: srv.URL + "/x"}},
		{ID: "b", Links: domain.PhotoLinks{DownloadLocation: closedURL + "/y"}},
	})
	tracker.Wait()

	assert.Equal(t, 2, started)
}
