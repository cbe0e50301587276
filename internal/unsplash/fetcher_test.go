package unsplash_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/unsplash-picker/internal/cache"
	"github.com/donaldgifford/unsplash-picker/internal/unsplash"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

func photoJSON(id string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"width": 4000,
		"height": 3000,
		"color": "#262626",
		"description": "photo %s",
		"urls": {"raw": "https://images.unsplash.com/%s?raw", "thumb": "https://images.unsplash.com/%s?thumb"},
		"links": {"download_location": "https://api.unsplash.com/photos/%s/download"},
		"user": {"name": "Jane", "username": "jane", "links": {"html": "https://unsplash.com/@jane"}}
	}`, id, id, id, id, id)
}

func photoArray(ids ...string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = photoJSON(id)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func newClient(t *testing.T, handler http.HandlerFunc, opts ...unsplash.Option) *unsplash.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]unsplash.Option{unsplash.WithBaseURL(srv.URL)}, opts...)
	return unsplash.NewClient("test-key", opts...)
}

func TestEditorialFetcher_FetchPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		collectionID   string
		page           int
		perPage        int
		handler        http.HandlerFunc
		wantErr        bool
		errContain     string
		wantIDs        []string
		wantTotalPages int
	}{
		{
			name:         "editorial collection with total header",
			collectionID: "317099",
			page:         1,
			perPage:      2,
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/collections/317099/photos", r.URL.Path)
				assert.Equal(t, "Client-ID test-key", r.Header.Get("Authorization"))
				assert.Equal(t, "v1", r.Header.Get("Accept-Version"))
				assert.Equal(t, "1", r.URL.Query().Get("page"))
				assert.Equal(t, "2", r.URL.Query().Get("per_page"))

				w.Header().Set("X-Total", "5")
				_, _ = w.Write([]byte(photoArray("a", "b")))
			},
			wantIDs:        []string{"a", "b"},
			wantTotalPages: 3,
		},
		{
			name:    "empty collection id falls back to latest photos",
			page:    2,
			perPage: 10,
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/photos", r.URL.Path)
				assert.Equal(t, "latest", r.URL.Query().Get("order_by"))

				w.Header().Set("X-Total", "100")
				_, _ = w.Write([]byte(photoArray("c")))
			},
			wantIDs:        []string{"c"},
			wantTotalPages: 10,
		},
		{
			name:         "missing total header with full page implies another",
			collectionID: "1",
			page:         3,
			perPage:      1,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(photoArray("d")))
			},
			wantIDs:        []string{"d"},
			wantTotalPages: 4,
		},
		{
			name:         "missing total header with short page is the last",
			collectionID: "1",
			page:         3,
			perPage:      5,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(photoArray("d")))
			},
			wantIDs:        []string{"d"},
			wantTotalPages: 3,
		},
		{
			name:         "401 unauthorized response",
			collectionID: "1",
			page:         1,
			perPage:      10,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"errors": ["OAuth error: The access token is invalid"]}`))
			},
			wantErr:    true,
			errContain: "status 401",
		},
		{
			name:         "invalid JSON response",
			collectionID: "1",
			page:         1,
			perPage:      10,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not valid json"))
			},
			wantErr:    true,
			errContain: "parsing editorial response",
		},
		{
			name:         "photo missing id",
			collectionID: "1",
			page:         1,
			perPage:      10,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`[{"width": 1, "height": 1, "urls": {"thumb": "x"}}]`))
			},
			wantErr:    true,
			errContain: "field id",
		},
		{
			name:       "page zero is rejected",
			page:       0,
			perPage:    10,
			handler:    func(_ http.ResponseWriter, _ *http.Request) {},
			wantErr:    true,
			errContain: "page must be >= 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newClient(t, tt.handler)
			page, err := c.Editorial(tt.collectionID).FetchPage(context.Background(), tt.page, tt.perPage)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, page)
			assert.Equal(t, tt.page, page.Number)
			assert.Equal(t, tt.wantTotalPages, page.TotalPages)

			ids := make([]string, len(page.Photos))
			for i, p := range page.Photos {
				ids[i] = p.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSearchFetcher_FetchPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		query          string
		filter         domain.ContentFilter
		handler        http.HandlerFunc
		wantErr        error
		errContain     string
		wantCount      int
		wantTotalPages int
	}{
		{
			name:   "returns results and body total_pages",
			query:  "cats",
			filter: domain.ContentFilterHigh,
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/search/photos", r.URL.Path)
				assert.Equal(t, "cats", r.URL.Query().Get("query"))
				assert.Equal(t, "high", r.URL.Query().Get("content_filter"))

				_, _ = fmt.Fprintf(w, `{"total": 133, "total_pages": 7, "results": %s}`, photoArray("x", "y"))
			},
			wantCount:      2,
			wantTotalPages: 7,
		},
		{
			name:  "empty filter defaults to low",
			query: "dogs",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "low", r.URL.Query().Get("content_filter"))
				_, _ = w.Write([]byte(`{"total": 0, "total_pages": 0, "results": []}`))
			},
			wantCount:      0,
			wantTotalPages: 0,
		},
		{
			name:  "wrong field type is a decode error",
			query: "cats",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"total_pages": "seven", "results": []}`))
			},
			wantErr:    domain.ErrDecode,
			errContain: "total_pages",
		},
		{
			name:  "invalid result is a decode error",
			query: "cats",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"total_pages": 1, "results": [{"id": "a", "width": 1, "height": 1}]}`))
			},
			wantErr:    domain.ErrDecode,
			errContain: "photo 0",
		},
		{
			name:  "server error is a network error",
			query: "cats",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr:    domain.ErrNetwork,
			errContain: "status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newClient(t, tt.handler)
			f := c.Search(tt.query, tt.filter)
			assert.Equal(t, tt.query, f.Query())

			page, err := f.FetchPage(context.Background(), 1, 20)

			if tt.wantErr != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.errContain)
				assert.False(t, domain.IsNoConnectivity(err))
				return
			}

			require.NoError(t, err)
			assert.Len(t, page.Photos, tt.wantCount)
			assert.Equal(t, tt.wantTotalPages, page.TotalPages)
		})
	}
}

func TestCollectionFetcher_FetchPage(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/my%20coll/photos", r.URL.EscapedPath())
		w.Header().Set("X-Total", "21")
		w.Header().Set("X-Ratelimit-Limit", "50")
		w.Header().Set("X-Ratelimit-Remaining", "49")
		_, _ = w.Write([]byte(photoArray("p1")))
	})

	page, err := c.Collection("my coll").FetchPage(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Photos, 1)

	p := page.Photos[0]
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Jane", p.User.Name)
	u, ok := p.URL(domain.URLThumb)
	assert.True(t, ok)
	assert.Equal(t, "https://images.unsplash.com/p1?thumb", u)
}

func TestClient_NoConnectivity(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := unsplash.NewClient("test-key", unsplash.WithBaseURL(url))
	_, err := c.Editorial("1").FetchPage(context.Background(), 1, 10)

	require.Error(t, err)
	assert.True(t, domain.IsNoConnectivity(err))
	assert.Equal(t, "no_connectivity", domain.ErrorKind(err))
}

func TestClient_SlowServerIsNotConnectivity(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	c := newClient(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, unsplash.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	defer close(release)

	_, err := c.Editorial("1").FetchPage(context.Background(), 1, 10)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.False(t, domain.IsNoConnectivity(err))
	assert.Equal(t, "other", domain.ErrorKind(err))
}

func TestClient_DroppedConnectionIsNotConnectivity(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return
		}
		_ = conn.Close()
	})

	_, err := c.Editorial("1").FetchPage(context.Background(), 1, 10)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.False(t, domain.IsNoConnectivity(err))
}

func TestClient_CancelledContextIsNotConnectivity(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(photoArray("a")))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Editorial("1").FetchPage(ctx, 1, 10)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, domain.IsNoConnectivity(err))
}

func TestClient_CacheSkipsNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("X-Total", "40")
		_, _ = w.Write([]byte(photoArray("a", "b")))
	}, unsplash.WithCache(cache.NewMemory(16, time.Minute)))

	f := c.Collection("42")
	first, err := f.FetchPage(context.Background(), 1, 20)
	require.NoError(t, err)
	second, err := f.FetchPage(context.Background(), 1, 20)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)

	// A different page is a different key.
	_, err = f.FetchPage(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(photoArray("a")))
	}, unsplash.WithCache(cache.NewMemory(16, time.Minute)))

	f := c.Collection("42")
	_, err := f.FetchPage(context.Background(), 1, 20)
	require.Error(t, err)

	page, err := f.FetchPage(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Photos, 1)
}

func TestClient_HourlyLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(photoArray("a")))
	}, unsplash.WithRateLimiter(unsplash.NewRateLimiter(100, 10, 1)))

	f := c.Editorial("1")
	_, err := f.FetchPage(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = f.FetchPage(context.Background(), 2, 10)
	require.Error(t, err)
	require.ErrorIs(t, err, unsplash.ErrHourlyLimitReached)
	assert.Equal(t, "other", domain.ErrorKind(err))
	assert.Equal(t, int32(1), calls.Load())
}
