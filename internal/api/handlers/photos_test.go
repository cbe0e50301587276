package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/unsplash-picker/internal/api/handlers"
	"github.com/donaldgifford/unsplash-picker/internal/notify"
	notifyMocks "github.com/donaldgifford/unsplash-picker/internal/notify/mocks"
	"github.com/donaldgifford/unsplash-picker/internal/paging"
	"github.com/donaldgifford/unsplash-picker/internal/picker"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

type stubFetcher struct {
	pages map[int][]domain.Photo
	total int
	err   error
	block chan struct{}
}

func (f *stubFetcher) FetchPage(ctx context.Context, page, _ int) (*domain.Page, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Page{Number: page, Photos: f.pages[page], TotalPages: f.total}, nil
}

// stubFactory serves fetchers keyed by "editorial", "search:<q>" or
// "collection:<id>". Unknown keys get an empty listing.
type stubFactory map[string]*stubFetcher

func (f stubFactory) NewDataSource(req picker.Request) (*paging.DataSource, error) {
	key := "editorial"
	switch req.Kind {
	case picker.KindSearch:
		key = "search:" + req.Query
	case picker.KindCollection:
		if req.CollectionID == "" {
			return nil, picker.ErrEmptyCollectionID
		}
		key = "collection:" + req.CollectionID
	}
	fetcher, ok := f[key]
	if !ok {
		fetcher = &stubFetcher{}
	}
	return paging.New(fetcher), nil
}

func photos(prefix string, n int) []domain.Photo {
	out := make([]domain.Photo, n)
	for i := range out {
		out[i] = domain.Photo{
			ID:     fmt.Sprintf("%s-%d", prefix, i),
			Width:  400,
			Height: 300,
			URLs:   domain.PhotoURLs{Thumb: "https://images.example.com/" + prefix},
		}
	}
	return out
}

func defaultFactory() stubFactory {
	return stubFactory{
		"editorial": {
			pages: map[int][]domain.Photo{1: photos("ed", 3), 2: photos("ed2", 2)},
			total: 2,
		},
		"search:cats": {
			pages: map[int][]domain.Photo{1: photos("cat", 2)},
			total: 1,
		},
		"search:zzzz": {total: 0},
		"search:offline": {
			err: &domain.NetworkError{Kind: domain.NetworkNoConnectivity, Err: errors.New("dial tcp: connection refused")},
		},
		"collection:42": {
			pages: map[int][]domain.Photo{1: photos("col", 1)},
			total: 1,
		},
	}
}

func newPhotosAPI(
	t *testing.T,
	factory picker.SourceFactory,
	notifier notify.SelectionNotifier,
) (humatest.TestAPI, *picker.Picker) {
	t.Helper()

	p, err := picker.New(factory, notifier, picker.WithMultipleSelection(true))
	require.NoError(t, err)
	t.Cleanup(p.Close)

	_, api := humatest.New(t)
	handlers.RegisterPhotoRoutes(api, handlers.NewPhotosHandler(t.Context(), p))
	return api, p
}

func decodeStatus(t *testing.T, data []byte) handlers.StatusBody {
	t.Helper()

	var body handlers.StatusBody
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestListPhotos_Initial(t *testing.T) {
	t.Parallel()

	api, _ := newPhotosAPI(t, defaultFactory(), nil)

	resp := api.Get("/api/v1/photos")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeStatus(t, resp.Body.Bytes())
	assert.Equal(t, "editorial", body.Source)
	assert.Equal(t, "idle", body.State)
	assert.Equal(t, 0, body.Count)
	assert.Nil(t, body.TotalPages)
	assert.Equal(t, "none", body.EmptyState)
	assert.Empty(t, body.Photos)
	assert.NotContains(t, resp.Body.String(), `"selected":null`)
}

func TestFetchNext(t *testing.T) {
	t.Parallel()

	api, _ := newPhotosAPI(t, defaultFactory(), nil)

	resp := api.Post("/api/v1/fetch?wait=true")
	require.Equal(t, http.StatusOK, resp.Code)

	var out struct {
		Started bool                `json:"started"`
		Status  handlers.StatusBody `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.True(t, out.Started)
	assert.Equal(t, "loaded", out.Status.State)
	assert.Equal(t, 3, out.Status.Count)
	assert.Equal(t, 1, out.Status.CurrentPage)
	require.NotNil(t, out.Status.TotalPages)
	assert.Equal(t, 2, *out.Status.TotalPages)

	resp = api.Post("/api/v1/fetch?wait=true")
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.True(t, out.Started)
	assert.Equal(t, 5, out.Status.Count)
	assert.True(t, out.Status.Exhausted)
	assert.Equal(t, "exhausted", out.Status.State)

	resp = api.Post("/api/v1/fetch?wait=true")
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.False(t, out.Started)
	assert.Equal(t, 5, out.Status.Count)
}

func TestListPhotos_Window(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "all", query: "", wantIDs: []string{"ed-0", "ed-1", "ed-2"}},
		{name: "offset", query: "?offset=1", wantIDs: []string{"ed-1", "ed-2"}},
		{name: "limit", query: "?limit=2", wantIDs: []string{"ed-0", "ed-1"}},
		{name: "offset and limit", query: "?offset=1&limit=1", wantIDs: []string{"ed-1"}},
		{name: "offset past end", query: "?offset=10", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api, _ := newPhotosAPI(t, defaultFactory(), nil)
			require.Equal(t, http.StatusOK, api.Post("/api/v1/fetch?wait=true").Code)

			resp := api.Get("/api/v1/photos" + tt.query)
			require.Equal(t, http.StatusOK, resp.Code)

			body := decodeStatus(t, resp.Body.Bytes())
			assert.Equal(t, 3, body.Count)
			ids := make([]string, 0, len(body.Photos))
			for _, p := range body.Photos {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestGetPhoto(t *testing.T) {
	t.Parallel()

	api, _ := newPhotosAPI(t, defaultFactory(), nil)
	require.Equal(t, http.StatusOK, api.Post("/api/v1/fetch?wait=true").Code)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "loaded index", path: "/api/v1/photos/2", wantStatus: http.StatusOK, wantBody: `"id":"ed-2"`},
		{name: "past end", path: "/api/v1/photos/3", wantStatus: http.StatusNotFound},
		{name: "negative", path: "/api/v1/photos/-1", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := api.Get(tt.path)
			assert.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantBody != "" {
				assert.Contains(t, resp.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		query          string
		wantSource     string
		wantCount      int
		wantEmptyState string
		wantLastError  bool
	}{
		{
			name:           "results",
			query:          "cats",
			wantSource:     "search",
			wantCount:      2,
			wantEmptyState: "none",
		},
		{
			name:           "no results",
			query:          "zzzz",
			wantSource:     "search",
			wantEmptyState: "no_results",
		},
		{
			name:           "offline",
			query:          "offline",
			wantSource:     "search",
			wantEmptyState: "no_connectivity",
			wantLastError:  true,
		},
		{
			name:           "empty term returns to editorial",
			query:          "  ",
			wantSource:     "editorial",
			wantCount:      3,
			wantEmptyState: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api, _ := newPhotosAPI(t, defaultFactory(), nil)

			resp := api.Post("/api/v1/search?wait=true", map[string]any{"query": tt.query})
			require.Equal(t, http.StatusOK, resp.Code)

			body := decodeStatus(t, resp.Body.Bytes())
			assert.Equal(t, tt.wantSource, body.Source)
			assert.Equal(t, tt.wantCount, body.Count)
			assert.Equal(t, tt.wantEmptyState, body.EmptyState)
			assert.Equal(t, tt.wantLastError, body.LastError != "")
			assert.False(t, body.Fetching)
		})
	}
}

func TestRefresh_RetriesFailedFirstPage(t *testing.T) {
	t.Parallel()

	factory := defaultFactory()
	api, _ := newPhotosAPI(t, factory, nil)

	resp := api.Post("/api/v1/search?wait=true", map[string]any{"query": "offline"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "no_connectivity", decodeStatus(t, resp.Body.Bytes()).EmptyState)

	// Connectivity is back; the same data source is retried.
	factory["search:offline"].err = nil
	factory["search:offline"].pages = map[int][]domain.Photo{1: photos("back", 2)}
	factory["search:offline"].total = 1

	resp = api.Post("/api/v1/refresh?wait=true")
	require.Equal(t, http.StatusOK, resp.Code)

	var out struct {
		Started bool                `json:"started"`
		Status  handlers.StatusBody `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.True(t, out.Started)
	assert.Equal(t, 2, out.Status.Count)
	assert.Equal(t, "none", out.Status.EmptyState)
	assert.Empty(t, out.Status.LastError)
}

func TestCollection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCount  int
	}{
		{
			name:       "loads collection",
			body:       map[string]any{"collection_id": "42"},
			wantStatus: http.StatusOK,
			wantCount:  1,
		},
		{
			name:       "empty id returns 422",
			body:       map[string]any{"collection_id": ""},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "blank id returns 422",
			body:       map[string]any{"collection_id": "   "},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing id returns 422",
			body:       map[string]any{},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api, _ := newPhotosAPI(t, defaultFactory(), nil)

			resp := api.Post("/api/v1/collection?wait=true", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			body := decodeStatus(t, resp.Body.Bytes())
			assert.Equal(t, "collection", body.Source)
			assert.Equal(t, "42", body.CollectionID)
			assert.Equal(t, tt.wantCount, body.Count)
		})
	}
}

func TestCancelFetch(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	factory := stubFactory{
		"editorial": {pages: map[int][]domain.Photo{1: photos("ed", 3)}, total: 1, block: block},
	}
	api, p := newPhotosAPI(t, factory, nil)

	resp := api.Post("/api/v1/fetch")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, p.Status().Fetching)

	resp = api.Post("/api/v1/cancel-fetch")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeStatus(t, resp.Body.Bytes())
	assert.False(t, body.Fetching)
	assert.Equal(t, 0, body.Count)
}

func TestCommitSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		setupMock  func(*notifyMocks.MockSelectionNotifier)
		wantStatus int
		wantIDs    []string
	}{
		{
			name: "commits selected photos in order",
			body: map[string]any{"indices": []int{2, 0}},
			setupMock: func(m *notifyMocks.MockSelectionNotifier) {
				m.EXPECT().
					PhotosSelected(mock.Anything, mock.MatchedBy(func(p notify.SelectionPayload) bool {
						return len(p.Photos) == 2 && p.Photos[0].ID == "ed-2" && p.Photos[1].ID == "ed-0"
					})).
					Return(nil).
					Once()
			},
			wantStatus: http.StatusOK,
			wantIDs:    []string{"ed-2", "ed-0"},
		},
		{
			name:       "out of range index returns 404",
			body:       map[string]any{"indices": []int{0, 9}},
			setupMock:  func(_ *notifyMocks.MockSelectionNotifier) {},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "empty indices returns 422",
			body:       map[string]any{"indices": []int{}},
			setupMock:  func(_ *notifyMocks.MockSelectionNotifier) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "notifier failure returns 502",
			body: map[string]any{"indices": []int{1}},
			setupMock: func(m *notifyMocks.MockSelectionNotifier) {
				m.EXPECT().
					PhotosSelected(mock.Anything, mock.Anything).
					Return(errors.New("webhook returned 500: boom")).
					Once()
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			notifier := notifyMocks.NewMockSelectionNotifier(t)
			tt.setupMock(notifier)

			api, p := newPhotosAPI(t, defaultFactory(), notifier)
			require.Equal(t, http.StatusOK, api.Post("/api/v1/fetch?wait=true").Code)

			resp := api.Post("/api/v1/selection", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code)

			if tt.wantStatus == http.StatusNotFound {
				assert.Empty(t, p.Selected())
			}
			if tt.wantIDs == nil {
				return
			}

			var out struct {
				Photos []domain.Photo `json:"photos"`
			}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
			ids := make([]string, 0, len(out.Photos))
			for _, photo := range out.Photos {
				ids = append(ids, photo.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Empty(t, p.Selected())
		})
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		notifyErr  error
		wantStatus int
	}{
		{name: "notifies host", wantStatus: http.StatusOK},
		{name: "notifier failure returns 502", notifyErr: errors.New("unreachable"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			notifier := notifyMocks.NewMockSelectionNotifier(t)
			notifier.EXPECT().PickerCancelled(mock.Anything).Return(tt.notifyErr).Once()

			api, _ := newPhotosAPI(t, defaultFactory(), notifier)

			resp := api.Post("/api/v1/cancel")
			require.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"status":"cancelled"}`, resp.Body.String())
			}
		})
	}
}
