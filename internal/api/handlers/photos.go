package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/unsplash-picker/internal/picker"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// PhotoPicker is the picker session the photo endpoints drive.
type PhotoPicker interface {
	Status() picker.Status
	Item(i int) (domain.Photo, bool)
	SetSearchText(text string) error
	SetCollection(id string) error
	FetchNext(ctx context.Context) bool
	Refresh(ctx context.Context) bool
	CancelFetch()
	Wait(ctx context.Context) error
	Select(i int) error
	ClearSelection()
	Commit(ctx context.Context) ([]domain.Photo, error)
	Cancel(ctx context.Context) error
}

// PhotosHandler exposes one picker session over HTTP.
type PhotosHandler struct {
	picker PhotoPicker
	// ctx scopes fetches, which outlive the request that started them.
	ctx context.Context
}

// NewPhotosHandler creates a PhotosHandler. Fetches started by a request
// run under ctx and stop when it is cancelled.
func NewPhotosHandler(ctx context.Context, p PhotoPicker) *PhotosHandler {
	return &PhotosHandler{picker: p, ctx: ctx}
}

// StatusBody describes the active data source and what it has loaded.
type StatusBody struct {
	Source       string         `json:"source"                  example:"search"          doc:"Active listing: editorial, search or collection"`
	Query        string         `json:"query,omitempty"         example:"cats"            doc:"Current search term"`
	CollectionID string         `json:"collection_id,omitempty" example:"317099"          doc:"Current collection"`
	State        string         `json:"state"                   example:"loaded"          doc:"Data source state"`
	CurrentPage  int            `json:"current_page"            example:"2"               doc:"Last page applied"`
	TotalPages   *int           `json:"total_pages,omitempty"   doc:"Server-reported page count, absent until the first page loads"`
	Fetching     bool           `json:"fetching"                                          doc:"A fetch is in flight"`
	Exhausted    bool           `json:"exhausted"                                         doc:"Every page has been loaded"`
	Count        int            `json:"count"                   example:"40"              doc:"Number of photos loaded"`
	Selected     []int          `json:"selected"                                          doc:"Selected indices in selection order"`
	EmptyState   string         `json:"empty_state"             example:"none"            doc:"Why nothing is shown: none, no_results, no_connectivity or server_error"`
	LastError    string         `json:"last_error,omitempty"                              doc:"Error from the last failed fetch"`
	Photos       []domain.Photo `json:"photos"                                            doc:"Loaded photos in the requested window"`
}

func newStatusBody(st *picker.Status, offset, limit int) StatusBody {
	body := StatusBody{
		Source:       st.Source.String(),
		Query:        st.Query,
		CollectionID: st.CollectionID,
		State:        st.State.String(),
		CurrentPage:  st.CurrentPage,
		Fetching:     st.Fetching,
		Exhausted:    st.Exhausted,
		Count:        len(st.Photos),
		Selected:     st.Selected,
		EmptyState:   string(st.EmptyState),
		Photos:       window(st.Photos, offset, limit),
	}
	if st.TotalKnown {
		total := st.TotalPages
		body.TotalPages = &total
	}
	if st.LastError != nil {
		body.LastError = st.LastError.Error()
	}
	if body.Selected == nil {
		body.Selected = []int{}
	}
	return body
}

// window returns photos[offset:offset+limit]; a zero limit means the rest.
func window(photos []domain.Photo, offset, limit int) []domain.Photo {
	if offset >= len(photos) {
		return []domain.Photo{}
	}
	photos = photos[offset:]
	if limit > 0 && limit < len(photos) {
		photos = photos[:limit]
	}
	return photos
}

// StatusOutput is the response for endpoints that return the picker status.
type StatusOutput struct {
	Body StatusBody
}

// ListPhotosInput is the request for listing loaded photos.
type ListPhotosInput struct {
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Index of the first photo returned"`
	Limit  int `query:"limit"  minimum:"0" default:"0" doc:"Maximum photos returned, 0 for all"`
}

// ListPhotos returns the picker status and the loaded photos.
func (h *PhotosHandler) ListPhotos(_ context.Context, input *ListPhotosInput) (*StatusOutput, error) {
	st := h.picker.Status()
	return &StatusOutput{Body: newStatusBody(&st, input.Offset, input.Limit)}, nil
}

// GetPhotoInput is the request for one loaded photo.
type GetPhotoInput struct {
	Index int `path:"index" minimum:"0" doc:"Photo index in load order"`
}

// PhotoOutput is the response for one photo.
type PhotoOutput struct {
	Body domain.Photo
}

// GetPhoto returns the loaded photo at an index.
func (h *PhotosHandler) GetPhoto(_ context.Context, input *GetPhotoInput) (*PhotoOutput, error) {
	photo, ok := h.picker.Item(input.Index)
	if !ok {
		return nil, huma.Error404NotFound("photo not loaded")
	}
	return &PhotoOutput{Body: photo}, nil
}

// SearchInput is the request body for changing the search term.
type SearchInput struct {
	Wait bool `query:"wait" doc:"Block until the first page has loaded"`
	Body struct {
		Query string `json:"query" maxLength:"200" example:"mountain lake" doc:"Search term, empty for the editorial feed"`
	}
}

// Search switches the picker to a search, or back to the editorial feed
// for an empty term, and loads the first page.
func (h *PhotosHandler) Search(ctx context.Context, input *SearchInput) (*StatusOutput, error) {
	if err := h.picker.SetSearchText(input.Body.Query); err != nil {
		return nil, huma.Error500InternalServerError("changing search failed", err)
	}
	return h.refresh(ctx, input.Wait)
}

// CollectionInput is the request body for showing a collection.
type CollectionInput struct {
	Wait bool `query:"wait" doc:"Block until the first page has loaded"`
	Body struct {
		CollectionID string `json:"collection_id" minLength:"1" example:"317099" doc:"Unsplash collection id"`
	}
}

// Collection switches the picker to a collection and loads the first page.
func (h *PhotosHandler) Collection(ctx context.Context, input *CollectionInput) (*StatusOutput, error) {
	if err := h.picker.SetCollection(input.Body.CollectionID); err != nil {
		if errors.Is(err, picker.ErrEmptyCollectionID) {
			return nil, huma.Error422UnprocessableEntity("collection_id is required")
		}
		return nil, huma.Error500InternalServerError("changing collection failed", err)
	}
	return h.refresh(ctx, input.Wait)
}

func (h *PhotosHandler) refresh(ctx context.Context, wait bool) (*StatusOutput, error) {
	h.picker.Refresh(h.ctx)
	if wait {
		if err := h.picker.Wait(ctx); err != nil {
			return nil, huma.Error504GatewayTimeout("waiting for photos", err)
		}
	}
	st := h.picker.Status()
	return &StatusOutput{Body: newStatusBody(&st, 0, 0)}, nil
}

// FetchInput is the request for starting a fetch.
type FetchInput struct {
	Wait bool `query:"wait" doc:"Block until the fetch has finished"`
}

// FetchOutput reports whether a fetch started and the resulting status.
type FetchOutput struct {
	Body struct {
		Started bool       `json:"started" doc:"Whether a fetch was started"`
		Status  StatusBody `json:"status"`
	}
}

// FetchNext loads the next page of the active source.
func (h *PhotosHandler) FetchNext(ctx context.Context, input *FetchInput) (*FetchOutput, error) {
	return h.fetch(ctx, input.Wait, h.picker.FetchNext)
}

// Refresh reloads the first page when the active source shows nothing.
func (h *PhotosHandler) Refresh(ctx context.Context, input *FetchInput) (*FetchOutput, error) {
	return h.fetch(ctx, input.Wait, h.picker.Refresh)
}

func (h *PhotosHandler) fetch(
	ctx context.Context,
	wait bool,
	start func(context.Context) bool,
) (*FetchOutput, error) {
	resp := &FetchOutput{}
	resp.Body.Started = start(h.ctx)
	if resp.Body.Started && wait {
		if err := h.picker.Wait(ctx); err != nil {
			return nil, huma.Error504GatewayTimeout("waiting for photos", err)
		}
	}
	st := h.picker.Status()
	resp.Body.Status = newStatusBody(&st, 0, 0)
	return resp, nil
}

// CancelFetch abandons the in-flight fetch, keeping loaded photos.
func (h *PhotosHandler) CancelFetch(_ context.Context, _ *struct{}) (*StatusOutput, error) {
	h.picker.CancelFetch()
	st := h.picker.Status()
	return &StatusOutput{Body: newStatusBody(&st, 0, 0)}, nil
}

// SelectionInput is the request body for committing a selection.
type SelectionInput struct {
	Body struct {
		Indices []int `json:"indices" minItems:"1" doc:"Indices of the photos to select, in order"`
	}
}

// SelectionOutput is the response for a committed selection.
type SelectionOutput struct {
	Body struct {
		Photos []domain.Photo `json:"photos" doc:"Photos handed to the host"`
	}
}

// CommitSelection replaces the selection with the given indices and
// commits it to the host.
func (h *PhotosHandler) CommitSelection(ctx context.Context, input *SelectionInput) (*SelectionOutput, error) {
	h.picker.ClearSelection()
	for _, i := range input.Body.Indices {
		if err := h.picker.Select(i); err != nil {
			h.picker.ClearSelection()
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("photo not loaded", err)
			}
			return nil, huma.Error500InternalServerError("selecting photo failed", err)
		}
	}

	photos, err := h.picker.Commit(ctx)
	switch {
	case errors.Is(err, picker.ErrNothingSelected):
		return nil, huma.Error422UnprocessableEntity("no photos selected")
	case err != nil:
		return nil, huma.Error502BadGateway("delivering selection failed", err)
	}

	resp := &SelectionOutput{}
	resp.Body.Photos = photos
	return resp, nil
}

// CancelOutput is the response for dismissing the picker.
type CancelOutput struct {
	Body StatusResponse
}

// Cancel dismisses the picker and tells the host.
func (h *PhotosHandler) Cancel(ctx context.Context, _ *struct{}) (*CancelOutput, error) {
	if err := h.picker.Cancel(ctx); err != nil {
		return nil, huma.Error502BadGateway("delivering cancellation failed", err)
	}
	return &CancelOutput{Body: StatusResponse{Status: "cancelled"}}, nil
}

// RegisterPhotoRoutes registers the picker endpoints with the Huma API.
func RegisterPhotoRoutes(api huma.API, h *PhotosHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-photos",
		Method:      http.MethodGet,
		Path:        "/api/v1/photos",
		Summary:     "List loaded photos",
		Description: "Returns the active data source state and the photos loaded so far.",
		Tags:        []string{"photos"},
	}, h.ListPhotos)

	huma.Register(api, huma.Operation{
		OperationID: "get-photo",
		Method:      http.MethodGet,
		Path:        "/api/v1/photos/{index}",
		Summary:     "Get a loaded photo",
		Description: "Returns the photo at an index of the active data source.",
		Tags:        []string{"photos"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetPhoto)

	huma.Register(api, huma.Operation{
		OperationID: "search-photos",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Change the search term",
		Description: "Switches to search results for the term, or to the editorial feed for an empty term, and loads the first page.",
		Tags:        []string{"photos"},
		Errors:      []int{http.StatusInternalServerError, http.StatusGatewayTimeout},
	}, h.Search)

	huma.Register(api, huma.Operation{
		OperationID: "show-collection",
		Method:      http.MethodPost,
		Path:        "/api/v1/collection",
		Summary:     "Show a collection",
		Description: "Switches to the photos of a collection and loads the first page.",
		Tags:        []string{"photos"},
		Errors:      []int{http.StatusInternalServerError, http.StatusGatewayTimeout},
	}, h.Collection)

	huma.Register(api, huma.Operation{
		OperationID: "fetch-next-page",
		Method:      http.MethodPost,
		Path:        "/api/v1/fetch",
		Summary:     "Load the next page",
		Description: "Starts loading the next page unless a fetch is in flight or every page is loaded.",
		Tags:        []string{"photos"},
		Errors:      []int{http.StatusGatewayTimeout},
	}, h.FetchNext)

	huma.Register(api, huma.Operation{
		OperationID: "refresh-photos",
		Method:      http.MethodPost,
		Path:        "/api/v1/refresh",
		Summary:     "Retry the first page",
		Description: "Reloads the first page when the active data source shows nothing, for example after a failed fetch.",
		Tags:        []string{"photos"},
		Errors:      []int{http.StatusGatewayTimeout},
	}, h.Refresh)

	huma.Register(api, huma.Operation{
		OperationID: "cancel-fetch",
		Method:      http.MethodPost,
		Path:        "/api/v1/cancel-fetch",
		Summary:     "Cancel the in-flight fetch",
		Description: "Abandons the in-flight fetch; its result is discarded when it arrives.",
		Tags:        []string{"photos"},
	}, h.CancelFetch)

	huma.Register(api, huma.Operation{
		OperationID: "commit-selection",
		Method:      http.MethodPost,
		Path:        "/api/v1/selection",
		Summary:     "Commit a selection",
		Description: "Selects the photos at the given indices and delivers them to the host.",
		Tags:        []string{"selection"},
		Errors: []int{
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
			http.StatusBadGateway,
		},
	}, h.CommitSelection)

	huma.Register(api, huma.Operation{
		OperationID: "cancel-picker",
		Method:      http.MethodPost,
		Path:        "/api/v1/cancel",
		Summary:     "Dismiss the picker",
		Description: "Abandons any fetch, clears the selection, and tells the host the picker was cancelled.",
		Tags:        []string{"selection"},
		Errors:      []int{http.StatusBadGateway},
	}, h.Cancel)
}
