package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/donaldgifford/unsplash-picker/internal/api/handlers"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// FetchResult reports whether a fetch started and the picker status after it.
type FetchResult struct {
	Started bool                `json:"started"`
	Status  handlers.StatusBody `json:"status"`
}

// Quota is the server's view of the Unsplash hourly allowance.
type Quota struct {
	HourlyLimit int64     `json:"hourly_limit"`
	HourlyUsed  int64     `json:"hourly_used"`
	Remaining   int64     `json:"remaining"`
	ResetAt     time.Time `json:"reset_at"`
}

func waitQuery(path string, wait bool) string {
	if wait {
		return path + "?wait=true"
	}
	return path
}

// Status returns the picker status with the loaded photos in
// [offset, offset+limit). A zero limit returns every photo from offset.
func (c *Client) Status(ctx context.Context, offset, limit int) (*handlers.StatusBody, error) {
	q := url.Values{}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/v1/photos"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var st handlers.StatusBody
	if err := c.get(ctx, path, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Photo returns the loaded photo at index.
func (c *Client) Photo(ctx context.Context, index int) (*domain.Photo, error) {
	var p domain.Photo
	if err := c.get(ctx, fmt.Sprintf("/api/v1/photos/%d", index), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Search switches the picker to query, or to the editorial feed when query
// is empty. With wait set the call returns once the first page has loaded.
func (c *Client) Search(ctx context.Context, query string, wait bool) (*handlers.StatusBody, error) {
	body := map[string]string{"query": query}

	var st handlers.StatusBody
	if err := c.post(ctx, waitQuery("/api/v1/search", wait), body, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Collection switches the picker to a collection.
func (c *Client) Collection(ctx context.Context, id string, wait bool) (*handlers.StatusBody, error) {
	body := map[string]string{"collection_id": id}

	var st handlers.StatusBody
	if err := c.post(ctx, waitQuery("/api/v1/collection", wait), body, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// FetchNext asks the picker to load the next page.
func (c *Client) FetchNext(ctx context.Context, wait bool) (*FetchResult, error) {
	var res FetchResult
	if err := c.post(ctx, waitQuery("/api/v1/fetch", wait), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Refresh asks the picker to reload the first page of an empty listing.
func (c *Client) Refresh(ctx context.Context, wait bool) (*FetchResult, error) {
	var res FetchResult
	if err := c.post(ctx, waitQuery("/api/v1/refresh", wait), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CancelFetch abandons the in-flight fetch.
func (c *Client) CancelFetch(ctx context.Context) (*handlers.StatusBody, error) {
	var st handlers.StatusBody
	if err := c.post(ctx, "/api/v1/cancel-fetch", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Commit selects the photos at indices, in order, and hands them to the
// server's notifier.
func (c *Client) Commit(ctx context.Context, indices []int) ([]domain.Photo, error) {
	body := map[string][]int{"indices": indices}

	var resp struct {
		Photos []domain.Photo `json:"photos"`
	}
	if err := c.post(ctx, "/api/v1/selection", body, &resp); err != nil {
		return nil, err
	}
	return resp.Photos, nil
}

// Cancel dismisses the picker without a selection.
func (c *Client) Cancel(ctx context.Context) error {
	return c.post(ctx, "/api/v1/cancel", nil, nil)
}

// Quota returns the server's Unsplash quota status.
func (c *Client) Quota(ctx context.Context) (*Quota, error) {
	var q Quota
	if err := c.get(ctx, "/api/v1/quota", &q); err != nil {
		return nil, err
	}
	return &q, nil
}
