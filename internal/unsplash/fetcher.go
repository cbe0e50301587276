package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// EditorialFetcher pages through the editorial collection, latest first.
type EditorialFetcher struct {
	client       *Client
	collectionID string
}

// Editorial returns a fetcher for the editorial collection with the given
// id. An empty id falls back to the global latest-photos feed.
func (c *Client) Editorial(collectionID string) *EditorialFetcher {
	return &EditorialFetcher{client: c, collectionID: collectionID}
}

// FetchPage fetches one page of editorial photos.
func (f *EditorialFetcher) FetchPage(ctx context.Context, page, perPage int) (*domain.Page, error) {
	if err := validatePage(page, perPage); err != nil {
		return nil, err
	}

	params := pageParams(page, perPage)
	path := "photos"
	if f.collectionID != "" {
		path = "collections/" + url.PathEscape(f.collectionID) + "/photos"
	} else {
		params.Set("order_by", "latest")
	}

	return f.client.fetchList(ctx, EndpointEditorial, path, params, page, perPage)
}

// SearchFetcher pages through the photos matching a query.
type SearchFetcher struct {
	client *Client
	query  string
	filter domain.ContentFilter
}

// Search returns a fetcher for photos matching query, filtered at filter.
func (c *Client) Search(query string, filter domain.ContentFilter) *SearchFetcher {
	if filter == "" {
		filter = domain.ContentFilterLow
	}
	return &SearchFetcher{client: c, query: query, filter: filter}
}

// Query returns the search term.
func (f *SearchFetcher) Query() string {
	return f.query
}

// FetchPage fetches one page of search results. The page count comes from
// the response body's total_pages.
func (f *SearchFetcher) FetchPage(ctx context.Context, page, perPage int) (*domain.Page, error) {
	if err := validatePage(page, perPage); err != nil {
		return nil, err
	}

	params := pageParams(page, perPage)
	params.Set("query", f.query)
	params.Set("content_filter", string(f.filter))

	resp, err := f.client.get(ctx, EndpointSearch, "search/photos", params)
	if err != nil {
		return nil, fmt.Errorf("searching page %d: %w", page, err)
	}

	var body searchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", decodeErr(err))
	}

	photos, err := decodeRaw(body.Results)
	if err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	return &domain.Page{
		Number:     page,
		Photos:     photos,
		TotalPages: max(body.TotalPages, 0),
	}, nil
}

// CollectionFetcher pages through an arbitrary collection.
type CollectionFetcher struct {
	client       *Client
	collectionID string
}

// Collection returns a fetcher for the collection with the given id.
func (c *Client) Collection(collectionID string) *CollectionFetcher {
	return &CollectionFetcher{client: c, collectionID: collectionID}
}

// FetchPage fetches one page of collection photos.
func (f *CollectionFetcher) FetchPage(ctx context.Context, page, perPage int) (*domain.Page, error) {
	if err := validatePage(page, perPage); err != nil {
		return nil, err
	}

	path := "collections/" + url.PathEscape(f.collectionID) + "/photos"
	return f.client.fetchList(ctx, EndpointCollection, path, pageParams(page, perPage), page, perPage)
}

// fetchList fetches an endpoint returning a bare JSON array of photos, with
// the result count in the X-Total header.
func (c *Client) fetchList(
	ctx context.Context,
	endpoint, path string,
	params url.Values,
	page, perPage int,
) (*domain.Page, error) {
	resp, err := c.get(ctx, endpoint, path, params)
	if err != nil {
		return nil, fmt.Errorf("fetching %s page %d: %w", endpoint, page, err)
	}

	photos, err := DecodePhotos(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", endpoint, err)
	}

	return &domain.Page{
		Number:     page,
		Photos:     photos,
		TotalPages: totalPages(resp.Total, page, perPage, len(photos)),
	}, nil
}
