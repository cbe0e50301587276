package unsplash

import "encoding/json"

// photoDTO is a single photo from the Unsplash API. Required fields are
// pointers so that absence can be told apart from a zero value.
type photoDTO struct {
	ID             *string  `json:"id"`
	Width          *int     `json:"width"`
	Height         *int     `json:"height"`
	Color          string   `json:"color"`
	Description    string   `json:"description"`
	AltDescription string   `json:"alt_description"`
	URLs           *urlsDTO `json:"urls"`
	Links          linksDTO `json:"links"`
	User           *userDTO `json:"user"`
}

type urlsDTO struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

type linksDTO struct {
	Self             string `json:"self"`
	HTML             string `json:"html"`
	Download         string `json:"download"`
	DownloadLocation string `json:"download_location"`
}

type userDTO struct {
	Username string       `json:"username"`
	Name     string       `json:"name"`
	Links    userLinksDTO `json:"links"`
}

type userLinksDTO struct {
	Self string `json:"self"`
	HTML string `json:"html"`
}

// searchResponse is the body of GET /search/photos.
type searchResponse struct {
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
	Results    []json.RawMessage `json:"results"`
}

// errorResponse is the body Unsplash returns alongside non-2xx statuses.
type errorResponse struct {
	Errors []string `json:"errors"`
}
