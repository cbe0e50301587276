// Package domain defines the core photo types shared by the fetchers, the
// paging engine, and the picker.
package domain

import (
	"fmt"
	"strings"
)

// URLKind names one of the fixed image size variants the API returns.
type URLKind string

// Image size variants, largest first.
const (
	URLRaw     URLKind = "raw"
	URLFull    URLKind = "full"
	URLRegular URLKind = "regular"
	URLSmall   URLKind = "small"
	URLThumb   URLKind = "thumb"
)

// URLKinds lists every size variant in descending size order.
var URLKinds = []URLKind{URLRaw, URLFull, URLRegular, URLSmall, URLThumb}

// LinkKind names one of the fixed actions a photo links to.
type LinkKind string

// Photo link actions.
const (
	LinkSelf             LinkKind = "self"
	LinkHTML             LinkKind = "html"
	LinkDownload         LinkKind = "download"
	LinkDownloadLocation LinkKind = "download_location"
)

// PhotoURLs holds the image URL for each size variant. Empty means absent.
type PhotoURLs struct {
	Raw     string `json:"raw,omitempty"`
	Full    string `json:"full,omitempty"`
	Regular string `json:"regular,omitempty"`
	Small   string `json:"small,omitempty"`
	Thumb   string `json:"thumb,omitempty"`
}

// Get returns the URL for kind, reporting whether it is present.
func (u PhotoURLs) Get(kind URLKind) (string, bool) {
	var v string
	switch kind {
	case URLRaw:
		v = u.Raw
	case URLFull:
		v = u.Full
	case URLRegular:
		v = u.Regular
	case URLSmall:
		v = u.Small
	case URLThumb:
		v = u.Thumb
	}
	return v, v != ""
}

// Any reports whether at least one variant is set.
func (u PhotoURLs) Any() bool {
	return u.Raw != "" || u.Full != "" || u.Regular != "" || u.Small != "" || u.Thumb != ""
}

// PhotoLinks holds the action URLs of a photo.
type PhotoLinks struct {
	Self             string `json:"self,omitempty"`
	HTML             string `json:"html,omitempty"`
	Download         string `json:"download,omitempty"`
	DownloadLocation string `json:"download_location,omitempty"`
}

// Get returns the link for kind, reporting whether it is present.
func (l PhotoLinks) Get(kind LinkKind) (string, bool) {
	var v string
	switch kind {
	case LinkSelf:
		v = l.Self
	case LinkHTML:
		v = l.HTML
	case LinkDownload:
		v = l.Download
	case LinkDownloadLocation:
		v = l.DownloadLocation
	}
	return v, v != ""
}

// User is the attribution for a photo.
type User struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// Photo is one remote photo. It is a value type: copies never share
// mutable state, so a Photo is immutable once built.
type Photo struct {
	ID          string     `json:"id"`
	URLs        PhotoURLs  `json:"urls"`
	Links       PhotoLinks `json:"links"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Color       string     `json:"color,omitempty"`
	Description string     `json:"description,omitempty"`
	User        User       `json:"user"`
}

// URL returns the image URL for the given size variant.
func (p Photo) URL(kind URLKind) (string, bool) {
	return p.URLs.Get(kind)
}

// Link returns the URL for the given action.
func (p Photo) Link(kind LinkKind) (string, bool) {
	return p.Links.Get(kind)
}

// AspectRatio returns width / height, or 0 for a degenerate photo.
func (p Photo) AspectRatio() float64 {
	if p.Height <= 0 {
		return 0
	}
	return float64(p.Width) / float64(p.Height)
}

// Page is the result of one fetch: the photos of page Number plus the
// server-reported page count for the query.
type Page struct {
	Number     int
	Photos     []Photo
	TotalPages int
}

// ContentFilter is the server-side safety filter applied to search results.
type ContentFilter string

// Content filter levels.
const (
	ContentFilterLow  ContentFilter = "low"
	ContentFilterHigh ContentFilter = "high"
)

// ParseContentFilter converts s to a ContentFilter. Empty defaults to low.
func ParseContentFilter(s string) (ContentFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ContentFilterLow):
		return ContentFilterLow, nil
	case string(ContentFilterHigh):
		return ContentFilterHigh, nil
	default:
		return "", fmt.Errorf("content filter must be one of: low, high (got %q)", s)
	}
}
