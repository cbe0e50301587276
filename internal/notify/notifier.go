// Package notify delivers picker outcomes to the host application.
package notify

import (
	"context"

	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// Event names carried in payloads.
const (
	EventPhotosSelected  = "photos_selected"
	EventPickerCancelled = "picker_cancelled"
)

// SelectionPayload is the result of a committed selection.
type SelectionPayload struct {
	Photos []domain.Photo
	// Query is the search term active at commit time, empty for the
	// editorial feed.
	Query string
}

// SelectionNotifier tells the host that the user picked photos or
// dismissed the picker.
type SelectionNotifier interface {
	PhotosSelected(ctx context.Context, payload SelectionPayload) error
	PickerCancelled(ctx context.Context) error
}
