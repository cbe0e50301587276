package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements SelectionNotifier by logging discarded events. It
// is used when no webhook is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards events with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// PhotosSelected logs and discards a selection.
func (n *NoOpNotifier) PhotosSelected(_ context.Context, payload SelectionPayload) error {
	ids := make([]string, len(payload.Photos))
	for i := range payload.Photos {
		ids[i] = payload.Photos[i].ID
	}
	n.log.Debug("selection discarded (no backend configured)",
		"query", payload.Query,
		"photos", ids,
	)
	return nil
}

// PickerCancelled logs and discards a cancellation.
func (n *NoOpNotifier) PickerCancelled(context.Context) error {
	n.log.Debug("cancellation discarded (no backend configured)")
	return nil
}
