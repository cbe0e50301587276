package unsplash

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/donaldgifford/unsplash-picker/internal/metrics"
	"github.com/donaldgifford/unsplash-picker/pkg/logger"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// DownloadTracker reports selected photos to Unsplash's download endpoint.
// Requests are fire-and-forget: responses are ignored and nothing is retried.
type DownloadTracker struct {
	client *resty.Client
	log    *slog.Logger
	wg     sync.WaitGroup
}

// DownloadTrackerOption configures the DownloadTracker.
type DownloadTrackerOption func(*DownloadTracker)

// WithTrackerLogger sets the logger.
func WithTrackerLogger(l *slog.Logger) DownloadTrackerOption {
	return func(d *DownloadTracker) {
		d.log = l
	}
}

// WithTrackerTimeout bounds each tracking request.
func WithTrackerTimeout(timeout time.Duration) DownloadTrackerOption {
	return func(d *DownloadTracker) {
		d.client.SetTimeout(timeout)
	}
}

// NewDownloadTracker creates a tracker authenticating with accessKey.
func NewDownloadTracker(accessKey string, opts ...DownloadTrackerOption) *DownloadTracker {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetHeader("Accept-Version", "v1")
	client.SetQueryParam("client_id", accessKey)

	d := &DownloadTracker{
		client: client,
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Track starts one tracking request per photo that carries a download
// location and returns how many were started. It does not block.
func (d *DownloadTracker) Track(ctx context.Context, photos []domain.Photo) int {
	ctx = context.WithoutCancel(ctx)

	started := 0
	for i := range photos {
		location, ok := photos[i].Link(domain.LinkDownloadLocation)
		if !ok {
			metrics.DownloadsTrackedTotal.WithLabelValues("skipped").Inc()
			continue
		}

		started++
		d.wg.Add(1)
		go func(id, location string) {
			defer d.wg.Done()

			resp, err := d.client.R().SetContext(ctx).Get(location)
			if err != nil {
				metrics.DownloadsTrackedTotal.WithLabelValues("error").Inc()
				d.log.Warn("download tracking failed", "photo_id", id, "error", err)
				return
			}
			metrics.DownloadsTrackedTotal.WithLabelValues("sent").Inc()
			d.log.Debug("download tracked", "photo_id", id, "status", resp.StatusCode())
		}(photos[i].ID, location)
	}
	return started
}

// Wait blocks until every in-flight tracking request has finished.
func (d *DownloadTracker) Wait() {
	d.wg.Wait()
}
