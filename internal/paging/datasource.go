// Package paging implements the paged photo data source: an append-only
// list of photos grown one page at a time from a PageFetcher, with at most
// one fetch in flight and stale results discarded after a reset or cancel.
package paging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/unsplash-picker/internal/metrics"
	"github.com/donaldgifford/unsplash-picker/pkg/logger"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 20

const unknownTotal = -1

const tracerName = "github.com/donaldgifford/unsplash-picker/internal/paging"

// PageFetcher retrieves one page of photos. page is 1-based.
type PageFetcher interface {
	FetchPage(ctx context.Context, page, perPage int) (*domain.Page, error)
}

// State summarizes a DataSource for display.
type State int

// Data source states.
const (
	// StateIdle means nothing has been fetched since the last reset.
	StateIdle State = iota
	// StateFetching means a page request is in flight.
	StateFetching
	// StateLoaded means at least one photo is loaded and more may follow.
	StateLoaded
	// StateEmpty means a fetch succeeded but no photos are loaded.
	StateEmpty
	// StateExhausted means every page has been fetched.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateLoaded:
		return "loaded"
	case StateEmpty:
		return "empty"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// DataSource accumulates pages from a PageFetcher. All methods are safe for
// concurrent use, though the type assumes a single logical owner driving it.
type DataSource struct {
	fetcher    PageFetcher
	perPage    int
	log        *slog.Logger
	tracer     trace.Tracer
	dispatcher Dispatcher
	events     eventQueue

	mu          sync.Mutex
	items       []domain.Photo
	currentPage int
	totalPages  int
	fetching    bool
	generation  uint64
	cancel      context.CancelFunc
	delegate    Delegate
}

// Option configures the DataSource.
type Option func(*DataSource)

// WithPerPage overrides DefaultPerPage. Values below 1 are ignored.
func WithPerPage(n int) Option {
	return func(ds *DataSource) {
		if n > 0 {
			ds.perPage = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(ds *DataSource) {
		ds.log = l
	}
}

// WithTracer sets the tracer used for fetch spans. The default comes from
// the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(ds *DataSource) {
		ds.tracer = t
	}
}

// WithDispatcher sets how events are delivered. The default is Inline.
func WithDispatcher(d Dispatcher) Option {
	return func(ds *DataSource) {
		ds.dispatcher = d
	}
}

// WithDelegate sets the initial delegate.
func WithDelegate(d Delegate) Option {
	return func(ds *DataSource) {
		ds.delegate = d
	}
}

// New creates an idle DataSource reading from fetcher.
func New(fetcher PageFetcher, opts ...Option) *DataSource {
	ds := &DataSource{
		fetcher:    fetcher,
		perPage:    DefaultPerPage,
		log:        logger.Discard(),
		tracer:     otel.Tracer(tracerName),
		dispatcher: Inline,
		totalPages: unknownTotal,
	}
	for _, opt := range opts {
		opt(ds)
	}
	return ds
}

// SetDelegate replaces the delegate. Pass nil to stop receiving events.
func (ds *DataSource) SetDelegate(d Delegate) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.delegate = d
}

// Reset discards all loaded photos and any in-flight fetch, returning the
// DataSource to its initial state. Calling it repeatedly is harmless.
func (ds *DataSource) Reset() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.invalidateLocked()
	ds.items = nil
	ds.currentPage = 0
	ds.totalPages = unknownTotal
}

// CancelFetch abandons the in-flight fetch, if any. Its result, when it
// arrives, is dropped without an event. Loaded photos are kept, and events
// for fetches that already completed are still delivered.
func (ds *DataSource) CancelFetch() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.fetching {
		return
	}
	ds.log.Debug("cancelling fetch", "page", ds.currentPage+1)
	ds.invalidateLocked()
}

func (ds *DataSource) invalidateLocked() {
	ds.generation++
	if ds.cancel != nil {
		ds.cancel()
		ds.cancel = nil
	}
	ds.fetching = false
}

// FetchNextPage requests the page after the last one loaded. It returns
// false without doing anything when a fetch is already in flight or every
// page has been loaded. The fetch runs in the background under ctx, so ctx
// must outlive the call; completion is reported to the delegate.
func (ds *DataSource) FetchNextPage(ctx context.Context) bool {
	ds.mu.Lock()
	if ds.fetching || ds.exhaustedLocked() {
		ds.mu.Unlock()
		return false
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	ds.fetching = true
	ds.cancel = cancel
	gen := ds.generation
	page := ds.currentPage + 1
	ds.mu.Unlock()

	ds.log.Debug("fetching page", "page", page, "per_page", ds.perPage)
	ds.emit(gen, func(d Delegate) { d.WillStartFetching(ds) })

	go ds.fetch(fetchCtx, cancel, gen, page)
	return true
}

func (ds *DataSource) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, page int) {
	defer cancel()

	ctx, span := ds.tracer.Start(ctx, "paging.FetchPage", trace.WithAttributes(
		attribute.Int("picker.page", page),
		attribute.Int("picker.per_page", ds.perPage),
	))
	defer span.End()

	start := time.Now()
	result, err := ds.fetcher.FetchPage(ctx, page, ds.perPage)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err == nil && result == nil {
		err = &domain.DecodeError{Reason: "fetcher returned no page"}
	}

	ds.mu.Lock()
	if gen != ds.generation || !ds.fetching {
		ds.mu.Unlock()
		metrics.StaleResponsesTotal.Inc()
		span.SetAttributes(attribute.Bool("picker.stale", true))
		ds.log.Debug("dropping stale page", "page", page)
		return
	}
	ds.fetching = false
	ds.cancel = nil

	if err != nil {
		ds.mu.Unlock()
		err = classify(err)
		metrics.FetchFailuresTotal.WithLabelValues(domain.ErrorKind(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.ErrorKind(err))
		ds.log.Warn("page fetch failed", "page", page, "error", err)
		ds.emit(gen, func(d Delegate) { d.FetchFailed(ds, err) })
		return
	}

	added := slices.Clone(result.Photos)
	if added == nil {
		added = []domain.Photo{}
	}
	ds.items = append(ds.items, added...)
	ds.currentPage = page
	// A page was just served, so the total never drops below it.
	ds.totalPages = max(result.TotalPages, page)
	total := ds.totalPages
	ds.mu.Unlock()

	metrics.PagesFetchedTotal.Inc()
	metrics.PhotosAppendedTotal.Add(float64(len(added)))
	span.SetAttributes(attribute.Int("picker.photos", len(added)))
	ds.log.Debug("page fetched", "page", page, "photos", len(added), "total_pages", total)

	ds.emit(gen, func(d Delegate) { d.DidFetchItems(ds, added) })
}

// classify maps errors that are neither decode nor network errors onto
// NetworkOther so the delegate only ever sees the two kinds.
func classify(err error) error {
	if errors.Is(err, domain.ErrDecode) || errors.Is(err, domain.ErrNetwork) {
		return err
	}
	return &domain.NetworkError{Kind: domain.NetworkOther, Err: err}
}

// emit queues an event for delivery and starts a drain when none is
// running.
func (ds *DataSource) emit(gen uint64, deliver func(Delegate)) {
	if ds.events.push(queued{generation: gen, deliver: deliver}) {
		ds.dispatcher.Dispatch(ds.drain)
	}
}

func (ds *DataSource) drain() {
	for {
		ev, ok := ds.events.pop()
		if !ok {
			return
		}

		ds.mu.Lock()
		current := ev.generation == ds.generation
		d := ds.delegate
		ds.mu.Unlock()

		if !current {
			metrics.StaleResponsesTotal.Inc()
			continue
		}
		if d != nil {
			ev.deliver(d)
		}
	}
}

// Item returns the photo at index i. It reports false for any index outside
// the loaded range.
func (ds *DataSource) Item(i int) (domain.Photo, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if i < 0 || i >= len(ds.items) {
		return domain.Photo{}, false
	}
	return ds.items[i], true
}

// Items returns a copy of every loaded photo in fetch order.
func (ds *DataSource) Items() []domain.Photo {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return slices.Clone(ds.items)
}

// Len returns the number of loaded photos.
func (ds *DataSource) Len() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.items)
}

// IsFetching reports whether a fetch is in flight.
func (ds *DataSource) IsFetching() bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.fetching
}

// IsExhausted reports whether the last page has been loaded.
func (ds *DataSource) IsExhausted() bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.exhaustedLocked()
}

func (ds *DataSource) exhaustedLocked() bool {
	return ds.totalPages != unknownTotal && ds.currentPage >= ds.totalPages
}

// CurrentPage returns the number of the last page loaded, 0 when none.
func (ds *DataSource) CurrentPage() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.currentPage
}

// TotalPages returns the page count reported by the last successful fetch.
// ok is false until the first fetch succeeds.
func (ds *DataSource) TotalPages() (n int, ok bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.totalPages == unknownTotal {
		return 0, false
	}
	return ds.totalPages, true
}

// PerPage returns the page size.
func (ds *DataSource) PerPage() int {
	return ds.perPage
}

// State returns the current state.
func (ds *DataSource) State() State {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	switch {
	case ds.fetching:
		return StateFetching
	case ds.currentPage == 0:
		return StateIdle
	case len(ds.items) == 0:
		return StateEmpty
	case ds.exhaustedLocked():
		return StateExhausted
	default:
		return StateLoaded
	}
}
