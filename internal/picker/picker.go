package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/donaldgifford/unsplash-picker/internal/metrics"
	"github.com/donaldgifford/unsplash-picker/internal/notify"
	"github.com/donaldgifford/unsplash-picker/internal/paging"
	"github.com/donaldgifford/unsplash-picker/pkg/logger"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// ErrNothingSelected is returned by Commit when no loaded photo is selected.
var ErrNothingSelected = errors.New("no photos selected")

// EmptyState explains why the active source shows no photos.
type EmptyState string

// Empty states.
const (
	EmptyNone           EmptyState = "none"
	EmptyNoResults      EmptyState = "no_results"
	EmptyNoConnectivity EmptyState = "no_connectivity"
	EmptyServerError    EmptyState = "server_error"
)

// Observer is told when the picker changes what it is showing. Callbacks
// run without the picker's lock held.
type Observer interface {
	DidSearch(term string)
	DataSourceChanged(ds *paging.DataSource)
}

// DownloadTracker reports committed photos to the API.
type DownloadTracker interface {
	Track(ctx context.Context, photos []domain.Photo) int
}

// Status is a snapshot of the picker.
type Status struct {
	Source       Kind
	Query        string
	CollectionID string
	State        paging.State
	Photos       []domain.Photo
	CurrentPage  int
	TotalPages   int
	TotalKnown   bool
	Fetching     bool
	Exhausted    bool
	Selected     []int
	LastError    error
	EmptyState   EmptyState
}

// Picker is a headless photo picker session.
type Picker struct {
	factory  SourceFactory
	notifier notify.SelectionNotifier
	tracker  DownloadTracker
	observer Observer
	log      *slog.Logger
	multiple bool

	mu           sync.Mutex
	editorial    *paging.DataSource
	active       *paging.DataSource
	kind         Kind
	query        string
	collectionID string
	selected     []int
	lastErr      error
	done         chan struct{}
}

// Option configures the Picker.
type Option func(*Picker)

// WithObserver sets the observer.
func WithObserver(o Observer) Option {
	return func(p *Picker) {
		p.observer = o
	}
}

// WithDownloadTracker reports committed photos through t.
func WithDownloadTracker(t DownloadTracker) Option {
	return func(p *Picker) {
		p.tracker = t
	}
}

// WithMultipleSelection allows more than one photo to be selected.
func WithMultipleSelection(allow bool) Option {
	return func(p *Picker) {
		p.multiple = allow
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Picker) {
		p.log = l
	}
}

// New creates a Picker showing the editorial feed. Nothing is fetched
// until FetchNext or Refresh is called.
func New(factory SourceFactory, notifier notify.SelectionNotifier, opts ...Option) (*Picker, error) {
	p := &Picker{
		factory:  factory,
		notifier: notifier,
		log:      logger.Discard(),
		kind:     KindEditorial,
		done:     closedChan(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.notifier == nil {
		p.notifier = notify.NewNoOpNotifier(p.log)
	}

	editorial, err := factory.NewDataSource(EditorialRequest())
	if err != nil {
		return nil, fmt.Errorf("creating editorial data source: %w", err)
	}
	editorial.SetDelegate(p)
	p.editorial = editorial
	p.active = editorial

	return p, nil
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// DataSource returns the active data source.
func (p *Picker) DataSource() *paging.DataSource {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// SetSearchText switches to a search for text. Surrounding whitespace is
// ignored; an empty term switches back to the editorial feed. Setting the
// current term again does nothing.
func (p *Picker) SetSearchText(text string) error {
	term := strings.TrimSpace(text)

	p.mu.Lock()
	if term == p.query && p.kind != KindCollection {
		p.mu.Unlock()
		return nil
	}

	next := p.editorial
	kind := KindEditorial
	if term != "" {
		ds, err := p.factory.NewDataSource(SearchRequest(term))
		if err != nil {
			p.mu.Unlock()
			return fmt.Errorf("creating search data source: %w", err)
		}
		next, kind = ds, KindSearch
	}

	p.switchLocked(next, kind)
	p.query = term
	p.collectionID = ""
	p.mu.Unlock()

	p.log.Info("search changed", "query", term, "source", kind.String())
	if p.observer != nil {
		if term != "" {
			p.observer.DidSearch(term)
		}
		p.observer.DataSourceChanged(next)
	}
	return nil
}

// SetCollection switches to the photos of collection id.
func (p *Picker) SetCollection(id string) error {
	id = strings.TrimSpace(id)

	p.mu.Lock()
	if p.kind == KindCollection && id == p.collectionID {
		p.mu.Unlock()
		return nil
	}

	next, err := p.factory.NewDataSource(CollectionRequest(id))
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("creating collection data source: %w", err)
	}

	p.switchLocked(next, KindCollection)
	p.query = ""
	p.collectionID = id
	p.mu.Unlock()

	p.log.Info("collection changed", "collection_id", id)
	if p.observer != nil {
		p.observer.DataSourceChanged(next)
	}
	return nil
}

// switchLocked abandons the active source's fetch and makes next active,
// starting it over from page one.
func (p *Picker) switchLocked(next *paging.DataSource, kind Kind) {
	p.active.CancelFetch()

	next.Reset()
	next.SetDelegate(p)

	p.active = next
	p.kind = kind
	p.lastErr = nil
	p.selected = nil
	p.signalLocked()
}

// Refresh reloads the first page, but only when the active source shows
// nothing and is not already fetching. It reports whether a fetch started.
func (p *Picker) Refresh(ctx context.Context) bool {
	p.mu.Lock()
	ds := p.active
	if ds.Len() > 0 || ds.IsFetching() {
		p.mu.Unlock()
		return false
	}
	ds.Reset()
	p.lastErr = nil
	p.mu.Unlock()

	return p.FetchNext(ctx)
}

// FetchNext requests the next page of the active source. ctx must outlive
// the fetch. It reports whether a fetch started.
func (p *Picker) FetchNext(ctx context.Context) bool {
	p.mu.Lock()
	ds := p.active
	if ds.IsFetching() || ds.IsExhausted() {
		p.mu.Unlock()
		return false
	}
	p.signalLocked()
	p.done = make(chan struct{})
	p.mu.Unlock()

	if ds.FetchNextPage(ctx) {
		return true
	}

	p.mu.Lock()
	p.signalLocked()
	p.mu.Unlock()
	return false
}

// Wait blocks until the active source has no fetch in flight.
func (p *Picker) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Picker) signalLocked() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

// WillStartFetching implements paging.Delegate.
func (*Picker) WillStartFetching(*paging.DataSource) {}

// DidFetchItems implements paging.Delegate.
func (p *Picker) DidFetchItems(ds *paging.DataSource, items []domain.Photo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ds != p.active {
		return
	}
	p.lastErr = nil
	p.signalLocked()
	p.log.Debug("photos loaded", "added", len(items), "page", ds.CurrentPage())
}

// FetchFailed implements paging.Delegate.
func (p *Picker) FetchFailed(ds *paging.DataSource, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ds != p.active {
		return
	}
	p.lastErr = err
	p.signalLocked()
	p.log.Warn("fetch failed", "error", err, "kind", domain.ErrorKind(err))
}

// Status returns a snapshot of the picker.
func (p *Picker) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	ds := p.active
	total, known := ds.TotalPages()
	st := Status{
		Source:       p.kind,
		Query:        p.query,
		CollectionID: p.collectionID,
		State:        ds.State(),
		Photos:       ds.Items(),
		CurrentPage:  ds.CurrentPage(),
		TotalPages:   total,
		TotalKnown:   known,
		Fetching:     ds.IsFetching(),
		Exhausted:    ds.IsExhausted(),
		Selected:     slices.Clone(p.selected),
		LastError:    p.lastErr,
	}
	st.EmptyState = emptyState(len(st.Photos), st.State, p.lastErr)
	return st
}

func emptyState(n int, state paging.State, lastErr error) EmptyState {
	switch {
	case n > 0:
		return EmptyNone
	case lastErr != nil && domain.IsNoConnectivity(lastErr):
		return EmptyNoConnectivity
	case lastErr != nil:
		return EmptyServerError
	case state == paging.StateEmpty:
		return EmptyNoResults
	default:
		return EmptyNone
	}
}

// Select marks the photo at index i. Without multiple selection it
// replaces any earlier selection.
func (p *Picker) Select(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.active.Item(i); !ok {
		return fmt.Errorf("selecting photo %d: %w", i, domain.ErrNotFound)
	}
	if !p.multiple {
		p.selected = []int{i}
		return nil
	}
	if !slices.Contains(p.selected, i) {
		p.selected = append(p.selected, i)
	}
	return nil
}

// Deselect unmarks the photo at index i.
func (p *Picker) Deselect(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.selected = slices.DeleteFunc(p.selected, func(j int) bool { return j == i })
}

// ClearSelection unmarks every photo.
func (p *Picker) ClearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = nil
}

// Selected returns the selected indices in selection order.
func (p *Picker) Selected() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.selected)
}

// Commit resolves the selection to photos, reports them for download
// tracking, and hands them to the notifier. Indices that no longer resolve
// are skipped. The selection is cleared once the notifier accepts it.
func (p *Picker) Commit(ctx context.Context) ([]domain.Photo, error) {
	p.mu.Lock()
	ds := p.active
	indices := slices.Clone(p.selected)
	query := p.query
	p.mu.Unlock()

	photos := make([]domain.Photo, 0, len(indices))
	for _, i := range indices {
		if photo, ok := ds.Item(i); ok {
			photos = append(photos, photo)
		}
	}
	if len(photos) == 0 {
		return nil, ErrNothingSelected
	}

	if p.tracker != nil {
		p.tracker.Track(ctx, photos)
	}
	metrics.SelectionsCommittedTotal.Inc()

	if err := p.notifier.PhotosSelected(ctx, notify.SelectionPayload{Photos: photos, Query: query}); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return photos, fmt.Errorf("notifying selection: %w", err)
	}

	p.log.Info("selection committed", "count", len(photos), "query", query)
	p.ClearSelection()
	return photos, nil
}

// Cancel abandons any fetch, clears the selection, and tells the host the
// picker was dismissed.
func (p *Picker) Cancel(ctx context.Context) error {
	p.mu.Lock()
	p.active.CancelFetch()
	p.selected = nil
	p.signalLocked()
	p.mu.Unlock()

	if err := p.notifier.PickerCancelled(ctx); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return fmt.Errorf("notifying cancellation: %w", err)
	}
	return nil
}

// Item returns the loaded photo at index i of the active source.
func (p *Picker) Item(i int) (domain.Photo, bool) {
	return p.DataSource().Item(i)
}

// CancelFetch abandons the active source's in-flight fetch, keeping the
// photos already loaded.
func (p *Picker) CancelFetch() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active.CancelFetch()
	p.signalLocked()
}

// Close abandons any in-flight fetch.
func (p *Picker) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active.CancelFetch()
	p.signalLocked()
}
