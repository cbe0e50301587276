// Package picker builds photo data sources for a request and drives them
// the way the picker UI does: one editorial feed kept for the session,
// search and collection feeds created on demand, and a selection that is
// committed back to the host.
package picker

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/donaldgifford/unsplash-picker/internal/paging"
	"github.com/donaldgifford/unsplash-picker/internal/unsplash"
	"github.com/donaldgifford/unsplash-picker/pkg/logger"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// Request validation errors.
var (
	ErrEmptyQuery        = errors.New("search query is empty")
	ErrEmptyCollectionID = errors.New("collection id is empty")
)

// Kind selects which listing a data source pages through.
type Kind int

// Request kinds.
const (
	KindEditorial Kind = iota
	KindSearch
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindEditorial:
		return "editorial"
	case KindSearch:
		return "search"
	case KindCollection:
		return "collection"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Request describes the listing a data source should serve.
type Request struct {
	Kind         Kind
	Query        string
	CollectionID string
}

// EditorialRequest asks for the editorial feed.
func EditorialRequest() Request {
	return Request{Kind: KindEditorial}
}

// SearchRequest asks for photos matching query.
func SearchRequest(query string) Request {
	return Request{Kind: KindSearch, Query: query}
}

// CollectionRequest asks for the photos of a collection.
func CollectionRequest(id string) Request {
	return Request{Kind: KindCollection, CollectionID: id}
}

// SourceFactory creates data sources. Factory is the production
// implementation.
type SourceFactory interface {
	NewDataSource(req Request) (*paging.DataSource, error)
}

// FactoryConfig holds the settings every data source shares.
type FactoryConfig struct {
	EditorialCollectionID string
	PerPage               int
	ContentFilter         domain.ContentFilter
}

// Factory builds data sources backed by the Unsplash API. It holds no
// per-source state; every call returns a fresh instance.
type Factory struct {
	client     *unsplash.Client
	cfg        FactoryConfig
	log        *slog.Logger
	dispatcher paging.Dispatcher
}

// FactoryOption configures the Factory.
type FactoryOption func(*Factory)

// WithFactoryLogger sets the logger handed to each data source.
func WithFactoryLogger(l *slog.Logger) FactoryOption {
	return func(f *Factory) {
		f.log = l
	}
}

// WithDispatcher sets the event dispatcher handed to each data source.
func WithDispatcher(d paging.Dispatcher) FactoryOption {
	return func(f *Factory) {
		f.dispatcher = d
	}
}

// NewFactory creates a Factory issuing requests through client.
func NewFactory(client *unsplash.Client, cfg FactoryConfig, opts ...FactoryOption) *Factory {
	if cfg.PerPage <= 0 {
		cfg.PerPage = paging.DefaultPerPage
	}
	if cfg.ContentFilter == "" {
		cfg.ContentFilter = domain.ContentFilterLow
	}

	f := &Factory{
		client:     client,
		cfg:        cfg,
		log:        logger.Discard(),
		dispatcher: paging.Inline,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewDataSource returns an idle data source for req.
func (f *Factory) NewDataSource(req Request) (*paging.DataSource, error) {
	var (
		fetcher paging.PageFetcher
		attrs   []any
	)

	switch req.Kind {
	case KindEditorial:
		fetcher = f.client.Editorial(f.cfg.EditorialCollectionID)
		attrs = []any{"collection_id", f.cfg.EditorialCollectionID}
	case KindSearch:
		query := strings.TrimSpace(req.Query)
		if query == "" {
			return nil, ErrEmptyQuery
		}
		fetcher = f.client.Search(query, f.cfg.ContentFilter)
		attrs = []any{"query", query, "content_filter", string(f.cfg.ContentFilter)}
	case KindCollection:
		id := strings.TrimSpace(req.CollectionID)
		if id == "" {
			return nil, ErrEmptyCollectionID
		}
		fetcher = f.client.Collection(id)
		attrs = []any{"collection_id", id}
	default:
		return nil, fmt.Errorf("unknown request kind %s", req.Kind)
	}

	log := f.log.With(append([]any{"source", req.Kind.String()}, attrs...)...)
	return paging.New(fetcher,
		paging.WithPerPage(f.cfg.PerPage),
		paging.WithLogger(log),
		paging.WithDispatcher(f.dispatcher),
	), nil
}
