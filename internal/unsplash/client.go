// Package unsplash provides Unsplash API page fetchers for the editorial,
// search, and collection photo listings, plus the download-tracking ping the
// API guidelines require on selection.
package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/unsplash-picker/internal/cache"
	"github.com/donaldgifford/unsplash-picker/internal/metrics"
	"github.com/donaldgifford/unsplash-picker/pkg/logger"
	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

const defaultBaseURL = "https://api.unsplash.com/"

var tracer = otel.Tracer("github.com/donaldgifford/unsplash-picker/internal/unsplash")

// Endpoint labels used in metrics and logs.
const (
	EndpointEditorial  = "editorial"
	EndpointSearch     = "search"
	EndpointCollection = "collection"
)

const (
	headerTotal              = "X-Total"
	headerRateLimitLimit     = "X-Ratelimit-Limit"
	headerRateLimitRemaining = "X-Ratelimit-Remaining"
)

// Client issues authenticated requests against the Unsplash API. It is safe
// for concurrent use; the fetchers it hands out share it.
type Client struct {
	accessKey   string
	baseURL     string
	client      *http.Client
	rateLimiter *RateLimiter
	cache       cache.Cache
	log         *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the default API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithRateLimiter injects a rate limiter. When set, every network request
// goes through Wait() first; cache hits do not.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// WithCache enables response caching.
func WithCache(rc cache.Cache) Option {
	return func(c *Client) {
		c.cache = rc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new Unsplash API client authenticating with accessKey.
func NewClient(accessKey string, opts ...Option) *Client {
	c := &Client{
		accessKey: accessKey,
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	return c
}

// response is the part of an HTTP response the fetchers need. It is also
// the cached representation.
type response struct {
	Total string          `json:"total,omitempty"`
	Body  json.RawMessage `json:"body"`
}

// get performs an authenticated GET of path with params, serving from the
// cache when possible.
func (c *Client) get(
	ctx context.Context,
	endpoint, path string,
	params url.Values,
) (*response, error) {
	ctx, span := tracer.Start(ctx, "unsplash.get", trace.WithAttributes(
		attribute.String("unsplash.endpoint", endpoint),
		attribute.String("unsplash.page", params.Get("page")),
	))
	defer span.End()

	resp, err := c.doGet(ctx, span, endpoint, path, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.ErrorKind(err))
	}
	return resp, err
}

func (c *Client) doGet(
	ctx context.Context,
	span trace.Span,
	endpoint, path string,
	params url.Values,
) (*response, error) {
	key := path + "?" + params.Encode()

	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			var cached response
			if err := json.Unmarshal(data, &cached); err == nil {
				span.SetAttributes(attribute.Bool("unsplash.cache_hit", true))
				c.log.Debug("serving cached page", "endpoint", endpoint, "key", key)
				return &cached, nil
			}
		}
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrHourlyLimitReached) {
				metrics.APIHourlyLimitHits.Inc()
			}
			return nil, classifyTransportError(fmt.Errorf("rate limit: %w", err))
		}
		metrics.APIHourlyUsage.Set(float64(c.rateLimiter.Count()))
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+path+"?"+params.Encode(),
		http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Accept-Version", "v1")
	httpReq.Header.Set("Authorization", "Client-ID "+c.accessKey)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	metrics.APIRequestsTotal.WithLabelValues(endpoint).Inc()
	c.log.Debug("requesting page", "endpoint", endpoint, "path", path, "page", params.Get("page"))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("executing %s request: %w", endpoint, err))
	}
	defer resp.Body.Close()

	recordRateLimitHeaders(resp.Header)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("reading response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	out := &response{Total: resp.Header.Get(headerTotal), Body: body}

	if c.cache != nil && json.Valid(body) {
		if data, err := json.Marshal(out); err == nil {
			c.cache.Set(key, data)
		}
	}

	return out, nil
}

func recordRateLimitHeaders(h http.Header) {
	if v, err := strconv.Atoi(h.Get(headerRateLimitLimit)); err == nil {
		metrics.APIRateLimitLimit.Set(float64(v))
	}
	if v, err := strconv.Atoi(h.Get(headerRateLimitRemaining)); err == nil {
		metrics.APIRateLimitRemaining.Set(float64(v))
	}
}

func statusError(status int, body []byte) error {
	var errResp errorResponse
	_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing

	msg := strings.Join(errResp.Errors, "; ")
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	return &domain.NetworkError{
		Kind:       domain.NetworkOther,
		StatusCode: status,
		Err:        fmt.Errorf("unsplash API error: %s", msg),
	}
}

func pageParams(page, perPage int) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	return params
}

func validatePage(page, perPage int) error {
	if page < 1 {
		return fmt.Errorf("page must be >= 1 (got %d)", page)
	}
	if perPage < 1 {
		return fmt.Errorf("per_page must be > 0 (got %d)", perPage)
	}
	return nil
}

// totalPages derives the page count from an X-Total header. When the header
// is missing a short page is taken as the last one; a full page implies at
// least one more.
func totalPages(header string, page, perPage, got int) int {
	total, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || total < 0 {
		if got < perPage {
			return page
		}
		return page + 1
	}
	return (total + perPage - 1) / perPage
}
