package main

import "errors"

// KnownMetrics is the set of metric names exported by unsplash-picker
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"picker_http_request_duration_seconds": true,
	"picker_http_requests_total":           true,
	"picker_http_panics_total":             true,

	// Health metrics.
	"picker_healthz_up": true,
	"picker_readyz_up":  true,

	// Data source metrics.
	"picker_pages_fetched_total":    true,
	"picker_photos_appended_total":  true,
	"picker_fetch_failures_total":   true,
	"picker_stale_responses_total":  true,
	"picker_fetch_duration_seconds": true,

	// Unsplash API metrics.
	"picker_unsplash_requests_total":          true,
	"picker_unsplash_ratelimit_remaining":     true,
	"picker_unsplash_ratelimit_limit":         true,
	"picker_unsplash_hourly_usage":            true,
	"picker_unsplash_hourly_limit_hits_total": true,
	"picker_downloads_tracked_total":          true,

	// Cache metrics.
	"picker_cache_hits_total":      true,
	"picker_cache_misses_total":    true,
	"picker_cache_evictions_total": true,

	// Selection metrics.
	"picker_selections_committed_total":  true,
	"picker_notification_failures_total": true,

	// Recording rules.
	"picker:http_requests:rate5m":     true,
	"picker:http_errors:rate5m":       true,
	"picker:unsplash_requests:rate5m": true,
	"picker:pages_fetched:rate5m":     true,
	"picker:fetch_failures:rate5m":    true,
	"picker:cache_hits:rate5m":        true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
