package rules

// RecordingRules returns the pre-computed rates the dashboard and alerts
// read instead of raw counters.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("picker-recording-rules", RuleGroup{
		Name: "picker-recording",
		Rules: []Rule{
			record("picker:http_requests:rate5m", `sum(rate(picker_http_requests_total[5m]))`),
			record("picker:http_errors:rate5m", `sum(rate(picker_http_requests_total{status=~"5.."}[5m]))`),
			record("picker:unsplash_requests:rate5m", `sum by (endpoint) (rate(picker_unsplash_requests_total[5m]))`),
			record("picker:pages_fetched:rate5m", `sum(rate(picker_pages_fetched_total[5m]))`),
			record("picker:fetch_failures:rate5m", `sum by (kind) (rate(picker_fetch_failures_total[5m]))`),
			record("picker:cache_hits:rate5m", `sum by (tier) (rate(picker_cache_hits_total[5m]))`),
		},
	})
}
