package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// APIRequestsRate returns a timeseries panel showing Unsplash API calls per
// second, split by endpoint.
func APIRequestsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("API Calls Rate").
		Description("Unsplash API calls per second by endpoint").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`picker:unsplash_requests:rate5m`, "{{endpoint}}", "A")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// HourlyUsage returns a timeseries panel showing requests counted by the
// local limiter against the hourly allowance.
func HourlyUsage() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Hourly Usage vs Limit").
		Description(fmt.Sprintf("Requests in the current hourly window (demo limit: %d)", UnsplashHourlyLimit)).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(fmt.Sprintf(`picker_unsplash_hourly_usage{job=%q}`, Job), "local", "A")).
		WithTarget(PromQuery(
			fmt.Sprintf(`picker_unsplash_ratelimit_limit{job=%q} - picker_unsplash_ratelimit_remaining{job=%q}`, Job, Job),
			"reported", "B",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(float64(UnsplashHourlyLimit)*0.8, float64(UnsplashHourlyLimit))).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// LimitHits returns a stat panel showing how often the local hourly limit
// refused a request in the past 24 hours.
func LimitHits() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Limit Hits (24h)").
		Description("Requests refused because the hourly limit was reached").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`increase(picker_unsplash_hourly_limit_hits_total{job=%q}[24h])`, Job),
			"", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 10)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}

// DownloadsTracked returns a timeseries panel showing download-tracking
// pings sent for committed photos, split by result.
func DownloadsTracked() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Downloads Tracked / min").
		Description("Download-tracking pings sent after a selection is committed").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum by (result) (rate(picker_downloads_tracked_total{job=%q}[5m])) * 60`, Job),
			"{{result}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}
