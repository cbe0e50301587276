package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// PagesRate returns a timeseries panel showing pages applied to data
// sources and the photos they appended, per minute.
func PagesRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Pages / min").
		Description("Pages applied to data sources and photos appended per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`picker:pages_fetched:rate5m * 60`, "pages/min", "A")).
		WithTarget(PromQuery(
			fmt.Sprintf(`rate(picker_photos_appended_total{job=%q}[5m]) * 60`, Job),
			"photos/min", "B",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// FetchFailures returns a timeseries panel showing failed page fetches per
// minute, split by error kind.
func FetchFailures() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Fetch Failures / min").
		Description("Failed page fetches by error kind").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`picker:fetch_failures:rate5m * 60`, "{{kind}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenYellowRed(0.1, 1)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// StaleResponses returns a stat panel showing fetch results dropped in the
// past hour because their data source was reset or cancelled.
func StaleResponses() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Stale Responses (1h)").
		Description("Fetch results discarded after a reset or cancel").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`increase(picker_stale_responses_total{job=%q}[1h])`, Job),
			"", "A",
		)).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// FetchDuration returns a timeseries panel showing p50 and p95 page fetch
// latency.
func FetchDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Fetch Duration").
		Description("Page fetch duration percentiles").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`histogram_quantile(0.50, sum(rate(picker_fetch_duration_seconds_bucket{job=%q}[5m])) by (le))`, Job),
			"p50",
			"A",
		)).
		WithTarget(PromQuery(
			fmt.Sprintf(`histogram_quantile(0.95, sum(rate(picker_fetch_duration_seconds_bucket{job=%q}[5m])) by (le))`, Job),
			"p95",
			"B",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
