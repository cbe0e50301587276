package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// latencyQuantiles are the request duration quantiles plotted, each with
// its own query refId.
var latencyQuantiles = []struct {
	q     float64
	refID string
}{
	{0.50, "A"},
	{0.95, "B"},
	{0.99, "C"},
}

func httpSeries(title, description, unit string) *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		Unit(unit).
		FillOpacity(10).
		LineWidth(2).
		DrawStyle(common.GraphDrawStyleLine)
}

// RequestRate plots total API throughput and the split per picker route.
func RequestRate() *timeseries.PanelBuilder {
	return httpSeries("Request Rate", "Picker API requests per second, overall and by route", "reqps").
		WithTarget(PromQuery(`picker:http_requests:rate5m`, "total", "A")).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum by (path) (rate(picker_http_requests_total{job=%q}[5m]))`, Job),
			"{{path}}", "B",
		)).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic())
}

// LatencyPercentiles plots request duration quantiles across all routes.
func LatencyPercentiles() *timeseries.PanelBuilder {
	b := httpSeries("Latency Percentiles", "Picker API request duration quantiles", "s")
	for _, lq := range latencyQuantiles {
		b = b.WithTarget(PromQuery(
			fmt.Sprintf(
				`histogram_quantile(%.2f, sum(rate(picker_http_request_duration_seconds_bucket{job=%q}[5m])) by (le))`,
				lq.q, Job,
			),
			fmt.Sprintf("p%d", int(lq.q*100)),
			lq.refID,
		))
	}
	return b.
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic())
}

// ErrorRate plots 5xx responses as a share of all requests. Recovered
// handler panics are included, since they answer 500.
func ErrorRate() *timeseries.PanelBuilder {
	return httpSeries("Error Rate %", "Share of picker API responses with a 5xx status", "percent").
		WithTarget(PromQuery(
			`picker:http_errors:rate5m / picker:http_requests:rate5m * 100`,
			"error %", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds())
}

// HandlerPanics plots recovered handler panics per route.
func HandlerPanics() *timeseries.PanelBuilder {
	return httpSeries("Handler Panics", "Panics recovered by the API middleware, by route", "short").
		WithTarget(PromQuery(
			`sum by (method, path) (increase(picker_http_panics_total[5m]))`,
			"{{method}} {{path}}", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleBars)
}
