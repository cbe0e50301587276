package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CacheHitRatio returns a stat panel showing the response cache hit ratio
// across all tiers.
func CacheHitRatio() *stat.PanelBuilder {
	expr := fmt.Sprintf(
		`sum(rate(picker_cache_hits_total{job=%q}[5m])) / (sum(rate(picker_cache_hits_total{job=%q}[5m])) + sum(rate(picker_cache_misses_total{job=%q}[5m]))) * 100`,
		Job, Job, Job,
	)
	return stat.NewPanelBuilder().
		Title("Cache Hit Ratio").
		Description("Share of page requests served from the response cache").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(expr, "", "A")).
		Unit("percent").
		Thresholds(ThresholdsRedGreen(50)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}

// CacheHitsByTier returns a timeseries panel showing cache hits per second
// for the memory and disk tiers.
func CacheHitsByTier() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cache Hits by Tier").
		Description("Response cache hits per second by tier").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`picker:cache_hits:rate5m`, "{{tier}}", "A")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CacheEvictions returns a timeseries panel showing disk cache entries
// removed per hour, split by reason.
func CacheEvictions() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cache Evictions / h").
		Description("Disk cache entries removed on expiry or when over capacity").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum by (reason) (increase(picker_cache_evictions_total{job=%q}[1h]))`, Job),
			"{{reason}}", "A",
		)).
		FillOpacity(30).
		LineWidth(1).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}
