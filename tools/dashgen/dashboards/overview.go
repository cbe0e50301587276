// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/unsplash-picker/tools/dashgen/panels"
)

// BuildOverview constructs the Picker Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Picker Overview").
		Uid("picker-overview").
		Tags([]string{"picker", "unsplash-picker"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()).
		WithPanel(panels.HandlerPanics()))

	// Row 3: Unsplash API.
	b.WithRow(dashboard.NewRowBuilder("Unsplash API").
		WithPanel(panels.APIRequestsRate()).
		WithPanel(panels.HourlyUsage()).
		WithPanel(panels.LimitHits()).
		WithPanel(panels.DownloadsTracked()))

	// Row 4: Data sources.
	b.WithRow(dashboard.NewRowBuilder("Data Sources").
		WithPanel(panels.PagesRate()).
		WithPanel(panels.FetchFailures()).
		WithPanel(panels.StaleResponses()).
		WithPanel(panels.FetchDuration()))

	// Row 5: Cache.
	b.WithRow(dashboard.NewRowBuilder("Response Cache").
		WithPanel(panels.CacheHitRatio()).
		WithPanel(panels.CacheHitsByTier()).
		WithPanel(panels.CacheEvictions()))

	// Row 6: Selections.
	b.WithRow(dashboard.NewRowBuilder("Selections").
		WithPanel(panels.SelectionsRate()).
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
