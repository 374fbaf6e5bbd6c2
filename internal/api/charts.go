package api

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pitch.report/internal/intensity"
)

// zonesChart renders a stacked bar chart (HTML) of per-player distance by
// speed zone using go-echarts. This is a report endpoint for quick visual
// review without a frontend build.
func (s *Server) zonesChart(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	metrics, err := s.db.PlayerMetricsForRun(run.RunID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load player metrics: %v", err))
		return
	}
	if len(metrics) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "no player metrics for run")
		return
	}

	labels := make([]string, 0, len(metrics))
	for _, m := range metrics {
		label := m.Name
		if label == "" {
			label = fmt.Sprintf("#%d", m.PlayerID)
		}
		labels = append(labels, label)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Distance by Speed Zone", Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Distance by Speed Zone", Subtitle: fmt.Sprintf("run=%s source=%s", run.RunID, run.Source)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Distance (m)"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)

	zoneNames := zoneOrder(s.zoneNamesFromConfig(), metrics)
	for _, zone := range zoneNames {
		data := make([]opts.BarData, 0, len(metrics))
		for _, m := range metrics {
			data = append(data, opts.BarData{Value: m.Zones.DistanceByZone[zone]})
		}
		bar.AddSeries(zone, data, charts.WithBarChartOpts(opts.BarChart{Stack: "zones"}))
	}

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) zoneNamesFromConfig() []string {
	zones := intensity.ZonesFromConfig(s.cfg)
	names := make([]string, 0, len(zones))
	for _, z := range zones {
		names = append(names, z.Name)
	}
	return names
}

// zoneOrder returns zone names in configured order, slowest band first, so
// stacked series read bottom-up. Names only present in stored rows (a run
// analysed under a different zone table) append after, sorted.
func zoneOrder(configured []string, metrics []intensity.PlayerMetrics) []string {
	seen := make(map[string]bool, len(configured))
	names := make([]string, 0, len(configured))
	for _, name := range configured {
		seen[name] = true
		names = append(names, name)
	}

	var extra []string
	for _, m := range metrics {
		for name := range m.Zones.DistanceByZone {
			if !seen[name] {
				seen[name] = true
				extra = append(extra, name)
			}
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}
