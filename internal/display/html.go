package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/fsutil"
	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// AssetsHost serves the echarts javascript referenced by rendered pages.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

func scatterData(points []geometry.Vector2D) []opts.ScatterData {
	data := make([]opts.ScatterData, len(points))
	for i, p := range points {
		data[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y}}
	}
	return data
}

// eventChart renders one event as a scatter chart. Trajectories are drawn
// as densely sampled small symbols.
func eventChart(ev *cdc.Event) *charts.Scatter {
	pad := extent(ev)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "CDC Event Display", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Event %d", ev.Number), Subtitle: fmt.Sprintf("wire hits=%d tracks=%d unused segments=%d", len(ev.WireHits), len(ev.Tracks), len(ev.Segments))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (cm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (cm)", NameLocation: "middle", NameGap: 30}),
	)

	wires := make([]geometry.Vector2D, len(ev.WireHits))
	for i, h := range ev.WireHits {
		wires[i] = h.WirePos
	}
	scatter.AddSeries("wire hits", scatterData(wires),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(wireColor)}),
	)

	var unused []geometry.Vector2D
	for _, s := range ev.Segments {
		unused = append(unused, s.Positions()...)
	}
	scatter.AddSeries("unused segments", scatterData(unused),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#f0f0f0"}),
	)

	colors := generateColors(len(ev.Tracks))
	for i, t := range ev.Tracks {
		c := hexColor(colors[i])
		name := fmt.Sprintf("track %d", i)
		scatter.AddSeries(name, scatterData(t.Positions()),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 7}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: c}),
		)
		scatter.AddSeries(name+" trajectory", scatterData(trajectoryPoints(t, defaultStep)),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 1}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: c}),
		)
	}
	return scatter
}

// RenderHTML writes a page with one chart per event.
func RenderHTML(w io.Writer, events []*cdc.Event) error {
	page := components.NewPage()
	page.SetAssetsHost(AssetsHost)
	page.PageTitle = "CDC Event Display"
	for _, ev := range events {
		page.AddCharts(eventChart(ev))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

// SaveHTML renders events into dir/name, creating dir when needed, and
// returns the written path.
func SaveHTML(fsys fsutil.FileSystem, dir, name string, events []*cdc.Event) (string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := fsys.Create(path)
	if err != nil {
		return "", fmt.Errorf("save event page: %w", err)
	}
	if err := RenderHTML(f, events); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
