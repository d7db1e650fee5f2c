package display

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/fsutil"
	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	wireColor    = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	segmentColor = color.RGBA{R: 40, G: 40, B: 40, A: 255}
)

// Size of the rendered PNG.
const (
	pngWidth  = 8 * vg.Inch
	pngHeight = 8 * vg.Inch
)

func toXYs(points []geometry.Vector2D) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

// newEventPlot builds the plot of one event.
func newEventPlot(ev *cdc.Event) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Event %d - %d tracks, %d unused segments", ev.Number, len(ev.Tracks), len(ev.Segments))
	p.X.Label.Text = "X (cm)"
	p.Y.Label.Text = "Y (cm)"

	pad := extent(ev)
	p.X.Min, p.X.Max = -pad, pad
	p.Y.Min, p.Y.Max = -pad, pad

	if len(ev.WireHits) > 0 {
		wires := make([]geometry.Vector2D, len(ev.WireHits))
		for i, h := range ev.WireHits {
			wires[i] = h.WirePos
		}
		sc, err := plotter.NewScatter(toXYs(wires))
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = wireColor
		sc.GlyphStyle.Radius = vg.Points(1)
		p.Add(sc)
		p.Legend.Add("wire hits", sc)
	}

	var unused []geometry.Vector2D
	for _, s := range ev.Segments {
		unused = append(unused, s.Positions()...)
	}
	if len(unused) > 0 {
		sc, err := plotter.NewScatter(toXYs(unused))
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = segmentColor
		sc.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(sc)
		p.Legend.Add("unused segments", sc)
	}

	colors := generateColors(len(ev.Tracks))
	for i, t := range ev.Tracks {
		if t.Len() == 0 {
			continue
		}
		sc, err := plotter.NewScatter(toXYs(t.Positions()))
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = colors[i]
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("track %d (%d hits)", i, t.Len()), sc)

		// Lines need at least two points.
		if pts := trajectoryPoints(t, defaultStep); len(pts) > 1 {
			line, err := plotter.NewLine(toXYs(pts))
			if err != nil {
				return nil, err
			}
			line.Color = colors[i]
			line.Width = vg.Points(1)
			p.Add(line)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// RenderPNG writes a PNG display of ev to w.
func RenderPNG(w io.Writer, ev *cdc.Event) error {
	p, err := newEventPlot(ev)
	if err != nil {
		return fmt.Errorf("event %d: %w", ev.Number, err)
	}
	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("event %d: %w", ev.Number, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("event %d: write png: %w", ev.Number, err)
	}
	return nil
}

// PNGFileName is the file SavePNG writes for an event number.
func PNGFileName(eventNumber int) string {
	return fmt.Sprintf("event_%05d.png", eventNumber)
}

// SavePNG renders ev into dir, creating it when needed, and returns the
// written path.
func SavePNG(fsys fsutil.FileSystem, dir string, ev *cdc.Event) (string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, PNGFileName(ev.Number))
	f, err := fsys.Create(path)
	if err != nil {
		return "", fmt.Errorf("save event plot: %w", err)
	}
	if err := RenderPNG(f, ev); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
