package display

import (
	"math"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/geometry"
)

// defaultStep is the arc length between drawn trajectory samples, in cm.
const defaultStep = 1.0

// trajectoryPoints samples the start trajectory of t between its first and
// last hit arc length, in global coordinates.
func trajectoryPoints(t *cdc.Track, step float64) []geometry.Vector2D {
	if t.Len() == 0 || t.StartTrajectory.Err() != nil {
		return nil
	}
	if !(step > 0) {
		step = defaultStep
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, h := range t.Hits {
		lo = math.Min(lo, h.ArcLength2D)
		hi = math.Max(hi, h.ArcLength2D)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}

	traj := t.StartTrajectory.Trajectory2D
	n := int(math.Ceil((hi-lo)/step)) + 1
	out := make([]geometry.Vector2D, 0, n)
	for i := 0; i < n; i++ {
		s := math.Min(lo+float64(i)*step, hi)
		out = append(out, traj.Circle.AtArcLength(s).Add(traj.LocalOrigin))
	}
	return out
}

// extent is the half width of a square view centred on the origin that
// holds every wire hit and track hit, with a margin.
func extent(ev *cdc.Event) float64 {
	maxAbs := 1.0
	grow := func(p geometry.Vector2D) {
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	for _, h := range ev.WireHits {
		grow(h.WirePos)
	}
	for _, t := range ev.Tracks {
		for _, h := range t.Hits {
			grow(h.RecoPos2D)
		}
	}
	for _, s := range ev.Segments {
		for _, h := range s.Hits {
			grow(h.RecoPos2D)
		}
	}
	return math.Ceil(maxAbs * 1.05)
}
