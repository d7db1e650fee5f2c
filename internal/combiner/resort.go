package combiner

import (
	"fmt"
	"math"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/fitting"
)

// ResortTrack recomputes the arc length of every hit along the track's 2D
// trajectory and sorts the hits by it. With refit set the circle is first
// refitted to the hits, keeping the previous direction of travel. Hits are
// re-reconstructed at the trajectory point closest to their wire and take
// z from the sz line.
//
// Arc lengths of hits behind the trajectory start are shifted by one
// revolution so that curlers order monotonically from zero. Only exact
// lines, whose period is infinite, keep negative arc lengths.
func ResortTrack(track *cdc.Track, refit bool) error {
	if track.Len() == 0 {
		return nil
	}
	traj := track.StartTrajectory
	if refit && track.Len() >= 3 {
		if refitted, err := refitTrajectory(track); err != nil {
			Diagf("track %s: keeping start trajectory: %v", track.ID, err)
		} else {
			traj.Trajectory2D = refitted
		}
	}
	if err := traj.Err(); err != nil {
		return fmt.Errorf("track %s trajectory: %w", track.ID, err)
	}

	period := traj.Circle.ArcLengthPeriod()
	for i := range track.Hits {
		h := &track.Hits[i]
		pos := traj.Closest(h.Pos())
		s := wrapArcLength(traj.ArcLength2D(pos), period)
		h.RecoPos2D = pos
		h.ArcLength2D = s
		h.Z = traj.ZAt(s)
	}
	track.StartTrajectory = traj
	track.SortByArcLength2D()
	return nil
}

// refitTrajectory fits a circle through the track hits. The local origin is
// the point on the new circle closest to the first hit.
func refitTrajectory(track *cdc.Track) (cdc.Trajectory2D, error) {
	circle, err := fitting.RiemannFitter{}.FitPoints(track.Positions(), hitWeights(track))
	if err != nil {
		return cdc.Trajectory2D{}, err
	}
	first := track.Hits[0].RecoPos2D
	old := track.StartTrajectory
	if old.Err() == nil && old.Tangential(first).Dot(circle.Tangential(first)) < 0 {
		circle.Reverse()
	}
	return cdc.NewTrajectory2D(circle, circle.Closest(first)), nil
}

// hitWeights returns the drift length weights, or nil for uniform weights
// when any of them is unusable.
func hitWeights(track *cdc.Track) []float64 {
	weights := make([]float64, track.Len())
	for i, h := range track.Hits {
		w := h.Weight()
		if math.IsInf(w, 0) || math.IsNaN(w) || w <= 0 {
			return nil
		}
		weights[i] = w
	}
	return weights
}

// wrapTolerance (cm) bounds the negative arc lengths that are rounding
// noise of a hit at the start.
const wrapTolerance = 1e-9

// wrapArcLength maps negative arc lengths into [0, period). Straight
// trajectories have no period and keep their sign.
func wrapArcLength(s, period float64) float64 {
	if s >= 0 || math.IsInf(period, 0) || math.IsNaN(period) {
		return s
	}
	if s > -wrapTolerance {
		return 0
	}
	return s + period
}
