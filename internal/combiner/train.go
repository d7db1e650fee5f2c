package combiner

import (
	"math"
	"sort"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/fitting"
	"github.com/banshee-data/cdc.tracking/internal/geometry"
)

// SuperLayerTrainBuilder chains segments outwards through the superlayers.
// Consecutive segments must sit in strictly increasing superlayers at
// increasing radius, start within MaxDeltaPhi in azimuth of where the
// previous segment ended and curl the same way.
type SuperLayerTrainBuilder struct {
	MaxDeltaPhi float64
}

func (b SuperLayerTrainBuilder) BuildTrains(segments []*cdc.Segment2D) [][]*cdc.Segment2D {
	ordered := make([]*cdc.Segment2D, 0, len(segments))
	for _, s := range segments {
		if s != nil && s.Len() > 0 {
			ordered = append(ordered, s)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].SuperLayer != ordered[j].SuperLayer {
			return ordered[i].SuperLayer < ordered[j].SuperLayer
		}
		return ordered[i].MeanCylindricalR() < ordered[j].MeanCylindricalR()
	})

	orientation := make(map[*cdc.Segment2D]geometry.ERotation, len(ordered))
	for _, s := range ordered {
		orientation[s] = segmentOrientation(s)
	}

	used := make(map[*cdc.Segment2D]bool, len(ordered))
	var trains [][]*cdc.Segment2D
	for i, seed := range ordered {
		if used[seed] {
			continue
		}
		used[seed] = true
		train := []*cdc.Segment2D{seed}
		last := seed
		for _, next := range ordered[i+1:] {
			if used[next] || !b.follows(last, next, orientation) {
				continue
			}
			used[next] = true
			train = append(train, next)
			last = next
		}
		trains = append(trains, train)
	}
	return trains
}

func (b SuperLayerTrainBuilder) follows(last, next *cdc.Segment2D, orientation map[*cdc.Segment2D]geometry.ERotation) bool {
	if next.SuperLayer <= last.SuperLayer {
		return false
	}
	if next.MeanCylindricalR() <= last.MeanCylindricalR() {
		return false
	}
	gap := geometry.NormalizeAngle(next.FrontPos().Phi() - last.BackPos().Phi())
	if math.Abs(gap) > b.MaxDeltaPhi {
		return false
	}
	a, c := orientation[last], orientation[next]
	return a == 0 || c == 0 || a == c
}

// straightCurvature is the curvature (1/cm) below which a segment has no
// meaningful turning sense.
const straightCurvature = 1e-4

// segmentOrientation is the turning sense of a circle through the segment
// hits, zero when it is straight or cannot be fitted.
func segmentOrientation(s *cdc.Segment2D) geometry.ERotation {
	if s.Len() < 3 {
		return 0
	}
	circle, err := fitting.RiemannFitter{}.FitPoints(s.Positions(), nil)
	if err != nil || math.Abs(circle.Curvature()) < straightCurvature {
		return 0
	}
	return circle.Orientation()
}
