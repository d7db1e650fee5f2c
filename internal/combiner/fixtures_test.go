package combiner

import (
	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/geometry"
)

const testDriftVariance = 0.01

// fixture hands out wire hits with unique IDs.
type fixture struct {
	nextHitID int
}

func (f *fixture) wireHit(pos geometry.Vector2D, superLayer int) *cdc.WireHit {
	f.nextHitID++
	return &cdc.WireHit{
		ID:                  f.nextHitID,
		WirePos:             pos,
		DriftLengthVariance: testDriftVariance,
		SuperLayer:          superLayer,
	}
}

// segmentOn places hits on circle at the given arc lengths.
func (f *fixture) segmentOn(id, superLayer int, circle geometry.PerigeeCircle, arcLengths ...float64) *cdc.Segment2D {
	points := make([]geometry.Vector2D, len(arcLengths))
	for i, s := range arcLengths {
		points[i] = circle.AtArcLength(s)
	}
	return f.segmentAt(id, superLayer, points...)
}

func (f *fixture) segmentAt(id, superLayer int, points ...geometry.Vector2D) *cdc.Segment2D {
	seg := &cdc.Segment2D{ID: id, SuperLayer: superLayer}
	for _, p := range points {
		seg.Hits = append(seg.Hits, cdc.RecoHit2D{
			RLWireHit: cdc.NewRLWireHit(f.wireHit(p, superLayer), geometry.Right),
			RecoPos2D: p,
		})
	}
	return seg
}

// trackOn builds a track on circle whose start trajectory is the circle
// itself, anchored at the first hit.
func (f *fixture) trackOn(circle geometry.PerigeeCircle, superLayers map[int][]float64) *cdc.Track {
	var hits []cdc.RecoHit3D
	for sl := 0; sl < 16; sl++ {
		for _, s := range superLayers[sl] {
			p := circle.AtArcLength(s)
			hits = append(hits, cdc.RecoHit3D{
				RLWireHit: cdc.NewRLWireHit(f.wireHit(p, sl), geometry.Right),
				RecoPos2D: p,
			})
		}
	}
	traj := cdc.Trajectory3D{
		Trajectory2D: cdc.NewTrajectory2D(geometry.NewUncertainPerigeeCircle(circle, nil, 0, 0), hits[0].RecoPos2D),
	}
	track := cdc.NewTrack(hits, traj)
	for i := range track.Hits {
		track.Hits[i].ArcLength2D = traj.ArcLength2D(track.Hits[i].RecoPos2D)
	}
	return track
}

func arcRange(from float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + 2*float64(i)
	}
	return out
}
