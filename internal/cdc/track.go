package cdc

import (
	"sort"

	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"github.com/google/uuid"
)

// RecoHit3D is a wire hit placed on a track, with its arc length along the
// track's 2D trajectory.
type RecoHit3D struct {
	RLWireHit
	RecoPos2D   geometry.Vector2D
	Z           float64
	ArcLength2D float64
}

// Track is a found track candidate.
type Track struct {
	ID              string
	Hits            []RecoHit3D
	StartTrajectory Trajectory3D

	// SegmentIDs lists segments merged into the track during combination.
	SegmentIDs []int
}

// NewTrack creates a track with a fresh ID.
func NewTrack(hits []RecoHit3D, trajectory Trajectory3D) *Track {
	return &Track{
		ID:              uuid.NewString(),
		Hits:            hits,
		StartTrajectory: trajectory,
	}
}

// Len is the number of hits.
func (t *Track) Len() int { return len(t.Hits) }

// Positions returns the reconstructed 2D positions in hit order.
func (t *Track) Positions() []geometry.Vector2D {
	out := make([]geometry.Vector2D, len(t.Hits))
	for i, h := range t.Hits {
		out[i] = h.RecoPos2D
	}
	return out
}

// HasWireHit reports whether the wire hit is already on the track.
func (t *Track) HasWireHit(id int) bool {
	for _, h := range t.Hits {
		if h.Hit.ID == id {
			return true
		}
	}
	return false
}

// SuperLayers returns the set of superlayers the track crosses.
func (t *Track) SuperLayers() map[int]struct{} {
	out := make(map[int]struct{})
	for _, h := range t.Hits {
		out[h.Hit.SuperLayer] = struct{}{}
	}
	return out
}

// SortByArcLength2D orders hits by ascending arc length; ties keep their
// previous order.
func (t *Track) SortByArcLength2D() {
	sort.SliceStable(t.Hits, func(i, j int) bool {
		return t.Hits[i].ArcLength2D < t.Hits[j].ArcLength2D
	})
}

// Event is everything the combination needs from one event.
type Event struct {
	Number   int
	WireHits []*WireHit
	Segments []*Segment2D
	Tracks   []*Track
}
