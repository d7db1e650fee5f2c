package cdc

import "github.com/banshee-data/cdc.tracking/internal/geometry"

// RecoHit2D is a wire hit with a reconstructed position in the plane.
type RecoHit2D struct {
	RLWireHit
	RecoPos2D geometry.Vector2D
}

// Segment2D is an ordered run of hits within one superlayer produced by the
// segment finder.
type Segment2D struct {
	ID         int
	SuperLayer int
	Hits       []RecoHit2D

	// Taken claims the segment for a track. Once set during a combination
	// pass no later phase reconsiders the segment.
	Taken bool
}

// Len is the number of hits.
func (s *Segment2D) Len() int { return len(s.Hits) }

// Positions returns the reconstructed positions in hit order.
func (s *Segment2D) Positions() []geometry.Vector2D {
	out := make([]geometry.Vector2D, len(s.Hits))
	for i, h := range s.Hits {
		out[i] = h.RecoPos2D
	}
	return out
}

// FrontPos and BackPos are the first and last reconstructed positions.
func (s *Segment2D) FrontPos() geometry.Vector2D { return s.Hits[0].RecoPos2D }
func (s *Segment2D) BackPos() geometry.Vector2D  { return s.Hits[len(s.Hits)-1].RecoPos2D }

// MeanCylindricalR is the average distance of the hits from the origin.
func (s *Segment2D) MeanCylindricalR() float64 {
	if len(s.Hits) == 0 {
		return 0
	}
	var sum float64
	for _, h := range s.Hits {
		sum += h.RecoPos2D.Norm()
	}
	return sum / float64(len(s.Hits))
}

// WireHitIDs returns the set of wire hit IDs in the segment.
func (s *Segment2D) WireHitIDs() map[int]struct{} {
	ids := make(map[int]struct{}, len(s.Hits))
	for _, h := range s.Hits {
		ids[h.Hit.ID] = struct{}{}
	}
	return ids
}
