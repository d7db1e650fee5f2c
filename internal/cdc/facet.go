package cdc

import "github.com/banshee-data/cdc.tracking/internal/geometry"

// Facet is three consecutive hits hypothesised to lie on one local arc.
// Index addresses the facet in per-event tables such as fitted line caches.
type Facet struct {
	Index  int
	Start  RLWireHit
	Middle RLWireHit
	End    RLWireHit
}

// Hits returns start, middle and end in order.
func (f Facet) Hits() [3]RLWireHit {
	return [3]RLWireHit{f.Start, f.Middle, f.End}
}

// SupportPos is the middle wire position, the natural local origin.
func (f Facet) SupportPos() geometry.Vector2D { return f.Middle.Pos() }

// FacetsOf builds the facets of consecutive hit triples of a segment.
// Facet indices start at firstIndex.
func FacetsOf(segment *Segment2D, firstIndex int) []Facet {
	if segment == nil || len(segment.Hits) < 3 {
		return nil
	}
	facets := make([]Facet, 0, len(segment.Hits)-2)
	for i := 0; i+2 < len(segment.Hits); i++ {
		facets = append(facets, Facet{
			Index:  firstIndex + i,
			Start:  segment.Hits[i].RLWireHit,
			Middle: segment.Hits[i+1].RLWireHit,
			End:    segment.Hits[i+2].RLWireHit,
		})
	}
	return facets
}
