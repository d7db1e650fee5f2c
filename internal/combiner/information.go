package combiner

import (
	"math"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
)

// Weight scores a candidate; larger is better. NaN marks a rejection.
type Weight = float64

// Reject is the weight filters return for candidates they refuse.
func Reject() Weight { return math.NaN() }

// IsRejected reports whether w is the rejection sentinel.
func IsRejected(w Weight) bool { return math.IsNaN(w) }

// Match is one accepted segment-track candidate edge.
type Match struct {
	Segment *SegmentInformation
	Track   *TrackInformation
	Weight  Weight
}

// SegmentInformation wraps a segment for one combination pass.
type SegmentInformation struct {
	Segment *cdc.Segment2D
	Matches []*Match

	// Background is set by the background filter; NewTrackCandidate by the
	// new segment filter.
	Background        bool
	NewTrackCandidate bool
}

// BestMatch returns the highest weight candidate, the first on ties.
func (s *SegmentInformation) BestMatch() *Match {
	var best *Match
	for _, m := range s.Matches {
		if best == nil || m.Weight > best.Weight {
			best = m
		}
	}
	return best
}

// TrackInformation wraps a track for one combination pass.
type TrackInformation struct {
	Track   *cdc.Track
	Matches []*Match

	// Segments lists the segments merged into the track during this pass.
	// They are released again if the track is filtered out.
	Segments []*cdc.Segment2D

	IsNew   bool
	Removed bool
}

func (t *TrackInformation) release() {
	for _, s := range t.Segments {
		s.Taken = false
	}
}
