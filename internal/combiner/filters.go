package combiner

import (
	"fmt"
	"math"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/fitting"
	"github.com/banshee-data/cdc.tracking/internal/geometry"
)

// SegmentTrackMatcher scores a segment as a continuation of a track. It
// runs for every pair, so it should reject cheap mismatches early.
type SegmentTrackMatcher interface {
	MatchWeight(segment *cdc.Segment2D, track *cdc.Track) Weight
}

// SegmentQualityFilter scores the intrinsic quality of a segment.
type SegmentQualityFilter interface {
	SegmentWeight(segment *cdc.Segment2D) Weight
}

// TrainBuilder groups segments into ordered trains, each hypothesised to
// be one particle. A segment may appear in at most one train.
type TrainBuilder interface {
	BuildTrains(segments []*cdc.Segment2D) [][]*cdc.Segment2D
}

// TrainFilter scores a train as a track on its own.
type TrainFilter interface {
	TrainWeight(train []*cdc.Segment2D) Weight
}

// TrainTrackFilter scores a train as an extension of an existing track.
type TrainTrackFilter interface {
	TrainTrackWeight(train []*cdc.Segment2D, track *cdc.Track) Weight
}

// TrackQualityFilter scores a finished track; rejected tracks are removed.
type TrackQualityFilter interface {
	TrackWeight(track *cdc.Track) Weight
}

// Function adapters, handy for tests and one-off cuts.
type (
	MatcherFunc          func(*cdc.Segment2D, *cdc.Track) Weight
	SegmentFilterFunc    func(*cdc.Segment2D) Weight
	TrainBuilderFunc     func([]*cdc.Segment2D) [][]*cdc.Segment2D
	TrainFilterFunc      func([]*cdc.Segment2D) Weight
	TrainTrackFilterFunc func([]*cdc.Segment2D, *cdc.Track) Weight
	TrackFilterFunc      func(*cdc.Track) Weight
)

func (f MatcherFunc) MatchWeight(s *cdc.Segment2D, t *cdc.Track) Weight { return f(s, t) }
func (f SegmentFilterFunc) SegmentWeight(s *cdc.Segment2D) Weight       { return f(s) }
func (f TrainBuilderFunc) BuildTrains(s []*cdc.Segment2D) [][]*cdc.Segment2D {
	return f(s)
}
func (f TrainFilterFunc) TrainWeight(s []*cdc.Segment2D) Weight { return f(s) }
func (f TrainTrackFilterFunc) TrainTrackWeight(s []*cdc.Segment2D, t *cdc.Track) Weight {
	return f(s, t)
}
func (f TrackFilterFunc) TrackWeight(t *cdc.Track) Weight { return f(t) }

// Filters bundles one implementation of every capability used by Run.
type Filters struct {
	Matcher      SegmentTrackMatcher
	Background   SegmentQualityFilter
	NewSegment   SegmentQualityFilter
	TrainBuilder TrainBuilder
	Train        TrainFilter
	TrainTrack   TrainTrackFilter
	Track        TrackQualityFilter
}

// Validate reports the first nil capability.
func (f Filters) Validate() error {
	checks := []struct {
		name    string
		missing bool
	}{
		{"matcher", f.Matcher == nil},
		{"background", f.Background == nil},
		{"new segment", f.NewSegment == nil},
		{"train builder", f.TrainBuilder == nil},
		{"train", f.Train == nil},
		{"train track", f.TrainTrack == nil},
		{"track", f.Track == nil},
	}
	for _, c := range checks {
		if c.missing {
			return fmt.Errorf("%s filter: %w", c.name, ErrMissingFilter)
		}
	}
	return nil
}

// DefaultFilters wires the config-driven default implementations.
func DefaultFilters(cfg Config) Filters {
	return Filters{
		Matcher: DistanceMatcher{MaxDistance: cfg.MatchMaxDistance, MinHits: cfg.MatchMinHits},
		Background: &FacetChi2Filter{
			MinHits:      cfg.BackgroundMinHits,
			MaxFacetChi2: cfg.BackgroundMaxFacetChi2,
			MaxFacetKink: cfg.BackgroundMaxFacetKink,
			NSteps:       cfg.FacetFitSteps,
			Fitter:       fitting.NewFacetFitter(cfg.Fitter),
		},
		NewSegment:   CurvatureFilter{MinHits: cfg.NewSegmentMinHits, MaxAbsCurvature: cfg.NewSegmentMaxAbsCurvature},
		TrainBuilder: SuperLayerTrainBuilder{MaxDeltaPhi: cfg.TrainMaxDeltaPhi},
		Train:        TrainHitsFilter{MinHits: cfg.TrainMinHits},
		TrainTrack:   TrainTrackDistanceFilter{MaxDistance: cfg.TrainTrackMaxDistance},
		Track:        TrackHitsFilter{MinHits: cfg.TrackMinHits, MaxChi2PerNDF: cfg.TrackMaxChi2PerNDF},
	}
}

// meanAbsDistance is the mean unsigned distance of the reconstructed hit
// positions of segments from the track's start trajectory.
func meanAbsDistance(track *cdc.Track, segments ...*cdc.Segment2D) float64 {
	traj := track.StartTrajectory
	var sum float64
	var n int
	for _, s := range segments {
		for _, h := range s.Hits {
			sum += math.Abs(traj.Distance(h.RecoPos2D))
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// DistanceMatcher accepts segments in superlayers the track does not cover
// yet whose hits lie close to the track trajectory.
type DistanceMatcher struct {
	MaxDistance float64
	MinHits     int
}

func (m DistanceMatcher) MatchWeight(segment *cdc.Segment2D, track *cdc.Track) Weight {
	if segment.Len() < m.MinHits || track.Len() == 0 {
		return Reject()
	}
	if _, ok := track.SuperLayers()[segment.SuperLayer]; ok {
		return Reject()
	}
	if track.StartTrajectory.Err() != nil {
		return Reject()
	}
	dist := meanAbsDistance(track, segment)
	if !(dist <= m.MaxDistance) {
		return Reject()
	}
	return float64(segment.Len()) * (1 - dist/m.MaxDistance)
}

// FacetChi2Filter classifies segments as background when they are short or
// their facets do not line up: the mean facet fit chi2 exceeds the cut, or
// the fitted direction turns by more than MaxFacetKink between neighbouring
// facets. A zero MaxFacetKink skips the direction check.
//
// The fits live in a table allocated per call, so one filter may serve
// concurrent callers.
type FacetChi2Filter struct {
	MinHits      int
	MaxFacetChi2 float64
	MaxFacetKink float64
	NSteps       int
	Fitter       *fitting.FacetFitter
}

func (f *FacetChi2Filter) SegmentWeight(segment *cdc.Segment2D) Weight {
	if segment.Len() < f.MinHits {
		return Reject()
	}
	facets := cdc.FacetsOf(segment, 0)
	if len(facets) == 0 {
		return float64(segment.Len())
	}
	fitter := f.Fitter
	if fitter == nil {
		fitter = fitting.NewFacetFitter(fitting.DefaultFitterConfig())
	}
	table := fitting.NewFacetFitTable(len(facets))

	var sum float64
	for _, facet := range facets {
		chi2, err := fitter.Fit(facet, table, f.NSteps)
		if err != nil {
			Tracef("segment %d: %v", segment.ID, err)
			return Reject()
		}
		sum += chi2
	}
	if mean := sum / float64(len(facets)); !(mean <= f.MaxFacetChi2) {
		return Reject()
	}
	if f.MaxFacetKink > 0 {
		if kink := maxFacetKink(table, facets); !(kink <= f.MaxFacetKink) {
			Tracef("segment %d: facet kink %.3f rad", segment.ID, kink)
			return Reject()
		}
	}
	return float64(segment.Len())
}

// maxFacetKink is the largest direction change between the cached fits of
// consecutive facets. A missing fit counts as an infinite kink.
func maxFacetKink(table *fitting.FacetFitTable, facets []cdc.Facet) float64 {
	var worst float64
	for i := 1; i < len(facets); i++ {
		prev, ok := table.Lookup(facets[i-1].Index)
		if !ok {
			return math.Inf(1)
		}
		next, ok := table.Lookup(facets[i].Index)
		if !ok {
			return math.Inf(1)
		}
		turn := next.Line.Line.Direction().Phi() - prev.Line.Line.Direction().Phi()
		worst = math.Max(worst, math.Abs(geometry.NormalizeAngle(turn)))
	}
	return worst
}

// CurvatureFilter lets long segments seed tracks unless they curl too
// tightly to reach the next superlayer.
type CurvatureFilter struct {
	MinHits         int
	MaxAbsCurvature float64
}

func (f CurvatureFilter) SegmentWeight(segment *cdc.Segment2D) Weight {
	if segment.Len() < f.MinHits || segment.Len() < 3 {
		return Reject()
	}
	circle, err := fitting.RiemannFitter{}.FitPoints(segment.Positions(), nil)
	if err != nil {
		Tracef("segment %d: %v", segment.ID, err)
		return Reject()
	}
	if math.Abs(circle.Curvature()) > f.MaxAbsCurvature {
		return Reject()
	}
	return float64(segment.Len())
}

// TrainHitsFilter accepts trains with enough hits and at most one segment
// per superlayer.
type TrainHitsFilter struct {
	MinHits int
}

func (f TrainHitsFilter) TrainWeight(train []*cdc.Segment2D) Weight {
	seen := make(map[int]struct{}, len(train))
	hits := 0
	for _, s := range train {
		if _, dup := seen[s.SuperLayer]; dup {
			return Reject()
		}
		seen[s.SuperLayer] = struct{}{}
		hits += s.Len()
	}
	if hits == 0 || hits < f.MinHits {
		return Reject()
	}
	return float64(hits)
}

// TrainTrackDistanceFilter accepts a train as a track extension when it
// adds only new superlayers and runs close to the track trajectory.
type TrainTrackDistanceFilter struct {
	MaxDistance float64
}

func (f TrainTrackDistanceFilter) TrainTrackWeight(train []*cdc.Segment2D, track *cdc.Track) Weight {
	if len(train) == 0 || track.Len() == 0 || track.StartTrajectory.Err() != nil {
		return Reject()
	}
	covered := track.SuperLayers()
	hits := 0
	for _, s := range train {
		if _, ok := covered[s.SuperLayer]; ok {
			return Reject()
		}
		hits += s.Len()
	}
	dist := meanAbsDistance(track, train...)
	if !(dist <= f.MaxDistance) {
		return Reject()
	}
	return float64(hits) * (1 - dist/f.MaxDistance)
}

// TrackHitsFilter removes short tracks and tracks whose start trajectory
// fits badly.
type TrackHitsFilter struct {
	MinHits       int
	MaxChi2PerNDF float64
}

func (f TrackHitsFilter) TrackWeight(track *cdc.Track) Weight {
	if track.Len() == 0 || track.Len() < f.MinHits {
		return Reject()
	}
	if chi2 := track.StartTrajectory.Circle.Chi2PerNDF(); !math.IsNaN(chi2) && chi2 > f.MaxChi2PerNDF {
		return Reject()
	}
	return float64(track.Len())
}
