package combiner

import (
	"errors"
	"fmt"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/combiner/debug"
	"github.com/banshee-data/cdc.tracking/internal/fitting"
)

var (
	// ErrPhaseOrder is returned when a phase is called out of sequence.
	ErrPhaseOrder = errors.New("combiner: phase called out of order")
	// ErrMissingFilter is returned by Run when a capability is nil.
	ErrMissingFilter = errors.New("combiner: missing filter")
)

// Phase is the state reached by the last completed step of a pass.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseFilled
	PhaseMatched
	PhaseSegmentsFiltered
	PhaseNewSegmentsFiltered
	PhaseCombined
	PhaseTracksFiltered
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseFilled:
		return "filled"
	case PhaseMatched:
		return "matched"
	case PhaseSegmentsFiltered:
		return "segments-filtered"
	case PhaseNewSegmentsFiltered:
		return "new-segments-filtered"
	case PhaseCombined:
		return "combined"
	case PhaseTracksFiltered:
		return "tracks-filtered"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Stats counts what happened during the current pass.
type Stats struct {
	Segments             int
	Tracks               int
	MatchCandidates      int
	Background           int
	NewSegmentCandidates int
	MergedSegments       int
	Trains               int
	AcceptedTrains       int
	ExtendedTracks       int
	NewTracks            int
	RemovedTracks        int
	TakenSegments        int
}

// SegmentTrackCombiner merges freshly found segments into existing tracks
// or into new tracks built from segment trains. One pass walks the phases
// FillWith, Match, FilterSegments, FilterOutNewSegments, Combine,
// FilterTracks and ClearAndRecover in that order; ClearAndRecover leaves
// the combiner ready for the next event.
type SegmentTrackCombiner struct {
	cfg   Config
	phase Phase
	debug *debug.DebugCollector

	allSegments []*cdc.Segment2D
	segments    []*SegmentInformation
	tracks      []*TrackInformation
	output      []*cdc.Track
	stats       Stats
}

// NewSegmentTrackCombiner creates a combiner in the empty phase.
func NewSegmentTrackCombiner(cfg Config) *SegmentTrackCombiner {
	return &SegmentTrackCombiner{cfg: cfg}
}

// SetDebugCollector attaches a collector for per-phase decisions. Nil
// detaches it.
func (c *SegmentTrackCombiner) SetDebugCollector(d *debug.DebugCollector) {
	c.debug = d
}

// Phase is the last completed phase.
func (c *SegmentTrackCombiner) Phase() Phase { return c.phase }

// Stats returns the counters of the current or last pass.
func (c *SegmentTrackCombiner) Stats() Stats { return c.stats }

func (c *SegmentTrackCombiner) expect(op string, want Phase) error {
	if c.phase != want {
		return fmt.Errorf("%s needs phase %s, combiner is %s: %w", op, want, c.phase, ErrPhaseOrder)
	}
	return nil
}

// FillWith ingests the tracks and segments of one event. Segments already
// taken are kept in the container but never considered.
func (c *SegmentTrackCombiner) FillWith(tracks []*cdc.Track, segments []*cdc.Segment2D) error {
	if err := c.expect("FillWith", PhaseEmpty); err != nil {
		return err
	}
	c.stats = Stats{}
	c.allSegments = segments
	c.segments = make([]*SegmentInformation, 0, len(segments))
	for _, s := range segments {
		if s == nil || s.Taken {
			continue
		}
		c.segments = append(c.segments, &SegmentInformation{Segment: s})
	}
	c.tracks = make([]*TrackInformation, 0, len(tracks))
	for _, t := range tracks {
		if t == nil {
			continue
		}
		c.tracks = append(c.tracks, &TrackInformation{Track: t})
	}
	c.stats.Segments = len(c.segments)
	c.stats.Tracks = len(c.tracks)
	c.phase = PhaseFilled
	return nil
}

// Match evaluates matcher on every segment-track pair and records the
// accepted pairs as candidate edges on both sides.
func (c *SegmentTrackCombiner) Match(matcher SegmentTrackMatcher) error {
	if err := c.expect("Match", PhaseFilled); err != nil {
		return err
	}
	for _, si := range c.segments {
		for _, ti := range c.tracks {
			w := matcher.MatchWeight(si.Segment, ti.Track)
			accepted := !IsRejected(w)
			c.debug.RecordMatch(si.Segment.ID, ti.Track.ID, w, accepted)
			if !accepted {
				continue
			}
			m := &Match{Segment: si, Track: ti, Weight: w}
			si.Matches = append(si.Matches, m)
			ti.Matches = append(ti.Matches, m)
			c.stats.MatchCandidates++
		}
	}
	c.phase = PhaseMatched
	return nil
}

// FilterSegments marks segments without any track candidate as background
// when filter rejects them.
func (c *SegmentTrackCombiner) FilterSegments(filter SegmentQualityFilter) error {
	if err := c.expect("FilterSegments", PhaseMatched); err != nil {
		return err
	}
	for _, si := range c.segments {
		if len(si.Matches) > 0 {
			continue
		}
		w := filter.SegmentWeight(si.Segment)
		accepted := !IsRejected(w)
		c.debug.RecordSegment(si.Segment.ID, debug.StageBackground, w, accepted)
		if !accepted {
			si.Background = true
			c.stats.Background++
		}
	}
	c.phase = PhaseSegmentsFiltered
	return nil
}

// FilterOutNewSegments decides which unmatched, non-background segments
// may seed new tracks.
func (c *SegmentTrackCombiner) FilterOutNewSegments(filter SegmentQualityFilter) error {
	if err := c.expect("FilterOutNewSegments", PhaseSegmentsFiltered); err != nil {
		return err
	}
	for _, si := range c.segments {
		if len(si.Matches) > 0 || si.Background {
			continue
		}
		w := filter.SegmentWeight(si.Segment)
		accepted := !IsRejected(w)
		c.debug.RecordSegment(si.Segment.ID, debug.StageNewSegment, w, accepted)
		if accepted {
			si.NewTrackCandidate = true
			c.stats.NewSegmentCandidates++
		}
	}
	c.phase = PhaseNewSegmentsFiltered
	return nil
}

// Combine merges every matched segment into its best track, then groups the
// new track candidates into trains. Accepted trains either extend the
// existing track the assignment gives them or become new tracks. Every
// merged segment is marked taken.
func (c *SegmentTrackCombiner) Combine(builder TrainBuilder, trainFilter TrainFilter, trainTrackFilter TrainTrackFilter) error {
	if err := c.expect("Combine", PhaseNewSegmentsFiltered); err != nil {
		return err
	}

	extended := make(map[*TrackInformation]bool)
	for _, si := range c.segments {
		best := si.BestMatch()
		if best == nil || si.Segment.Taken {
			continue
		}
		c.addSegments(best.Track, si.Segment)
		extended[best.Track] = true
		c.stats.MergedSegments++
	}

	var candidates []*cdc.Segment2D
	for _, si := range c.segments {
		if si.NewTrackCandidate && !si.Segment.Taken {
			candidates = append(candidates, si.Segment)
		}
	}

	trains := c.acceptedTrains(builder, trainFilter, candidates)
	existing := c.tracks
	weights := make([][]float64, len(trains))
	for i, train := range trains {
		weights[i] = make([]float64, len(existing))
		for j, ti := range existing {
			weights[i][j] = trainTrackFilter.TrainTrackWeight(train, ti.Track)
		}
	}
	assignment := assignTrains(weights)

	for i, train := range trains {
		ids := segmentIDs(train)
		if j := assignment[i]; j >= 0 {
			ti := existing[j]
			c.debug.RecordTrain(ids, ti.Track.ID, weights[i][j], true)
			c.addSegments(ti, train...)
			extended[ti] = true
			continue
		}
		track, err := newTrackFromTrain(train)
		if err != nil {
			Diagf("train %v: %v", ids, err)
			c.debug.RecordTrain(ids, "", Reject(), false)
			continue
		}
		c.debug.RecordTrain(ids, track.ID, float64(track.Len()), true)
		ti := &TrackInformation{Track: track, IsNew: true}
		c.claim(ti, train...)
		c.tracks = append(c.tracks, ti)
		c.stats.NewTracks++
	}

	for ti := range extended {
		if !ti.IsNew {
			c.stats.ExtendedTracks++
		}
	}
	c.phase = PhaseCombined
	return nil
}

// acceptedTrains builds trains from candidates and keeps those the filter
// accepts. A segment handed out twice by the builder stays in its first
// train only.
func (c *SegmentTrackCombiner) acceptedTrains(builder TrainBuilder, filter TrainFilter, candidates []*cdc.Segment2D) [][]*cdc.Segment2D {
	if len(candidates) == 0 {
		return nil
	}
	allowed := make(map[*cdc.Segment2D]bool, len(candidates))
	for _, s := range candidates {
		allowed[s] = true
	}

	var out [][]*cdc.Segment2D
	for _, train := range builder.BuildTrains(candidates) {
		kept := make([]*cdc.Segment2D, 0, len(train))
		for _, s := range train {
			if allowed[s] {
				kept = append(kept, s)
				allowed[s] = false
			}
		}
		if len(kept) == 0 {
			continue
		}
		c.stats.Trains++
		w := filter.TrainWeight(kept)
		if IsRejected(w) {
			c.debug.RecordTrain(segmentIDs(kept), "", w, false)
			continue
		}
		c.stats.AcceptedTrains++
		out = append(out, kept)
	}
	return out
}

// addSegments appends the hits of segments to the track. Hits already on
// the track are skipped; the new ones get arc length and z from the start
// trajectory until the re-sort refines them.
func (c *SegmentTrackCombiner) addSegments(ti *TrackInformation, segments ...*cdc.Segment2D) {
	track := ti.Track
	traj := track.StartTrajectory
	valid := traj.Err() == nil
	for _, s := range segments {
		for _, h := range s.Hits {
			if track.HasWireHit(h.Hit.ID) {
				continue
			}
			hit := cdc.RecoHit3D{RLWireHit: h.RLWireHit, RecoPos2D: h.RecoPos2D}
			if valid {
				hit.ArcLength2D = traj.ArcLength2D(h.RecoPos2D)
				hit.Z = traj.ZAt(hit.ArcLength2D)
			}
			track.Hits = append(track.Hits, hit)
		}
	}
	c.claim(ti, segments...)
}

func (c *SegmentTrackCombiner) claim(ti *TrackInformation, segments ...*cdc.Segment2D) {
	for _, s := range segments {
		s.Taken = true
		ti.Segments = append(ti.Segments, s)
		ti.Track.SegmentIDs = append(ti.Track.SegmentIDs, s.ID)
	}
}

// newTrackFromTrain fits a start trajectory through the train hits. Segments
// carry no z information, so the sz line starts flat at zero.
func newTrackFromTrain(train []*cdc.Segment2D) (*cdc.Track, error) {
	track := cdc.NewTrack(nil, cdc.Trajectory3D{})
	for _, s := range train {
		for _, h := range s.Hits {
			if track.HasWireHit(h.Hit.ID) {
				continue
			}
			track.Hits = append(track.Hits, cdc.RecoHit3D{RLWireHit: h.RLWireHit, RecoPos2D: h.RecoPos2D})
		}
	}
	circle, err := fitting.RiemannFitter{}.FitPoints(track.Positions(), hitWeights(track))
	if err != nil {
		return nil, fmt.Errorf("start trajectory: %w", err)
	}
	origin := circle.Closest(track.Hits[0].RecoPos2D)
	track.StartTrajectory = cdc.Trajectory3D{Trajectory2D: cdc.NewTrajectory2D(circle, origin)}
	for i := range track.Hits {
		track.Hits[i].ArcLength2D = track.StartTrajectory.ArcLength2D(track.Hits[i].RecoPos2D)
	}
	return track, nil
}

func segmentIDs(segments []*cdc.Segment2D) []int {
	ids := make([]int, len(segments))
	for i, s := range segments {
		ids[i] = s.ID
	}
	return ids
}

// FilterTracks removes the tracks filter rejects, releasing the segments
// merged into them during this pass, then re-sorts the hits of the
// surviving tracks by arc length. It returns the surviving tracks.
func (c *SegmentTrackCombiner) FilterTracks(filter TrackQualityFilter) ([]*cdc.Track, error) {
	if err := c.expect("FilterTracks", PhaseCombined); err != nil {
		return nil, err
	}
	c.output = c.output[:0]
	for _, ti := range c.tracks {
		w := filter.TrackWeight(ti.Track)
		accepted := !IsRejected(w)
		c.debug.RecordTrack(ti.Track.ID, ti.Track.Len(), w, accepted)
		if !accepted {
			ti.Removed = true
			ti.release()
			c.stats.RemovedTracks++
			continue
		}
		if err := ResortTrack(ti.Track, c.cfg.ResortRefit); err != nil {
			Diagf("re-sort: %v", err)
		}
		c.output = append(c.output, ti.Track)
	}
	c.phase = PhaseTracksFiltered
	return c.output, nil
}

// ClearAndRecover drops the bookkeeping of the pass, removes taken segments
// from the segment container and returns the surviving tracks and the
// remaining segments. It may be called from any phase to abandon a pass;
// before FilterTracks all current tracks are returned.
func (c *SegmentTrackCombiner) ClearAndRecover() ([]*cdc.Track, []*cdc.Segment2D) {
	tracks := c.output
	if c.phase < PhaseTracksFiltered {
		tracks = make([]*cdc.Track, 0, len(c.tracks))
		for _, ti := range c.tracks {
			tracks = append(tracks, ti.Track)
		}
	}

	remaining := make([]*cdc.Segment2D, 0, len(c.allSegments))
	for _, s := range c.allSegments {
		if s == nil {
			continue
		}
		if s.Taken {
			c.stats.TakenSegments++
			continue
		}
		remaining = append(remaining, s)
	}

	c.allSegments = nil
	c.segments = nil
	c.tracks = nil
	c.output = nil
	c.phase = PhaseEmpty
	return tracks, remaining
}

// Run drives one complete pass over event and replaces its tracks and
// segments with the result.
func (c *SegmentTrackCombiner) Run(event *cdc.Event, filters Filters) error {
	if err := filters.Validate(); err != nil {
		return err
	}
	c.debug.BeginEvent(event.Number)
	steps := []func() error{
		func() error { return c.FillWith(event.Tracks, event.Segments) },
		func() error { return c.Match(filters.Matcher) },
		func() error { return c.FilterSegments(filters.Background) },
		func() error { return c.FilterOutNewSegments(filters.NewSegment) },
		func() error { return c.Combine(filters.TrainBuilder, filters.Train, filters.TrainTrack) },
		func() error {
			_, err := c.FilterTracks(filters.Track)
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			c.ClearAndRecover()
			c.debug.Reset()
			return fmt.Errorf("event %d: %w", event.Number, err)
		}
	}
	event.Tracks, event.Segments = c.ClearAndRecover()
	s := c.stats
	Opsf("event %d: %d segments, %d tracks in; %d merged, %d new, %d removed, %d taken",
		event.Number, s.Segments, s.Tracks, s.MergedSegments, s.NewTracks, s.RemovedTracks, s.TakenSegments)
	return nil
}
