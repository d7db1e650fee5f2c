// Package debug provides instrumentation for the segment/track combiner.
// The DebugCollector captures the decisions of each phase (match
// candidates, segment classifications, train and track verdicts) for event
// displays and tuning.
package debug

import (
	"encoding/json"
	"math"
)

// Pre-allocation capacities for debug event slices.
// Based on typical event complexity:
//   - ~10 tracks x ~20 segments = ~200 match evaluations
//   - ~20-40 segments passing through the quality filters
const (
	defaultMatchCapacity    = 256
	defaultSegmentCapacity  = 64
	defaultTrainCapacity    = 16
	defaultTrackCapacity    = 16
	defaultSegmentsPerTrain = 4
)

// Segment filter stages.
const (
	StageBackground = "background"
	StageNewSegment = "new_segment"
)

// Weight is a filter weight; NaN marks a rejection and encodes as JSON null.
type Weight float64

func (w Weight) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(w)) || math.IsInf(float64(w), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(w))
}

// DebugCollector accumulates debug artifacts during a single event's
// combination pass.
//
// The collector is stateful: call Record*() methods during processing, then
// Emit() at event completion to extract the artifacts. Reset() before the
// next event.
type DebugCollector struct {
	enabled bool
	current *DebugEvent
}

// DebugEvent contains all debug artifacts for a single event.
type DebugEvent struct {
	EventNumber int

	// Match stage: which segment-track pairs were evaluated
	MatchCandidates []MatchRecord

	// Background and new segment stages
	SegmentDecisions []SegmentRecord

	// Combine stage: trains and where they went
	TrainDecisions []TrainRecord

	// Track filter stage
	TrackDecisions []TrackRecord
}

// MatchRecord captures a single segment-track pairing evaluated during
// matching. Rejected pairs carry a NaN weight.
type MatchRecord struct {
	SegmentID int
	TrackID   string
	Weight    Weight
	Accepted  bool
}

// SegmentRecord captures a segment quality verdict at one stage.
type SegmentRecord struct {
	SegmentID int
	Stage     string
	Weight    Weight
	Accepted  bool
}

// TrainRecord captures a train verdict. TrackID is empty when the train
// did not extend an existing track.
type TrainRecord struct {
	SegmentIDs []int
	TrackID    string
	Weight     Weight
	Accepted   bool
}

// TrackRecord captures a track filter verdict.
type TrackRecord struct {
	TrackID  string
	Hits     int
	Weight   Weight
	Accepted bool
}

// NewDebugCollector creates a collector that's initially disabled.
// Call SetEnabled(true) to begin collecting artifacts.
func NewDebugCollector() *DebugCollector {
	return &DebugCollector{}
}

// SetEnabled controls whether the collector records artifacts.
// When disabled, all Record*() calls are no-ops.
func (c *DebugCollector) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// IsEnabled returns true if the collector is actively recording.
func (c *DebugCollector) IsEnabled() bool {
	return c != nil && c.enabled
}

// BeginEvent initialises collection for a new event.
// Must be called before any Record*() calls.
func (c *DebugCollector) BeginEvent(eventNumber int) {
	if !c.IsEnabled() {
		return
	}
	c.current = &DebugEvent{
		EventNumber:      eventNumber,
		MatchCandidates:  make([]MatchRecord, 0, defaultMatchCapacity),
		SegmentDecisions: make([]SegmentRecord, 0, defaultSegmentCapacity),
		TrainDecisions:   make([]TrainRecord, 0, defaultTrainCapacity),
		TrackDecisions:   make([]TrackRecord, 0, defaultTrackCapacity),
	}
}

func (c *DebugCollector) recording() bool {
	return c.IsEnabled() && c.current != nil
}

// RecordMatch captures a segment-track pairing evaluation.
func (c *DebugCollector) RecordMatch(segmentID int, trackID string, weight float64, accepted bool) {
	if !c.recording() {
		return
	}
	c.current.MatchCandidates = append(c.current.MatchCandidates, MatchRecord{
		SegmentID: segmentID,
		TrackID:   trackID,
		Weight:    Weight(weight),
		Accepted:  accepted,
	})
}

// RecordSegment captures a segment quality verdict at stage.
func (c *DebugCollector) RecordSegment(segmentID int, stage string, weight float64, accepted bool) {
	if !c.recording() {
		return
	}
	c.current.SegmentDecisions = append(c.current.SegmentDecisions, SegmentRecord{
		SegmentID: segmentID,
		Stage:     stage,
		Weight:    Weight(weight),
		Accepted:  accepted,
	})
}

// RecordTrain captures a train verdict. The segment IDs are copied.
func (c *DebugCollector) RecordTrain(segmentIDs []int, trackID string, weight float64, accepted bool) {
	if !c.recording() {
		return
	}
	ids := make([]int, len(segmentIDs), max(len(segmentIDs), defaultSegmentsPerTrain))
	copy(ids, segmentIDs)
	c.current.TrainDecisions = append(c.current.TrainDecisions, TrainRecord{
		SegmentIDs: ids,
		TrackID:    trackID,
		Weight:     Weight(weight),
		Accepted:   accepted,
	})
}

// RecordTrack captures a track filter verdict.
func (c *DebugCollector) RecordTrack(trackID string, hits int, weight float64, accepted bool) {
	if !c.recording() {
		return
	}
	c.current.TrackDecisions = append(c.current.TrackDecisions, TrackRecord{
		TrackID:  trackID,
		Hits:     hits,
		Weight:   Weight(weight),
		Accepted: accepted,
	})
}

// Emit returns the accumulated debug event and prepares for the next one.
// Returns nil if collection is disabled or no event was begun.
func (c *DebugCollector) Emit() *DebugEvent {
	if !c.recording() {
		return nil
	}
	event := c.current
	c.current = nil
	return event
}

// Reset clears any pending artifacts without emitting them.
// Useful when aborting event processing.
func (c *DebugCollector) Reset() {
	if c == nil {
		return
	}
	c.current = nil
}
