package debug

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestNewDebugCollector_InitiallyDisabled(t *testing.T) {
	collector := NewDebugCollector()

	if collector.IsEnabled() {
		t.Error("Expected collector to be initially disabled")
	}
}

func TestDebugCollector_NilIsDisabled(t *testing.T) {
	var collector *DebugCollector

	// Should not panic on a nil collector
	collector.BeginEvent(1)
	collector.RecordMatch(1, "t", 1, true)
	collector.Reset()
	if collector.Emit() != nil {
		t.Error("Expected nil event from nil collector")
	}
}

func TestDebugCollector_BeginEvent_WhenDisabled(t *testing.T) {
	collector := NewDebugCollector()
	collector.SetEnabled(false)

	collector.BeginEvent(123)
	collector.RecordSegment(4, StageBackground, 3, true)

	if event := collector.Emit(); event != nil {
		t.Error("Expected nil event when collector is disabled")
	}
}

func TestDebugCollector_RecordsAllStages(t *testing.T) {
	collector := NewDebugCollector()
	collector.SetEnabled(true)
	collector.BeginEvent(456)

	collector.RecordMatch(10, "track_42", 3.5, true)
	collector.RecordMatch(11, "track_42", math.NaN(), false)
	collector.RecordSegment(11, StageBackground, 5, true)
	collector.RecordSegment(11, StageNewSegment, math.NaN(), false)
	ids := []int{11, 12}
	collector.RecordTrain(ids, "", 12, true)
	ids[0] = 99
	collector.RecordTrack("track_42", 17, 17, true)

	event := collector.Emit()
	if event == nil {
		t.Fatal("Expected non-nil event when collector is enabled")
	}
	if event.EventNumber != 456 {
		t.Errorf("Expected EventNumber=456, got %d", event.EventNumber)
	}
	if len(event.MatchCandidates) != 2 {
		t.Fatalf("Expected 2 match candidates, got %d", len(event.MatchCandidates))
	}
	if event.MatchCandidates[1].Accepted || !math.IsNaN(float64(event.MatchCandidates[1].Weight)) {
		t.Errorf("Expected rejected NaN match, got %+v", event.MatchCandidates[1])
	}
	if len(event.SegmentDecisions) != 2 || event.SegmentDecisions[1].Stage != StageNewSegment {
		t.Errorf("Unexpected segment decisions %+v", event.SegmentDecisions)
	}
	if len(event.TrainDecisions) != 1 || event.TrainDecisions[0].SegmentIDs[0] != 11 {
		t.Errorf("Expected copied train segment IDs, got %+v", event.TrainDecisions)
	}
	if len(event.TrackDecisions) != 1 || event.TrackDecisions[0].Hits != 17 {
		t.Errorf("Unexpected track decisions %+v", event.TrackDecisions)
	}

	if collector.Emit() != nil {
		t.Error("Expected nil after Emit until the next BeginEvent")
	}
}

func TestDebugCollector_Reset(t *testing.T) {
	collector := NewDebugCollector()
	collector.SetEnabled(true)
	collector.BeginEvent(1)
	collector.RecordTrack("a", 1, 1, false)

	collector.Reset()

	if collector.Emit() != nil {
		t.Error("Expected nil event after Reset")
	}
}

func TestDebugEventEncodesRejectionsAsNull(t *testing.T) {
	c := NewDebugCollector()
	c.SetEnabled(true)
	c.BeginEvent(5)
	c.RecordMatch(1, "t", 2.5, true)
	c.RecordMatch(2, "t", math.NaN(), false)

	data, err := json.Marshal(c.Emit())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"Weight":2.5`) {
		t.Errorf("expected accepted weight in %s", got)
	}
	if !strings.Contains(got, `"Weight":null`) {
		t.Errorf("expected null for rejected weight in %s", got)
	}
}
