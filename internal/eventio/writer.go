package eventio

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// Save writes events to path in the format implied by its extension.
func Save(path string, events []*cdc.Event) error {
	return SaveFS(fsutil.OSFileSystem{}, path, events)
}

// SaveFS is Save on an arbitrary filesystem.
func SaveFS(fsys fsutil.FileSystem, path string, events []*cdc.Event) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create event file: %w", err)
	}
	if err := Encode(f, events, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes events as a document. Hits carry their reconstructed
// positions so that reloading does not re-reconstruct them.
func Encode(w io.Writer, events []*cdc.Event, format Format) error {
	doc := Document{Events: make([]EventRecord, 0, len(events))}
	for _, ev := range events {
		doc.Events = append(doc.Events, eventRecord(ev))
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode events JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode events YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode events YAML: %w", err)
		}
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	return nil
}

func eventRecord(ev *cdc.Event) EventRecord {
	rec := EventRecord{Number: ev.Number}

	// Segments and tracks may reference hits missing from ev.WireHits.
	hits := make(map[int]*cdc.WireHit, len(ev.WireHits))
	for _, h := range ev.WireHits {
		hits[h.ID] = h
	}
	for _, s := range ev.Segments {
		for _, h := range s.Hits {
			hits[h.Hit.ID] = h.Hit
		}
	}
	for _, t := range ev.Tracks {
		for _, h := range t.Hits {
			hits[h.Hit.ID] = h.Hit
		}
	}
	ids := make([]int, 0, len(hits))
	for id := range hits {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		h := hits[id]
		rec.WireHits = append(rec.WireHits, WireHitRecord{
			ID:                  h.ID,
			X:                   h.WirePos.X,
			Y:                   h.WirePos.Y,
			DriftLength:         h.DriftLength,
			DriftLengthVariance: h.DriftLengthVariance,
			SuperLayer:          h.SuperLayer,
			Layer:               h.Layer,
			RL:                  formatRL(h.RLInfo),
		})
	}

	for _, s := range ev.Segments {
		sr := SegmentRecord{ID: s.ID, SuperLayer: s.SuperLayer}
		for _, h := range s.Hits {
			sr.Hits = append(sr.Hits, HitRef{
				WireHit: h.Hit.ID,
				RL:      formatRL(h.RL),
				X:       ptr(h.RecoPos2D.X),
				Y:       ptr(h.RecoPos2D.Y),
			})
		}
		rec.Segments = append(rec.Segments, sr)
	}

	for _, t := range ev.Tracks {
		circle := t.StartTrajectory.GlobalCircle()
		tr := TrackRecord{
			ID: t.ID,
			Trajectory: &TrajectoryRecord{
				Curvature: circle.Curvature(),
				Phi0:      circle.Phi0(),
				Impact:    circle.Impact(),
				TanLambda: t.StartTrajectory.TanLambda,
				Z0:        t.StartTrajectory.Z0,
				Chi2:      t.StartTrajectory.Circle.Chi2,
				NDF:       t.StartTrajectory.Circle.NDF,
			},
			SegmentIDs: append([]int(nil), t.SegmentIDs...),
		}
		for _, h := range t.Hits {
			tr.Hits = append(tr.Hits, HitRef{
				WireHit: h.Hit.ID,
				RL:      formatRL(h.RL),
				X:       ptr(h.RecoPos2D.X),
				Y:       ptr(h.RecoPos2D.Y),
				Z:       ptr(h.Z),
			})
		}
		rec.Tracks = append(rec.Tracks, tr)
	}
	return rec
}

func ptr(v float64) *float64 { return &v }
