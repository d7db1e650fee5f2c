package eventio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/fitting"
	"github.com/banshee-data/cdc.tracking/internal/fsutil"
	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"gopkg.in/yaml.v3"
)

// Load reads all events from a .json, .yaml or .yml file.
func Load(path string) ([]*cdc.Event, error) {
	return LoadFS(fsutil.OSFileSystem{}, path)
}

// LoadFS is Load on an arbitrary filesystem.
func LoadFS(fsys fsutil.FileSystem, path string) ([]*cdc.Event, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}
	defer f.Close()

	events, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// Decode parses a document. Unknown fields are rejected.
func Decode(r io.Reader, format Format) ([]*cdc.Event, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse events JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to parse events YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}

	events := make([]*cdc.Event, 0, len(doc.Events))
	for i := range doc.Events {
		ev, err := doc.Events[i].toEvent()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", doc.Events[i].Number, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (rec *EventRecord) toEvent() (*cdc.Event, error) {
	ev := &cdc.Event{Number: rec.Number}
	byID := make(map[int]*cdc.WireHit, len(rec.WireHits))
	for _, wh := range rec.WireHits {
		if _, dup := byID[wh.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateWireHit, wh.ID)
		}
		rl, err := parseRL(wh.RL)
		if err != nil {
			return nil, fmt.Errorf("wire hit %d: %w", wh.ID, err)
		}
		hit := &cdc.WireHit{
			ID:                  wh.ID,
			WirePos:             geometry.NewVector2D(wh.X, wh.Y),
			DriftLength:         wh.DriftLength,
			DriftLengthVariance: wh.DriftLengthVariance,
			SuperLayer:          wh.SuperLayer,
			Layer:               wh.Layer,
			RLInfo:              rl,
		}
		byID[wh.ID] = hit
		ev.WireHits = append(ev.WireHits, hit)
	}

	for _, sr := range rec.Segments {
		seg, err := sr.toSegment(byID)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", sr.ID, err)
		}
		ev.Segments = append(ev.Segments, seg)
	}
	for i, tr := range rec.Tracks {
		track, err := tr.toTrack(byID)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		ev.Tracks = append(ev.Tracks, track)
	}
	return ev, nil
}

// resolve binds a hit reference to its wire hit.
func (ref HitRef) resolve(byID map[int]*cdc.WireHit) (cdc.RLWireHit, error) {
	hit, ok := byID[ref.WireHit]
	if !ok {
		return cdc.RLWireHit{}, fmt.Errorf("%w: %d", ErrUnknownWireHit, ref.WireHit)
	}
	rl, err := parseRL(ref.RL)
	if err != nil {
		return cdc.RLWireHit{}, fmt.Errorf("wire hit %d: %w", ref.WireHit, err)
	}
	if rl == geometry.UnknownRL {
		rl = hit.RLInfo
	}
	return cdc.NewRLWireHit(hit, rl), nil
}

func (ref HitRef) position() (geometry.Vector2D, bool) {
	if ref.X == nil || ref.Y == nil {
		return geometry.Vector2D{}, false
	}
	return geometry.NewVector2D(*ref.X, *ref.Y), true
}

func (sr SegmentRecord) toSegment(byID map[int]*cdc.WireHit) (*cdc.Segment2D, error) {
	seg := &cdc.Segment2D{ID: sr.ID, SuperLayer: sr.SuperLayer}
	for _, ref := range sr.Hits {
		rlHit, err := ref.resolve(byID)
		if err != nil {
			return nil, err
		}
		pos, ok := ref.position()
		if !ok {
			pos = rlHit.Pos()
		}
		seg.Hits = append(seg.Hits, cdc.RecoHit2D{RLWireHit: rlHit, RecoPos2D: pos})
	}
	return seg, nil
}

func (tr TrackRecord) toTrack(byID map[int]*cdc.WireHit) (*cdc.Track, error) {
	if len(tr.Hits) == 0 {
		return nil, fmt.Errorf("%w: no hits", ErrNoTrajectory)
	}
	rlHits := make([]cdc.RLWireHit, len(tr.Hits))
	points := make([]geometry.Vector2D, len(tr.Hits))
	explicit := make([]bool, len(tr.Hits))
	for i, ref := range tr.Hits {
		rlHit, err := ref.resolve(byID)
		if err != nil {
			return nil, err
		}
		rlHits[i] = rlHit
		points[i], explicit[i] = ref.position()
		if !explicit[i] {
			points[i] = rlHit.Pos()
		}
	}

	var global geometry.UncertainPerigeeCircle
	var tanLambda, z0 float64
	if tr.Trajectory != nil {
		t := tr.Trajectory
		global = geometry.NewUncertainPerigeeCircle(geometry.NewPerigeeCircle(t.Curvature, t.Phi0, t.Impact), nil, t.Chi2, t.NDF)
		tanLambda, z0 = t.TanLambda, t.Z0
	} else {
		if len(points) < 3 {
			return nil, ErrNoTrajectory
		}
		circle, err := fitting.RiemannFitter{}.FitPoints(points, nil)
		if err != nil {
			return nil, fmt.Errorf("fitting trajectory: %w", err)
		}
		global = circle
	}

	traj := cdc.Trajectory3D{
		Trajectory2D: cdc.NewTrajectory2D(global, points[0]),
		TanLambda:    tanLambda,
		Z0:           z0,
	}

	hits := make([]cdc.RecoHit3D, len(rlHits))
	for i, rlHit := range rlHits {
		pos := points[i]
		if !explicit[i] {
			pos = traj.Closest(pos)
		}
		hits[i] = cdc.RecoHit3D{
			RLWireHit:   rlHit,
			RecoPos2D:   pos,
			ArcLength2D: traj.ArcLength2D(pos),
		}
	}

	if tr.Trajectory == nil {
		traj.TanLambda, traj.Z0 = fitZ(tr.Hits, hits)
	}
	for i := range hits {
		if z := tr.Hits[i].Z; z != nil {
			hits[i].Z = *z
		} else {
			hits[i].Z = traj.ZAt(hits[i].ArcLength2D)
		}
	}

	track := cdc.NewTrack(hits, traj)
	if tr.ID != "" {
		track.ID = tr.ID
	}
	track.SegmentIDs = append([]int(nil), tr.SegmentIDs...)
	return track, nil
}

// fitZ fits the sz line through the hits carrying an explicit z. Without
// any the track is flat at z = 0.
func fitZ(refs []HitRef, hits []cdc.RecoHit3D) (tanLambda, z0 float64) {
	var s, z []float64
	for i, ref := range refs {
		if ref.Z != nil {
			s = append(s, hits[i].ArcLength2D)
			z = append(z, *ref.Z)
		}
	}
	line, err := fitting.FitSZ(s, z, nil)
	if err != nil {
		return 0, 0
	}
	return line.TanLambda, line.Z0
}
