package eventio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/fsutil"
	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const straightEventYAML = `
events:
  - number: 7
    wire_hits:
      - {id: 1, x: 10, y: 0.5, drift_length: 0.5, drift_length_variance: 0.01, super_layer: 0, layer: 2, rl: left}
      - {id: 2, x: 20, y: -0.3, drift_length: 0.3, drift_length_variance: 0.01, super_layer: 0, layer: 3}
      - {id: 3, x: 30, y: 0.2, drift_length: 0.2, drift_length_variance: 0.01, super_layer: 0, layer: 4}
      - {id: 4, x: 40, y: 1, drift_length: 0.1, drift_length_variance: 0.02, super_layer: 1, layer: 0}
    segments:
      - id: 11
        super_layer: 1
        hits:
          - {wire_hit: 4, rl: right, x: 40, y: 0.9}
    tracks:
      - id: track-a
        trajectory: {curvature: 0, phi0: 0, impact: 0, tan_lambda: 0.5, z0: 1}
        hits:
          - {wire_hit: 1}
          - {wire_hit: 2, rl: right}
          - {wire_hit: 3, rl: left}
`

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	events, err := Decode(strings.NewReader(straightEventYAML), FormatYAML)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, 7, ev.Number)
	require.Len(t, ev.WireHits, 4)
	assert.Equal(t, geometry.Left, ev.WireHits[0].RLInfo)
	assert.Equal(t, geometry.UnknownRL, ev.WireHits[1].RLInfo)
	assert.Equal(t, 2, ev.WireHits[0].Layer)

	require.Len(t, ev.Segments, 1)
	seg := ev.Segments[0]
	assert.Equal(t, 11, seg.ID)
	assert.Equal(t, geometry.NewVector2D(40, 0.9), seg.Hits[0].RecoPos2D)
	assert.Same(t, ev.WireHits[3], seg.Hits[0].Hit)

	require.Len(t, ev.Tracks, 1)
	track := ev.Tracks[0]
	assert.Equal(t, "track-a", track.ID)
	require.Len(t, track.Hits, 3)

	// Without an explicit passage the wire hit's own hint is used.
	assert.Equal(t, geometry.Left, track.Hits[0].RL)
	assert.Equal(t, geometry.Right, track.Hits[1].RL)

	for i, want := range []float64{10, 20, 30} {
		h := track.Hits[i]
		assert.InDelta(t, want, h.RecoPos2D.X, 1e-9)
		assert.InDelta(t, 0, h.RecoPos2D.Y, 1e-9)
		assert.InDelta(t, want-10, h.ArcLength2D, 1e-9)
		assert.InDelta(t, 1+0.5*(want-10), h.Z, 1e-9)
	}
}

func TestDecodeJSONMatchesYAML(t *testing.T) {
	t.Parallel()

	fromYAML, err := Decode(strings.NewReader(straightEventYAML), FormatYAML)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, fromYAML, FormatJSON))

	fromJSON, err := Decode(&buf, FormatJSON)
	require.NoError(t, err)

	want := eventRecord(fromYAML[0])
	got := eventRecord(fromJSON[0])
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("JSON round trip mismatch (-yaml +json):\n%s", diff)
	}
}

func TestDecodeFitsMissingTrajectory(t *testing.T) {
	t.Parallel()

	circle := geometry.NewPerigeeCircle(0.02, 0.3, 0)
	rec := EventRecord{Number: 1}
	track := TrackRecord{ID: "fitted"}
	for i := 0; i < 6; i++ {
		s := 10 + 10*float64(i)
		p := circle.AtArcLength(s)
		rec.WireHits = append(rec.WireHits, WireHitRecord{ID: i + 1, X: p.X, Y: p.Y, DriftLengthVariance: 0.01, SuperLayer: i / 2})
		z := 2 + 0.25*(s-10)
		track.Hits = append(track.Hits, HitRef{WireHit: i + 1, Z: &z})
	}
	rec.Tracks = []TrackRecord{track}

	data, err := yaml.Marshal(Document{Events: []EventRecord{rec}})
	require.NoError(t, err)

	events, err := Decode(bytes.NewReader(data), FormatYAML)
	require.NoError(t, err)
	require.Len(t, events[0].Tracks, 1)

	got := events[0].Tracks[0]
	global := got.StartTrajectory.GlobalCircle()
	assert.InDelta(t, 0.02, global.Curvature(), 1e-6)
	assert.InDelta(t, 0, global.Impact(), 1e-6)
	assert.InDelta(t, 0.25, got.StartTrajectory.TanLambda, 1e-6)
	assert.InDelta(t, 2, got.StartTrajectory.Z0, 1e-6)
	assert.InDelta(t, 50, got.Hits[5].ArcLength2D, 1e-6)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "duplicate wire hit",
			doc:  `{"events":[{"number":1,"wire_hits":[{"id":1},{"id":1}]}]}`,
			want: ErrDuplicateWireHit,
		},
		{
			name: "unknown wire hit in segment",
			doc:  `{"events":[{"number":1,"wire_hits":[{"id":1}],"segments":[{"id":1,"hits":[{"wire_hit":2}]}]}]}`,
			want: ErrUnknownWireHit,
		},
		{
			name: "invalid passage",
			doc:  `{"events":[{"number":1,"wire_hits":[{"id":1,"rl":"up"}]}]}`,
			want: ErrInvalidRL,
		},
		{
			name: "too few hits to fit",
			doc:  `{"events":[{"number":1,"wire_hits":[{"id":1},{"id":2,"x":1}],"tracks":[{"hits":[{"wire_hit":1},{"wire_hit":2}]}]}]}`,
			want: ErrNoTrajectory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), FormatJSON)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`{"events":[],"extra":1}`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("events: []\nextra: 1\n"), FormatYAML)
	assert.Error(t, err)
}

func TestDecodeEmptyYAML(t *testing.T) {
	t.Parallel()

	events, err := Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]Format{
		"run.json":       FormatJSON,
		"run.YAML":       FormatYAML,
		"dir/run.yml":    FormatYAML,
		"/abs/path.json": FormatJSON,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("run.csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSaveAndLoadFS(t *testing.T) {
	t.Parallel()

	events, err := Decode(strings.NewReader(straightEventYAML), FormatYAML)
	require.NoError(t, err)
	events[0].Tracks[0].SegmentIDs = []int{11}

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/out", 0o755))

	for _, path := range []string{"/out/events.yaml", "/out/events.json"} {
		require.NoError(t, SaveFS(mfs, path, events))

		loaded, err := LoadFS(mfs, path)
		require.NoError(t, err, path)
		require.Len(t, loaded, 1)

		if diff := cmp.Diff(eventRecord(events[0]), eventRecord(loaded[0]), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", path, diff)
		}
		assert.Equal(t, []int{11}, loaded[0].Tracks[0].SegmentIDs)
	}

	_, err = LoadFS(mfs, "/out/missing.json")
	assert.Error(t, err)
}

func TestEncodeIncludesReferencedHits(t *testing.T) {
	t.Parallel()

	hit := &cdc.WireHit{ID: 5, WirePos: geometry.NewVector2D(1, 2), RLInfo: geometry.Right}
	ev := &cdc.Event{
		Number: 3,
		Segments: []*cdc.Segment2D{{
			ID:   1,
			Hits: []cdc.RecoHit2D{{RLWireHit: cdc.NewRLWireHit(hit, geometry.Right), RecoPos2D: hit.WirePos}},
		}},
	}

	rec := eventRecord(ev)
	require.Len(t, rec.WireHits, 1)
	assert.Equal(t, "right", rec.WireHits[0].RL)
	assert.Equal(t, 5, rec.Segments[0].Hits[0].WireHit)
}
