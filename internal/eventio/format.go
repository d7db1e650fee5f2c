package eventio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/cdc.tracking/internal/geometry"
)

// Format selects the document encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Document is the on-disk layout.
type Document struct {
	Events []EventRecord `json:"events" yaml:"events"`
}

type EventRecord struct {
	Number   int             `json:"number" yaml:"number"`
	WireHits []WireHitRecord `json:"wire_hits" yaml:"wire_hits"`
	Segments []SegmentRecord `json:"segments,omitempty" yaml:"segments,omitempty"`
	Tracks   []TrackRecord   `json:"tracks,omitempty" yaml:"tracks,omitempty"`
}

type WireHitRecord struct {
	ID                  int     `json:"id" yaml:"id"`
	X                   float64 `json:"x" yaml:"x"`
	Y                   float64 `json:"y" yaml:"y"`
	DriftLength         float64 `json:"drift_length" yaml:"drift_length"`
	DriftLengthVariance float64 `json:"drift_length_variance" yaml:"drift_length_variance"`
	SuperLayer          int     `json:"super_layer" yaml:"super_layer"`
	Layer               int     `json:"layer" yaml:"layer"`
	RL                  string  `json:"rl,omitempty" yaml:"rl,omitempty"`
}

// HitRef places a wire hit on a segment or track. X and Y override the
// reconstructed position; without them the hit is reconstructed from the
// wire position.
type HitRef struct {
	WireHit int      `json:"wire_hit" yaml:"wire_hit"`
	RL      string   `json:"rl,omitempty" yaml:"rl,omitempty"`
	X       *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y       *float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Z       *float64 `json:"z,omitempty" yaml:"z,omitempty"`
}

type SegmentRecord struct {
	ID         int      `json:"id" yaml:"id"`
	SuperLayer int      `json:"super_layer" yaml:"super_layer"`
	Hits       []HitRef `json:"hits" yaml:"hits"`
}

// TrajectoryRecord is a helix in perigee parameters.
type TrajectoryRecord struct {
	Curvature float64 `json:"curvature" yaml:"curvature"`
	Phi0      float64 `json:"phi0" yaml:"phi0"`
	Impact    float64 `json:"impact" yaml:"impact"`
	TanLambda float64 `json:"tan_lambda" yaml:"tan_lambda"`
	Z0        float64 `json:"z0" yaml:"z0"`
	Chi2      float64 `json:"chi2,omitempty" yaml:"chi2,omitempty"`
	NDF       int     `json:"ndf,omitempty" yaml:"ndf,omitempty"`
}

type TrackRecord struct {
	ID         string            `json:"id,omitempty" yaml:"id,omitempty"`
	Trajectory *TrajectoryRecord `json:"trajectory,omitempty" yaml:"trajectory,omitempty"`
	Hits       []HitRef          `json:"hits" yaml:"hits"`
	SegmentIDs []int             `json:"segment_ids,omitempty" yaml:"segment_ids,omitempty"`
}

func parseRL(s string) (geometry.ERightLeft, error) {
	switch strings.ToLower(s) {
	case "", "unknown":
		return geometry.UnknownRL, nil
	case "right", "r":
		return geometry.Right, nil
	case "left", "l":
		return geometry.Left, nil
	default:
		return geometry.InvalidRL, fmt.Errorf("%w: %q", ErrInvalidRL, s)
	}
}

func formatRL(rl geometry.ERightLeft) string {
	if rl == geometry.UnknownRL {
		return ""
	}
	return rl.String()
}
