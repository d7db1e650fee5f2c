package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for the fitting and
// combination cuts. Every field is optional; the Get* accessors fall back
// to compiled-in defaults so partial files are safe.
type TuningConfig struct {
	// Facet fit params
	FacetFitSteps      *int `json:"facet_fit_steps,omitempty"`
	BrentToleranceBits *int `json:"brent_tolerance_bits,omitempty"`

	// Segment to track matching
	MatchMaxDistance *float64 `json:"match_max_distance,omitempty"` // cm, mean hit distance
	MatchMinHits     *int     `json:"match_min_hits,omitempty"`

	// Background and new segment filters
	BackgroundMinHits         *int     `json:"background_min_hits,omitempty"`
	BackgroundMaxFacetChi2    *float64 `json:"background_max_facet_chi2,omitempty"`
	BackgroundMaxFacetKink    *float64 `json:"background_max_facet_kink,omitempty"` // rad, between neighbouring facets
	NewSegmentMinHits         *int     `json:"new_segment_min_hits,omitempty"`
	NewSegmentMaxAbsCurvature *float64 `json:"new_segment_max_abs_curvature,omitempty"` // 1/cm
	TrainMaxDeltaPhi          *float64 `json:"train_max_delta_phi,omitempty"`           // rad
	TrainMinHits              *int     `json:"train_min_hits,omitempty"`
	TrainTrackMaxDistance     *float64 `json:"train_track_max_distance,omitempty"` // cm
	TrackMinHits              *int     `json:"track_min_hits,omitempty"`
	TrackMaxChi2PerNDF        *float64 `json:"track_max_chi2_per_ndf,omitempty"`
	ResortRefit               *bool    `json:"resort_refit,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.FacetFitSteps != nil && *c.FacetFitSteps < 0 {
		return fmt.Errorf("facet_fit_steps must be non-negative, got %d", *c.FacetFitSteps)
	}
	if c.BrentToleranceBits != nil {
		if *c.BrentToleranceBits < 1 || *c.BrentToleranceBits > 52 {
			return fmt.Errorf("brent_tolerance_bits must be between 1 and 52, got %d", *c.BrentToleranceBits)
		}
	}

	positive := []struct {
		name string
		v    *float64
	}{
		{"match_max_distance", c.MatchMaxDistance},
		{"background_max_facet_chi2", c.BackgroundMaxFacetChi2},
		{"background_max_facet_kink", c.BackgroundMaxFacetKink},
		{"new_segment_max_abs_curvature", c.NewSegmentMaxAbsCurvature},
		{"train_max_delta_phi", c.TrainMaxDeltaPhi},
		{"train_track_max_distance", c.TrainTrackMaxDistance},
		{"track_max_chi2_per_ndf", c.TrackMaxChi2PerNDF},
	}
	for _, p := range positive {
		if p.v != nil && !(*p.v > 0) {
			return fmt.Errorf("%s must be positive, got %f", p.name, *p.v)
		}
	}

	counts := []struct {
		name string
		v    *int
	}{
		{"match_min_hits", c.MatchMinHits},
		{"background_min_hits", c.BackgroundMinHits},
		{"new_segment_min_hits", c.NewSegmentMinHits},
		{"train_min_hits", c.TrainMinHits},
		{"track_min_hits", c.TrackMinHits},
	}
	for _, n := range counts {
		if n.v != nil && *n.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", n.name, *n.v)
		}
	}

	return nil
}

// GetFacetFitSteps returns the facet_fit_steps value or the default
// single linearised step.
func (c *TuningConfig) GetFacetFitSteps() int {
	if c.FacetFitSteps == nil {
		return 1
	}
	return *c.FacetFitSteps
}

// GetBrentToleranceBits returns the brent_tolerance_bits value or the default.
func (c *TuningConfig) GetBrentToleranceBits() int {
	if c.BrentToleranceBits == nil {
		return 26
	}
	return *c.BrentToleranceBits
}

// GetMatchMaxDistance returns the match_max_distance value or the default.
func (c *TuningConfig) GetMatchMaxDistance() float64 {
	if c.MatchMaxDistance == nil {
		return 1.5
	}
	return *c.MatchMaxDistance
}

// GetMatchMinHits returns the match_min_hits value or the default.
func (c *TuningConfig) GetMatchMinHits() int {
	if c.MatchMinHits == nil {
		return 3
	}
	return *c.MatchMinHits
}

// GetBackgroundMinHits returns the background_min_hits value or the default.
func (c *TuningConfig) GetBackgroundMinHits() int {
	if c.BackgroundMinHits == nil {
		return 3
	}
	return *c.BackgroundMinHits
}

// GetBackgroundMaxFacetChi2 returns the background_max_facet_chi2 value or the default.
func (c *TuningConfig) GetBackgroundMaxFacetChi2() float64 {
	if c.BackgroundMaxFacetChi2 == nil {
		return 100
	}
	return *c.BackgroundMaxFacetChi2
}

// GetBackgroundMaxFacetKink returns the background_max_facet_kink value or the default.
func (c *TuningConfig) GetBackgroundMaxFacetKink() float64 {
	if c.BackgroundMaxFacetKink == nil {
		return 0.5
	}
	return *c.BackgroundMaxFacetKink
}

// GetNewSegmentMinHits returns the new_segment_min_hits value or the default.
func (c *TuningConfig) GetNewSegmentMinHits() int {
	if c.NewSegmentMinHits == nil {
		return 5
	}
	return *c.NewSegmentMinHits
}

// GetNewSegmentMaxAbsCurvature returns the new_segment_max_abs_curvature value or the default.
func (c *TuningConfig) GetNewSegmentMaxAbsCurvature() float64 {
	if c.NewSegmentMaxAbsCurvature == nil {
		return 0.05
	}
	return *c.NewSegmentMaxAbsCurvature
}

// GetTrainMaxDeltaPhi returns the train_max_delta_phi value or the default.
func (c *TuningConfig) GetTrainMaxDeltaPhi() float64 {
	if c.TrainMaxDeltaPhi == nil {
		return 0.3
	}
	return *c.TrainMaxDeltaPhi
}

// GetTrainMinHits returns the train_min_hits value or the default.
func (c *TuningConfig) GetTrainMinHits() int {
	if c.TrainMinHits == nil {
		return 8
	}
	return *c.TrainMinHits
}

// GetTrainTrackMaxDistance returns the train_track_max_distance value or the default.
func (c *TuningConfig) GetTrainTrackMaxDistance() float64 {
	if c.TrainTrackMaxDistance == nil {
		return 2.0
	}
	return *c.TrainTrackMaxDistance
}

// GetTrackMinHits returns the track_min_hits value or the default.
func (c *TuningConfig) GetTrackMinHits() int {
	if c.TrackMinHits == nil {
		return 5
	}
	return *c.TrackMinHits
}

// GetTrackMaxChi2PerNDF returns the track_max_chi2_per_ndf value or the default.
func (c *TuningConfig) GetTrackMaxChi2PerNDF() float64 {
	if c.TrackMaxChi2PerNDF == nil {
		return 1000
	}
	return *c.TrackMaxChi2PerNDF
}

// GetResortRefit returns the resort_refit value or the default.
func (c *TuningConfig) GetResortRefit() bool {
	if c.ResortRefit == nil {
		return true // default: refit before re-sorting
	}
	return *c.ResortRefit
}
