package combiner

import (
	"github.com/banshee-data/cdc.tracking/internal/config"
	"github.com/banshee-data/cdc.tracking/internal/fitting"
)

// Config holds the cuts of the default filters and the fit settings used
// during combination.
type Config struct {
	FacetFitSteps int // nSteps of the facet fits in the background filter
	Fitter        fitting.FitterConfig

	MatchMaxDistance float64 // Mean segment hit distance from the track (cm)
	MatchMinHits     int     // Shorter segments are never matched

	BackgroundMinHits      int
	BackgroundMaxFacetChi2 float64 // Mean facet chi2 above which a segment is background
	BackgroundMaxFacetKink float64 // Direction change between neighbouring facets (rad)

	NewSegmentMinHits         int
	NewSegmentMaxAbsCurvature float64 // 1/cm; tighter curls do not seed tracks

	TrainMaxDeltaPhi      float64 // Azimuth gap between consecutive train segments (rad)
	TrainMinHits          int
	TrainTrackMaxDistance float64 // Mean train hit distance from a track it extends (cm)

	TrackMinHits       int
	TrackMaxChi2PerNDF float64
	ResortRefit        bool // Refit the circle before recomputing arc lengths
}

// DefaultCombinerConfig returns combiner configuration loaded from the
// canonical tuning defaults file (config/tuning.defaults.json).
// Panics if the file cannot be found; intended for tests and binaries
// that have already validated config availability.
func DefaultCombinerConfig() Config {
	return CombinerConfigFromTuning(config.MustLoadDefaultConfig())
}

// CombinerConfigFromTuning builds a Config from a loaded TuningConfig.
func CombinerConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		FacetFitSteps:             cfg.GetFacetFitSteps(),
		Fitter:                    fitting.FitterConfigFromTuning(cfg),
		MatchMaxDistance:          cfg.GetMatchMaxDistance(),
		MatchMinHits:              cfg.GetMatchMinHits(),
		BackgroundMinHits:         cfg.GetBackgroundMinHits(),
		BackgroundMaxFacetChi2:    cfg.GetBackgroundMaxFacetChi2(),
		BackgroundMaxFacetKink:    cfg.GetBackgroundMaxFacetKink(),
		NewSegmentMinHits:         cfg.GetNewSegmentMinHits(),
		NewSegmentMaxAbsCurvature: cfg.GetNewSegmentMaxAbsCurvature(),
		TrainMaxDeltaPhi:          cfg.GetTrainMaxDeltaPhi(),
		TrainMinHits:              cfg.GetTrainMinHits(),
		TrainTrackMaxDistance:     cfg.GetTrainTrackMaxDistance(),
		TrackMinHits:              cfg.GetTrackMinHits(),
		TrackMaxChi2PerNDF:        cfg.GetTrackMaxChi2PerNDF(),
		ResortRefit:               cfg.GetResortRefit(),
	}
}
