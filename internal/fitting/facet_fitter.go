package fitting

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/config"
	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrDegenerateFit is returned when the observations do not constrain
	// a line: too few of them, no weight, or all at one arc length.
	ErrDegenerateFit = errors.New("fitting: degenerate fit")
)

// DefaultBrentToleranceBits asks for half the float64 mantissa, which is
// as far as the position of a quadratic minimum can be resolved.
const DefaultBrentToleranceBits = 26

// Strategy names for the nSteps argument of the facet fits.
const (
	// StepsFixedDirection keeps the start-to-end tangent direction.
	StepsFixedDirection = 0
	// StepsLinearised takes one small-angle correction.
	StepsLinearised = 1
)

// Observation is one drift circle constraint on a line: the wire position,
// the signed drift length (positive with the wire on the right of travel)
// and the inverse drift length variance.
type Observation struct {
	Pos         geometry.Vector2D
	DriftLength float64
	Weight      float64
}

// ObservationOf turns a hit hypothesis into an observation relative to
// origin.
func ObservationOf(hit cdc.RLWireHit, origin geometry.Vector2D) Observation {
	return Observation{
		Pos:         hit.Pos().Sub(origin),
		DriftLength: hit.SignedDriftLength(),
		Weight:      hit.Weight(),
	}
}

// FitterConfig controls the facet fitter.
type FitterConfig struct {
	// BrentToleranceBits sets the relative angle tolerance 2^(1-bits) of
	// the iterative mode.
	BrentToleranceBits int
}

// DefaultFitterConfig returns the compiled-in defaults.
func DefaultFitterConfig() FitterConfig {
	return FitterConfig{BrentToleranceBits: DefaultBrentToleranceBits}
}

// LocalFit is a line fitted in a frame centred on Origin.
type LocalFit struct {
	Origin geometry.Vector2D
	Line   geometry.UncertainParameterLine2D
}

// Global re-expresses the line relative to the detector origin.
func (f LocalFit) Global() geometry.UncertainParameterLine2D {
	return f.Line.PassiveMovedBy(f.Origin.Reversed())
}

// FacetFitter fits tangent lines to small groups of drift circles.
type FacetFitter struct {
	cfg FitterConfig
}

// NewFacetFitter creates a fitter. Non-positive tolerance bits fall back to
// DefaultBrentToleranceBits.
func NewFacetFitter(cfg FitterConfig) *FacetFitter {
	if cfg.BrentToleranceBits <= 0 {
		cfg.BrentToleranceBits = DefaultBrentToleranceBits
	}
	return &FacetFitter{cfg: cfg}
}

// Fit fits the line through the drift circles of facet, caches it in table
// under the facet's index and returns its chi2. The cached line is
// expressed relative to the middle wire.
func (f *FacetFitter) Fit(facet cdc.Facet, table *FacetFitTable, nSteps int) (float64, error) {
	origin := facet.SupportPos()
	hits := facet.Hits()
	obs := make([]Observation, len(hits))
	for i, h := range hits {
		obs[i] = ObservationOf(h, origin)
	}
	line, err := f.FitObservations(obs, nSteps)
	if err != nil {
		return math.NaN(), fmt.Errorf("facet %d: %w", facet.Index, err)
	}
	if table != nil {
		table.Store(facet.Index, LocalFit{Origin: origin, Line: line})
	}
	return line.Chi2, nil
}

// FitPair fits one line through the six drift circles of two facets,
// centred on the midpoint of their middle wires.
func (f *FacetFitter) FitPair(from, to cdc.Facet, nSteps int) (LocalFit, error) {
	origin := geometry.Average(from.SupportPos(), to.SupportPos())
	obs := make([]Observation, 0, 6)
	for _, facet := range []cdc.Facet{from, to} {
		for _, h := range facet.Hits() {
			obs = append(obs, ObservationOf(h, origin))
		}
	}
	line, err := f.FitObservations(obs, nSteps)
	if err != nil {
		return LocalFit{}, fmt.Errorf("facet pair %d-%d: %w", from.Index, to.Index, err)
	}
	return LocalFit{Origin: origin, Line: line}, nil
}

// FitObservations fits the line minimising the weighted squared residuals
// of the signed distances of the wires from the line against their signed
// drift lengths.
//
// The fit is carried out in the frame whose x axis is the tangent to the
// first and last drift circle. nSteps selects the accuracy: 0 keeps that
// direction, 1 applies a single small-angle correction and larger values
// run that many Brent iterations on the exact angle.
func (f *FacetFitter) FitObservations(obs []Observation, nSteps int) (geometry.UncertainParameterLine2D, error) {
	n := len(obs)
	if n < 2 {
		return geometry.UncertainParameterLine2D{}, fmt.Errorf("%d observations: %w", n, ErrDegenerateFit)
	}

	first, last := obs[0], obs[n-1]
	dir, err := tangentDirection(first, last)
	if err != nil {
		return geometry.UncertainParameterLine2D{}, err
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	ls := make([]float64, n)
	ws := make([]float64, n)
	for i, o := range obs {
		p := o.Pos.PassiveRotatedBy(dir)
		xs[i], ys[i], ls[i], ws[i] = p.X, p.Y, o.DriftLength, o.Weight
	}
	totalWeight := floats.Sum(ws)
	if !(totalWeight > 0) || math.IsInf(totalWeight, 0) {
		return geometry.UncertainParameterLine2D{}, fmt.Errorf("total weight %g: %w", totalWeight, ErrDegenerateFit)
	}

	meanX := stat.Mean(xs, ws)
	meanY := stat.Mean(ys, ws)
	meanL := stat.Mean(ls, ws)

	cov := mat.NewSymDense(3, nil)
	for i := range obs {
		d := mat.NewVecDense(3, []float64{xs[i] - meanX, ys[i] - meanY, ls[i] - meanL})
		cov.SymRankOne(cov, ws[i]/totalWeight, d)
	}

	phi, reducedChi2 := f.minimiseAngle(cov, nSteps)
	if !(cov.At(0, 0) > 0) || math.IsNaN(phi) {
		return geometry.UncertainParameterLine2D{}, fmt.Errorf("no spread along the line: %w", ErrDegenerateFit)
	}

	tangential := geometry.PhiVec(phi)
	right := tangential.OrthogonalTo(geometry.Clockwise)
	impact := meanL - right.Dot(geometry.NewVector2D(meanX, meanY))
	support := right.Scale(-impact)

	precision := linePrecision(xs, ys, ws, tangential, totalWeight)
	lineCov, err := geometry.CovarianceFromFullPrecision(precision)
	if err != nil {
		return geometry.UncertainParameterLine2D{}, fmt.Errorf("line covariance: %w", err)
	}

	return geometry.UncertainParameterLine2D{
		Line: geometry.ParameterLine2D{
			Support:    support.RotatedBy(dir),
			Tangential: tangential.RotatedBy(dir),
		},
		Covariance: lineCov,
		Chi2:       reducedChi2 * totalWeight,
		NDF:        n - 2,
	}, nil
}

// minimiseAngle returns the line angle in the rotated frame and the chi2
// per unit weight. cov holds the weighted covariance of (x, y, l).
func (f *FacetFitter) minimiseAngle(cov *mat.SymDense, nSteps int) (float64, float64) {
	cxx, cxy, cxl := cov.At(0, 0), cov.At(0, 1), cov.At(0, 2)
	cyy, cyl, cll := cov.At(1, 1), cov.At(1, 2), cov.At(2, 2)
	fixed := cyy + 2*cyl + cll

	switch {
	case nSteps <= StepsFixedDirection:
		return 0, fixed
	case nSteps == StepsLinearised:
		phi := (cxy + cxl) / cxx
		return phi, fixed - phi*(cxy+cxl)
	}

	reduced := func(phi float64) float64 {
		sin, cos := math.Sincos(phi)
		v := mat.NewVecDense(3, []float64{-sin, cos, 1})
		return mat.Inner(v, cov, v)
	}
	res := BrentMinimize(reduced, -math.Pi/2, math.Pi/2, f.cfg.BrentToleranceBits, nSteps)
	return res.X, res.F
}

// linePrecision is the information matrix of (phi0, impact) at the
// origin: the residual derivatives are the arc length along the line and
// one.
func linePrecision(xs, ys, ws []float64, tangential geometry.Vector2D, totalWeight float64) *mat.SymDense {
	ss := make([]float64, len(xs))
	for i := range xs {
		ss[i] = tangential.Dot(geometry.NewVector2D(xs[i], ys[i]))
	}
	meanS, varS := stat.PopMeanVariance(ss, ws)
	return mat.NewSymDense(geometry.LineDim, []float64{
		totalWeight * (varS + meanS*meanS), totalWeight * meanS,
		totalWeight * meanS, totalWeight,
	})
}

// tangentDirection is the unit direction of the tangent touching the first
// and last drift circle. Nested circles fall back to the chord direction.
func tangentDirection(first, last Observation) (geometry.Vector2D, error) {
	tangent, err := geometry.TouchingCircles(first.Pos, first.DriftLength, last.Pos, last.DriftLength)
	if err == nil {
		return tangent.Direction(), nil
	}
	if !errors.Is(err, geometry.ErrNoCommonTangent) {
		return geometry.Vector2D{}, err
	}
	chord, chordErr := last.Pos.Sub(first.Pos).TryUnit()
	if chordErr != nil {
		return geometry.Vector2D{}, fmt.Errorf("first and last wire coincide: %w", ErrDegenerateFit)
	}
	return chord, nil
}

// FitterConfigFromTuning builds a FitterConfig from a loaded TuningConfig.
func FitterConfigFromTuning(cfg *config.TuningConfig) FitterConfig {
	return FitterConfig{BrentToleranceBits: cfg.GetBrentToleranceBits()}
}
