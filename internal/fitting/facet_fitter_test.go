package fitting

import (
	"math"
	"strconv"
	"testing"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const driftVariance = 1e-4

func assertAngleNear(t *testing.T, want, got, tol float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, 0, geometry.NormalizeAngle(got-want), tol, msgAndArgs...)
}

// hitOffLine places a wire signedDrift to the right of the point at arc
// length s on the line.
func hitOffLine(id int, line geometry.ParameterLine2D, s, signedDrift float64) cdc.RLWireHit {
	dir := line.Direction()
	right := dir.OrthogonalTo(geometry.Clockwise)
	pos := line.Support.Add(dir.Scale(s)).Add(right.Scale(signedDrift))
	rl := geometry.Right
	if signedDrift < 0 {
		rl = geometry.Left
	}
	hit := &cdc.WireHit{
		ID:                  id,
		WirePos:             pos,
		DriftLength:         math.Abs(signedDrift),
		DriftLengthVariance: driftVariance,
	}
	return cdc.NewRLWireHit(hit, rl)
}

func exactLineFacet(index int, line geometry.ParameterLine2D, s0 float64) cdc.Facet {
	return cdc.Facet{
		Index:  index,
		Start:  hitOffLine(3*index, line, s0, 0.3),
		Middle: hitOffLine(3*index+1, line, s0+1, -0.2),
		End:    hitOffLine(3*index+2, line, s0+2, 0.4),
	}
}

func TestFacetFitter_RecoversExactLine(t *testing.T) {
	t.Parallel()

	truth := geometry.ParameterLine2D{
		Support:    geometry.NewVector2D(1, 2),
		Tangential: geometry.PhiVec(0.4),
	}
	wantImpact := truth.Distance(geometry.Vector2D{})

	for _, nSteps := range []int{StepsFixedDirection, StepsLinearised, 100} {
		nSteps := nSteps
		t.Run("nSteps="+strconv.Itoa(nSteps), func(t *testing.T) {
			t.Parallel()
			fitter := NewFacetFitter(DefaultFitterConfig())
			table := NewFacetFitTable(1)
			facet := exactLineFacet(0, truth, -1)

			chi2, err := fitter.Fit(facet, table, nSteps)
			require.NoError(t, err)
			assert.InDelta(t, 0, chi2, 1e-8, "nSteps=%d", nSteps)

			fit, ok := table.Lookup(0)
			require.True(t, ok)
			assert.Equal(t, facet.SupportPos(), fit.Origin)
			assert.Equal(t, 1, fit.Line.NDF)
			require.NoError(t, fit.Line.Err())

			global := fit.Global()
			assertAngleNear(t, 0.4, global.Phi0(), 1e-7, "nSteps=%d", nSteps)
			assert.InDelta(t, wantImpact, global.Impact(), 1e-7, "nSteps=%d", nSteps)

			// The local line passes at the signed drift length from the middle wire.
			assert.InDelta(t, facet.Middle.SignedDriftLength(), fit.Line.Impact(), 1e-7)
		})
	}
}

func TestFacetFitter_FitPairRecoversExactLine(t *testing.T) {
	t.Parallel()

	truth := geometry.ParameterLine2D{
		Support:    geometry.NewVector2D(-3, 0.5),
		Tangential: geometry.PhiVec(-2.1),
	}
	fitter := NewFacetFitter(FitterConfig{})
	from := exactLineFacet(0, truth, 0)
	to := exactLineFacet(1, truth, 3)

	fit, err := fitter.FitPair(from, to, 50)
	require.NoError(t, err)
	assert.Equal(t, 4, fit.Line.NDF)
	assert.InDelta(t, 0, fit.Line.Chi2, 1e-8)
	assert.Equal(t, geometry.Average(from.SupportPos(), to.SupportPos()), fit.Origin)

	global := fit.Global()
	assertAngleNear(t, -2.1, global.Phi0(), 1e-7)
	assert.InDelta(t, truth.Distance(geometry.Vector2D{}), global.Impact(), 1e-7)
}

func TestFacetFitter_NestedDriftCirclesFallBackToChord(t *testing.T) {
	t.Parallel()

	mk := func(id int, x, y, drift float64, rl geometry.ERightLeft) cdc.RLWireHit {
		return cdc.NewRLWireHit(&cdc.WireHit{
			ID:                  id,
			WirePos:             geometry.NewVector2D(x, y),
			DriftLength:         drift,
			DriftLengthVariance: driftVariance,
		}, rl)
	}
	facet := cdc.Facet{
		Start:  mk(0, 0, 0, 1, geometry.Right),
		Middle: mk(1, 0.25, 0.1, 0.2, geometry.Right),
		End:    mk(2, 0.5, 0, 1, geometry.Left),
	}
	_, err := geometry.TouchingCircles(facet.Start.Pos(), 1, facet.End.Pos(), -1)
	require.ErrorIs(t, err, geometry.ErrNoCommonTangent)

	fitter := NewFacetFitter(DefaultFitterConfig())
	for _, nSteps := range []int{0, 1, 20} {
		table := NewFacetFitTable(1)
		chi2, err := fitter.Fit(facet, table, nSteps)
		require.NoError(t, err, "nSteps=%d", nSteps)
		assert.False(t, math.IsNaN(chi2) || math.IsInf(chi2, 0), "nSteps=%d", nSteps)
		fit, ok := table.Lookup(0)
		require.True(t, ok)
		assert.NoError(t, fit.Line.Err(), "nSteps=%d", nSteps)
	}
}

func TestFacetFitter_IterationsDoNotWorsenCurvedFit(t *testing.T) {
	t.Parallel()

	// Three wires on an arc of radius 5 with zero drift lengths.
	circle := geometry.PerigeeCircleFromCenter(geometry.NewVector2D(0, 5), 5, geometry.CounterClockwise)
	var hits [3]cdc.RLWireHit
	for i, s := range []float64{-1.5, 0, 1.5} {
		hits[i] = cdc.NewRLWireHit(&cdc.WireHit{
			ID:                  i,
			WirePos:             circle.AtArcLength(s),
			DriftLengthVariance: driftVariance,
		}, geometry.Right)
	}
	facet := cdc.Facet{Start: hits[0], Middle: hits[1], End: hits[2]}

	fitter := NewFacetFitter(DefaultFitterConfig())
	fixed, err := fitter.Fit(facet, nil, StepsFixedDirection)
	require.NoError(t, err)
	iterated, err := fitter.Fit(facet, nil, 100)
	require.NoError(t, err)

	assert.Greater(t, fixed, 0.0)
	assert.LessOrEqual(t, iterated, fixed*(1+1e-9))
}

func TestFacetFitter_Degenerate(t *testing.T) {
	t.Parallel()

	fitter := NewFacetFitter(DefaultFitterConfig())

	_, err := fitter.FitObservations([]Observation{{Weight: 1}}, 1)
	assert.ErrorIs(t, err, ErrDegenerateFit)

	_, err = fitter.FitObservations([]Observation{
		{Pos: geometry.NewVector2D(0, 0), Weight: 0},
		{Pos: geometry.NewVector2D(1, 0), Weight: 0},
		{Pos: geometry.NewVector2D(2, 0), Weight: 0},
	}, 1)
	assert.ErrorIs(t, err, ErrDegenerateFit)

	same := geometry.NewVector2D(1, 1)
	_, err = fitter.FitObservations([]Observation{
		{Pos: same, Weight: 1},
		{Pos: same, Weight: 1},
		{Pos: same, Weight: 1},
	}, 1)
	assert.ErrorIs(t, err, ErrDegenerateFit)
}

func TestFacetFitTable(t *testing.T) {
	t.Parallel()

	table := NewFacetFitTable(2)
	_, ok := table.Lookup(1)
	assert.False(t, ok)

	table.Store(5, LocalFit{Origin: geometry.NewVector2D(1, 2)})
	fit, ok := table.Lookup(5)
	require.True(t, ok)
	assert.Equal(t, geometry.NewVector2D(1, 2), fit.Origin)
	assert.Equal(t, 1, table.Len())

	table.Store(-1, LocalFit{})
	assert.Equal(t, 1, table.Len())

	table.Reset()
	assert.Equal(t, 0, table.Len())
	_, ok = table.Lookup(5)
	assert.False(t, ok)
}
