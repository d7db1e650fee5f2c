package fitting

import (
	"math"
	"testing"

	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arcPoints(center geometry.Vector2D, radius, from, to float64, n int) []geometry.Vector2D {
	out := make([]geometry.Vector2D, n)
	for i := range out {
		a := from + (to-from)*float64(i)/float64(n-1)
		out[i] = center.Add(geometry.PhiVec(a).Scale(radius))
	}
	return out
}

func TestRiemannFitter_RecoversCircle(t *testing.T) {
	t.Parallel()

	center := geometry.NewVector2D(3, -1)
	want := geometry.PerigeeCircleFromCenter(center, 5, geometry.CounterClockwise)

	t.Run("counterclockwise", func(t *testing.T) {
		t.Parallel()
		points := arcPoints(center, 5, 0.1, 1.2, 6)
		fit, err := RiemannFitter{}.FitPoints(points, nil)
		require.NoError(t, err)
		assert.InDelta(t, want.Curvature(), fit.Curvature(), 1e-9)
		assertAngleNear(t, want.Phi0(), fit.Phi0(), 1e-9)
		assert.InDelta(t, want.Impact(), fit.Impact(), 1e-9)
		assert.InDelta(t, 0, fit.Chi2, 1e-12)
		assert.Equal(t, 3, fit.NDF)
		assert.NoError(t, fit.Err())
		for _, p := range points {
			assert.InDelta(t, 0, fit.Distance(p), 1e-9)
		}
	})

	t.Run("clockwise", func(t *testing.T) {
		t.Parallel()
		points := arcPoints(center, 5, 1.2, 0.1, 6)
		fit, err := RiemannFitter{}.FitPoints(points, nil)
		require.NoError(t, err)
		assert.InDelta(t, -want.Curvature(), fit.Curvature(), 1e-9)
		assert.Equal(t, geometry.Clockwise, fit.Orientation())
	})
}

func TestRiemannFitter_StraightPoints(t *testing.T) {
	t.Parallel()

	points := []geometry.Vector2D{
		geometry.NewVector2D(1, 1),
		geometry.NewVector2D(2, 2),
		geometry.NewVector2D(3, 3),
		geometry.NewVector2D(4, 4),
	}
	fit, err := RiemannFitter{}.FitPoints(points, []float64{1, 2, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, fit.Curvature(), 1e-9)
	assertAngleNear(t, math.Pi/4, fit.Phi0(), 1e-9)
	assert.InDelta(t, 0, fit.Impact(), 1e-9)
}

func TestRiemannFitter_TooFewPoints(t *testing.T) {
	t.Parallel()

	_, err := RiemannFitter{}.FitPoints(arcPoints(geometry.Vector2D{}, 1, 0, 1, 2), nil)
	assert.ErrorIs(t, err, ErrDegenerateFit)

	_, err = RiemannFitter{}.FitPoints(arcPoints(geometry.Vector2D{}, 1, 0, 1, 3), []float64{1})
	assert.ErrorIs(t, err, ErrDegenerateFit)
}

func TestFitSZ(t *testing.T) {
	t.Parallel()

	s := []float64{0, 1, 2, 5}
	z := []float64{2, 2.5, 3, 4.5}
	line, err := FitSZ(s, z, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, line.TanLambda, 1e-12)
	assert.InDelta(t, 2, line.Z0, 1e-12)

	line, err = FitSZ([]float64{3}, []float64{7}, nil)
	require.NoError(t, err)
	assert.Equal(t, SZLine{Z0: 7}, line)

	line, err = FitSZ([]float64{1, 1}, []float64{2, 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, SZLine{Z0: 3}, line)

	_, err = FitSZ(nil, nil, nil)
	assert.ErrorIs(t, err, ErrDegenerateFit)
	_, err = FitSZ([]float64{1}, nil, nil)
	assert.ErrorIs(t, err, ErrDegenerateFit)
}
