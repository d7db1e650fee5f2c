package fitting

import (
	"fmt"
	"math"

	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RiemannFitter fits a circle to points by the linear generalised circle
// fit: the points are lifted onto the paraboloid (x, y, x^2+y^2) and the
// plane closest to them gives the circle parameters.
type RiemannFitter struct{}

// FitPoints fits the circle through points, oriented from the first point
// towards the last. A nil weights slice weighs all points equally. The
// returned circle and covariance refer to the detector origin.
func (RiemannFitter) FitPoints(points []geometry.Vector2D, weights []float64) (geometry.UncertainPerigeeCircle, error) {
	n := len(points)
	if n < 3 {
		return geometry.UncertainPerigeeCircle{}, fmt.Errorf("%d points: %w", n, ErrDegenerateFit)
	}
	if weights == nil {
		weights = make([]float64, n)
		floats.AddConst(1, weights)
	}
	if len(weights) != n {
		return geometry.UncertainPerigeeCircle{}, fmt.Errorf("%d weights for %d points: %w", len(weights), n, ErrDegenerateFit)
	}

	// Work around the centroid to keep the lifted coordinates small.
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	origin := geometry.NewVector2D(stat.Mean(xs, weights), stat.Mean(ys, weights))

	local := make([]geometry.Vector2D, n)
	lifted := make([][]float64, 3)
	for j := range lifted {
		lifted[j] = make([]float64, n)
	}
	for i, p := range points {
		q := p.Sub(origin)
		local[i] = q
		lifted[0][i], lifted[1][i], lifted[2][i] = q.X, q.Y, q.NormSquared()
	}

	totalWeight := floats.Sum(weights)
	if !(totalWeight > 0) || math.IsInf(totalWeight, 0) {
		return geometry.UncertainPerigeeCircle{}, fmt.Errorf("total weight %g: %w", totalWeight, ErrDegenerateFit)
	}
	means := make([]float64, 3)
	for j := range lifted {
		means[j] = stat.Mean(lifted[j], weights)
	}
	moments := mat.NewSymDense(3, nil)
	for i := range points {
		d := mat.NewVecDense(3, []float64{
			lifted[0][i] - means[0],
			lifted[1][i] - means[1],
			lifted[2][i] - means[2],
		})
		moments.SymRankOne(moments, weights[i]/totalWeight, d)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(moments, true); !ok {
		return geometry.UncertainPerigeeCircle{}, fmt.Errorf("moment matrix eigen decomposition: %w", ErrDegenerateFit)
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	// Eigenvalues come in ascending order; the plane normal is the first.
	n12 := geometry.NewVector2D(vecs.At(0, 0), vecs.At(1, 0))
	n3 := vecs.At(2, 0)
	n0 := -(n12.X*means[0] + n12.Y*means[1] + n3*means[2])

	circle := geometry.PerigeeCircleFromN(n0, n12, n3)
	if err := circle.Err(); err != nil {
		return geometry.UncertainPerigeeCircle{}, fmt.Errorf("riemann fit: %w", err)
	}
	if travelDirection(circle, local) < 0 {
		circle.Reverse()
	}

	var chi2 float64
	precision := mat.NewSymDense(geometry.PerigeeDim, nil)
	for i, q := range local {
		d := circle.Distance(q)
		chi2 += weights[i] * d * d
		g := circle.DistanceGradient(q)
		precision.SymRankOne(precision, weights[i], mat.NewVecDense(geometry.PerigeeDim, g[:]))
	}
	cov, err := geometry.CovarianceFromFullPrecision(precision)
	if err != nil {
		return geometry.UncertainPerigeeCircle{}, fmt.Errorf("circle covariance: %w", err)
	}

	fit := geometry.NewUncertainPerigeeCircle(circle, cov, chi2, n-3)
	fit.PassiveMoveBy(origin.Reversed())
	return fit, nil
}

// travelDirection sums the arc lengths between consecutive points. Its
// sign tells whether the points run along the circle's orientation.
func travelDirection(circle geometry.PerigeeCircle, points []geometry.Vector2D) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		s := circle.ArcLengthBetween(points[i-1], points[i])
		if !math.IsNaN(s) {
			total += s
		}
	}
	return total
}
