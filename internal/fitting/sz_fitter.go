package fitting

import (
	"fmt"
	"math"

	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"gonum.org/v1/gonum/stat"
)

// SZLine is the fitted z = Z0 + TanLambda * s dependence of a track.
type SZLine struct {
	TanLambda float64
	Z0        float64
}

// FitSZ fits z against the transverse arc length s by weighted least
// squares. A single point fixes z0 with zero slope; two points are needed
// for a slope.
func FitSZ(s, z, weights []float64) (SZLine, error) {
	switch {
	case len(s) != len(z):
		return SZLine{}, fmt.Errorf("%d arc lengths for %d z values: %w", len(s), len(z), ErrDegenerateFit)
	case len(s) == 0:
		return SZLine{}, fmt.Errorf("no sz points: %w", ErrDegenerateFit)
	case len(s) == 1:
		return SZLine{Z0: z[0]}, nil
	}
	if spread := stat.Variance(s, weights); !(spread > 0) {
		return SZLine{Z0: stat.Mean(z, weights)}, nil
	}
	alpha, beta := stat.LinearRegression(s, z, weights, false)
	line := SZLine{TanLambda: beta, Z0: alpha}
	if math.IsNaN(line.TanLambda) || math.IsNaN(line.Z0) {
		return SZLine{}, fmt.Errorf("sz regression: %w", geometry.ErrUndefined)
	}
	return line, nil
}
