package geometry

import "math"

// Below these thresholds the Taylor series are exact to double precision.
const (
	sincTaylorLimit  = 1e-3
	asincTaylorLimit = 1e-3
)

// Sinc is sin(x)/x continued to 1 at x = 0.
func Sinc(x float64) float64 {
	if math.Abs(x) < sincTaylorLimit {
		x2 := x * x
		return 1 - x2/6*(1-x2/20*(1-x2/42))
	}
	return math.Sin(x) / x
}

// Asinc is asin(x)/x continued to 1 at x = 0. Arguments slightly outside
// [-1, 1] from rounding are clamped.
func Asinc(x float64) float64 {
	ax := math.Abs(x)
	if ax < asincTaylorLimit {
		x2 := x * x
		return 1 + x2/6*(1+x2*9/20*(1+x2*25/42))
	}
	if ax > 1 {
		ax = 1
	}
	return math.Asin(ax) / ax
}
