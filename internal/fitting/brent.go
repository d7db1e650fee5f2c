package fitting

import "math"

// goldenSection is (3 - sqrt(5)) / 2.
const goldenSection = 0.3819660112501051

// BrentResult is the outcome of a one dimensional minimisation.
type BrentResult struct {
	X          float64
	F          float64
	Iterations int
}

// BrentMinimize locates a minimum of f inside [lower, upper] by Brent's
// combination of golden section search and parabolic interpolation.
// The relative tolerance on x is 2^(1-bits); at most maxIter function
// evaluations are made after the initial one.
func BrentMinimize(f func(float64) float64, lower, upper float64, bits, maxIter int) BrentResult {
	tolerance := math.Ldexp(1, 1-bits)

	x := upper
	w, v := x, x
	fx := f(x)
	fw, fv := fx, fx
	var delta, delta2 float64

	iter := 0
	for ; iter < maxIter; iter++ {
		mid := (lower + upper) / 2
		fract1 := tolerance*math.Abs(x) + tolerance/4
		fract2 := 2 * fract1
		if math.Abs(x-mid) <= fract2-(upper-lower)/2 {
			break
		}

		parabolic := false
		if math.Abs(delta2) > fract1 {
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			previous := delta2
			delta2 = delta
			if math.Abs(p) < math.Abs(q*previous/2) && p > q*(lower-x) && p < q*(upper-x) {
				parabolic = true
				delta = p / q
				u := x + delta
				if u-lower < fract2 || upper-u < fract2 {
					delta = math.Copysign(fract1, mid-x)
				}
			}
		}
		if !parabolic {
			if x >= mid {
				delta2 = lower - x
			} else {
				delta2 = upper - x
			}
			delta = goldenSection * delta2
		}

		var u float64
		if math.Abs(delta) >= fract1 {
			u = x + delta
		} else {
			u = x + math.Copysign(fract1, delta)
		}
		fu := f(u)

		if fu <= fx {
			if u >= x {
				lower = x
			} else {
				upper = x
			}
			v, w, x = w, x, u
			fv, fw, fx = fw, fx, fu
			continue
		}

		if u < x {
			lower = u
		} else {
			upper = u
		}
		switch {
		case fu <= fw || w == x:
			v, w = w, u
			fv, fw = fw, fu
		case fu <= fv || v == x || v == w:
			v = u
			fv = fu
		}
	}
	return BrentResult{X: x, F: fx, Iterations: iter}
}
