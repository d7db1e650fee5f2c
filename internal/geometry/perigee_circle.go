package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Parameter indices of the perigee representation in Jacobians and
// covariance matrices.
const (
	IndexCurvature = 0
	IndexPhi0      = 1
	IndexImpact    = 2

	PerigeeDim = 3
)

// PerigeeCircle is a circle or straight line through the plane, described
// by its signed curvature, the direction of travel at the point of closest
// approach to the origin (the perigee) and the signed distance of the origin
// from the trajectory.
//
// Straight lines are the curvature == 0 case and need no special treatment
// in any of the formulas below.
type PerigeeCircle struct {
	curvature float64
	phi0      float64
	phi0Vec   Vector2D
	impact    float64
}

// NewPerigeeCircle builds a circle from its perigee parameters. phi0 is
// normalised into (-pi, pi]; nothing else is validated, so check the result
// with Validity.
func NewPerigeeCircle(curvature, phi0, impact float64) PerigeeCircle {
	return PerigeeCircle{
		curvature: curvature,
		phi0:      NormalizeAngle(phi0),
		phi0Vec:   PhiVec(phi0),
		impact:    impact,
	}
}

// NewPerigeeCircleFromVec is NewPerigeeCircle with the direction given as a
// vector. The vector is normalised.
func NewPerigeeCircleFromVec(curvature float64, phi0Vec Vector2D, impact float64) PerigeeCircle {
	u := phi0Vec.Unit()
	return PerigeeCircle{
		curvature: curvature,
		phi0:      u.Phi(),
		phi0Vec:   u,
		impact:    impact,
	}
}

// PerigeeCircleFromCenter builds the circle around center with the given
// radius, travelled in the given sense of rotation.
func PerigeeCircleFromCenter(center Vector2D, radius float64, orientation ERotation) PerigeeCircle {
	absRadius := math.Abs(radius)
	o := float64(orientation)
	phi0Vec := center.OrthogonalTo(orientation.Reversed()).Unit()
	return PerigeeCircle{
		curvature: o / absRadius,
		phi0:      phi0Vec.Phi(),
		phi0Vec:   phi0Vec,
		impact:    (center.Norm() - absRadius) * o,
	}
}

// PerigeeCircleFromN builds a circle from the generalised circle equation
// n0 + n12 . x + n3 |x|^2 = 0. The parameters are normalised so that
// |n12|^2 - 4 n0 n3 = 1; the overall sign fixes the orientation.
func PerigeeCircleFromN(n0 float64, n12 Vector2D, n3 float64) PerigeeCircle {
	norm := n12.NormSquared() - 4*n0*n3
	if norm <= 0 {
		return PerigeeCircle{
			curvature: math.NaN(),
			phi0:      math.NaN(),
			phi0Vec:   Vector2D{X: math.NaN(), Y: math.NaN()},
			impact:    math.NaN(),
		}
	}
	norm = math.Sqrt(norm)
	n0 /= norm
	n12 = n12.Divide(norm)
	n3 /= norm

	curvature := 2 * n3
	phi0Vec := n12.Orthogonal().Unit()
	return PerigeeCircle{
		curvature: curvature,
		phi0:      phi0Vec.Phi(),
		phi0Vec:   phi0Vec,
		impact:    stableDistance(n0, curvature),
	}
}

// CircleThroughPoints returns the trajectory visiting a, b and c in that
// order. Collinear points give a straight line; coincident points give an
// error.
func CircleThroughPoints(a, b, c Vector2D) (PerigeeCircle, error) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	det := ab.Cross(ac)
	ab2 := ab.NormSquared()
	ac2 := ac.NormSquared()

	// Circle through the local origin a: n12 . x + n3 |x|^2 = 0.
	n12 := Vector2D{
		X: -(ab2*ac.Y - ac2*ab.Y),
		Y: -(ab.X*ac2 - ac.X*ab2),
	}
	local := PerigeeCircleFromN(0, n12, det)
	if err := local.Err(); err != nil {
		return local, fmt.Errorf("circle through %v %v %v: %w", a, b, c, ErrDegenerate)
	}
	local.PassiveMoveBy(a.Reversed())
	return local, local.Err()
}

// LineThroughPoints returns the straight trajectory from a towards b.
func LineThroughPoints(a, b Vector2D) (PerigeeCircle, error) {
	dir, err := b.Sub(a).TryUnit()
	if err != nil {
		return PerigeeCircle{}, fmt.Errorf("line through %v %v: %w", a, b, err)
	}
	return NewPerigeeCircleFromVec(0, dir, dir.Cross(a)), nil
}

func (c PerigeeCircle) Curvature() float64 { return c.curvature }
func (c PerigeeCircle) Phi0() float64      { return c.phi0 }
func (c PerigeeCircle) Phi0Vec() Vector2D  { return c.phi0Vec }
func (c PerigeeCircle) Impact() float64    { return c.impact }

// N0 is the constant term of the generalised circle equation.
func (c PerigeeCircle) N0() float64 { return c.impact * (1 + c.curvature*c.impact/2) }

// N12 is the linear term of the generalised circle equation.
func (c PerigeeCircle) N12() Vector2D {
	return c.phi0Vec.Orthogonal().Scale(-(1 + c.curvature*c.impact))
}

// N3 is the quadratic term of the generalised circle equation.
func (c PerigeeCircle) N3() float64 { return c.curvature / 2 }

func (c PerigeeCircle) IsLine() bool   { return c.curvature == 0 }
func (c PerigeeCircle) IsCircle() bool { return c.curvature != 0 }

// Orientation is the sense of rotation; lines count as counterclockwise.
func (c PerigeeCircle) Orientation() ERotation {
	if c.curvature < 0 {
		return Clockwise
	}
	return CounterClockwise
}

func (c PerigeeCircle) SignedRadius() float64 { return 1 / c.curvature }
func (c PerigeeCircle) AbsRadius() float64    { return math.Abs(1 / c.curvature) }

// Center is infinitely far away for lines.
func (c PerigeeCircle) Center() Vector2D {
	return c.phi0Vec.Orthogonal().Scale(c.impact + 1/c.curvature)
}

// Perigee is the point of closest approach to the origin.
func (c PerigeeCircle) Perigee() Vector2D {
	return c.phi0Vec.Orthogonal().Scale(c.impact)
}

// ArcLengthPeriod is the length of one full revolution, +Inf for lines.
func (c PerigeeCircle) ArcLengthPeriod() float64 {
	return 2 * math.Pi * c.AbsRadius()
}

// Validity classifies the circle. Non-finite parameters are undefined. A
// null direction vector, or 1 + curvature*impact == 0 where the origin sits
// at the centre and the perigee direction is undefined, is degenerate.
// Triples with 1 + curvature*impact < 0 describe real circles; PassiveMoveBy
// by the null vector brings them into canonical form.
func (c PerigeeCircle) Validity() Validity {
	if !isFinite(c.curvature, c.phi0, c.impact, c.phi0Vec.X, c.phi0Vec.Y) {
		return Undefined
	}
	if c.phi0Vec.IsNull() || 1+c.curvature*c.impact == 0 {
		return Degenerate
	}
	return Valid
}

// Err is Validity().Err().
func (c PerigeeCircle) Err() error { return c.Validity().Err() }

// IsInvalid reports whether any parameter is unusable.
func (c PerigeeCircle) IsInvalid() bool { return c.Validity() != Valid }

// FastDistance is the generalised circle function at point. It has the sign
// of the distance and agrees with it to first order near the trajectory.
func (c PerigeeCircle) FastDistance(point Vector2D) float64 {
	return c.N0() + point.Dot(c.N12()) + point.NormSquared()*c.N3()
}

// Distance is the signed distance of point from the trajectory, positive
// to the right of the direction of travel.
func (c PerigeeCircle) Distance(point Vector2D) float64 {
	return stableDistance(c.FastDistance(point), c.curvature)
}

// stableDistance solves curvature/2 d^2 + d - fast = 0 for the root that
// stays finite as the curvature goes to zero, without cancellation for
// small distances.
func stableDistance(fast, curvature float64) float64 {
	disc := 1 + 2*fast*curvature
	if disc < 0 {
		disc = 0
	}
	return 2 * fast / (1 + math.Sqrt(disc))
}

// Gradient of FastDistance at point.
func (c PerigeeCircle) Gradient(point Vector2D) Vector2D {
	return c.N12().Add(point.Scale(c.curvature))
}

// Normal is the unit vector pointing towards increasing distance.
func (c PerigeeCircle) Normal(point Vector2D) Vector2D {
	return c.Gradient(point).Unit()
}

// Tangential is the unit direction of travel at the point of the
// trajectory closest to point.
func (c PerigeeCircle) Tangential(point Vector2D) Vector2D {
	return c.Gradient(point).Orthogonal().Unit()
}

// Closest is the point on the trajectory nearest to point.
func (c PerigeeCircle) Closest(point Vector2D) Vector2D {
	return point.Sub(c.Normal(point).Scale(c.Distance(point)))
}

// IsForwardOrBackwardOf says whether to lies ahead of or behind from along
// the direction of travel at from.
func (c PerigeeCircle) IsForwardOrBackwardOf(from, to Vector2D) EForwardBackward {
	return forwardBackwardFromSign(c.Tangential(from).Dot(to.Sub(from)))
}

// arcLength converts a secant length into the arc length it subtends.
func (c PerigeeCircle) arcLength(secantLength float64) float64 {
	return secantLength * Asinc(c.curvature*secantLength/2)
}

// ArcLengthBetween is the signed arc length from the point closest to from
// to the point closest to to, in (-pi R, pi R].
func (c PerigeeCircle) ArcLengthBetween(from, to Vector2D) float64 {
	closestFrom := c.Closest(from)
	closestTo := c.Closest(to)
	sign := c.IsForwardOrBackwardOf(closestFrom, closestTo)
	switch sign {
	case InvalidFB:
		return math.NaN()
	case UnknownFB:
		// Opposite points on the circle or identical points.
		sign = Forward
	}
	return float64(sign) * c.arcLength(closestFrom.Distance(closestTo))
}

// ArcLengthTo is the signed arc length from the perigee to the point
// closest to point.
func (c PerigeeCircle) ArcLengthTo(point Vector2D) float64 {
	return c.ArcLengthBetween(c.Perigee(), point)
}

// ArcLengthToCylindricalR is the forward arc length from the perigee to
// the first crossing with the origin-centred circle of radius r.
func (c PerigeeCircle) ArcLengthToCylindricalR(r float64) float64 {
	i := c.impact
	secantLength := math.Sqrt((r + i) * (r - i) / (1 + c.curvature*i))
	return c.arcLength(secantLength)
}

// AtArcLength is the point reached after travelling arcLength from the
// perigee. The sinc form stays exact for vanishing curvature.
func (c PerigeeCircle) AtArcLength(arcLength float64) Vector2D {
	chi := arcLength * c.curvature
	chiHalf := chi / 2
	atX := arcLength * Sinc(chi)
	atY := arcLength*Sinc(chiHalf)*math.Sin(chiHalf) + c.impact
	return Compose(c.phi0Vec, atX, atY)
}

// AtCylindricalR returns the two crossings with the origin-centred circle
// of radius r. Both coordinates are NaN when there is no crossing.
func (c PerigeeCircle) AtCylindricalR(r float64) (Vector2D, Vector2D) {
	n12 := c.N12()
	n12Norm := n12.Norm()
	dir := n12.Divide(n12Norm)
	along := -(c.N0() + c.N3()*r*r) / n12Norm
	across := math.Sqrt(r*r - along*along)
	return Compose(dir, along, across), Compose(dir, along, -across)
}

// AtCylindricalRForwardOf returns the crossing with the origin-centred
// circle of radius r that is reached first when travelling forward from
// startPoint.
func (c PerigeeCircle) AtCylindricalRForwardOf(startPoint Vector2D, r float64) Vector2D {
	first, second := c.AtCylindricalR(r)
	period := c.ArcLengthPeriod()
	s1 := c.ArcLengthBetween(startPoint, first)
	s2 := c.ArcLengthBetween(startPoint, second)
	if s1 < 0 {
		s1 += period
	}
	if s2 < 0 {
		s2 += period
	}
	if s1 <= s2 {
		return first
	}
	return second
}

// Reverse switches to travelling the same trajectory the other way.
func (c *PerigeeCircle) Reverse() {
	c.curvature = -c.curvature
	c.phi0 = ReverseAngle(c.phi0)
	c.phi0Vec = c.phi0Vec.Reversed()
	c.impact = -c.impact
}

// Reversed returns a reversed copy.
func (c PerigeeCircle) Reversed() PerigeeCircle {
	c.Reverse()
	return c
}

// ConformalTransform maps the trajectory through x -> x/|x|^2. Curvature
// and impact swap roles and the orientation flips.
func (c *PerigeeCircle) ConformalTransform() {
	denominator := 2 + c.curvature*c.impact
	c.curvature, c.impact = c.impact*denominator, c.curvature/denominator
	c.Reverse()
}

// ConformalTransformed returns a transformed copy.
func (c PerigeeCircle) ConformalTransformed() PerigeeCircle {
	c.ConformalTransform()
	return c
}

// moveTerms holds the intermediate quantities shared by PassiveMoveBy and
// its Jacobian.
type moveTerms struct {
	par, orth float64 // components of the shift along phi0Vec and its orthogonal
	fast      float64 // FastDistance at the new origin
	a, b      float64 // new direction = a*phi0Vec + b*phi0Vec.Orthogonal()
	u         float64 // |(a, b)| = sqrt(1 + 2 curvature fast)
}

func (c PerigeeCircle) moveTerms(by Vector2D) moveTerms {
	par := c.phi0Vec.Dot(by)
	orth := c.phi0Vec.Cross(by)
	fast := c.FastDistance(by)
	a := 1 + c.curvature*c.impact - c.curvature*orth
	b := c.curvature * par
	return moveTerms{
		par:  par,
		orth: orth,
		fast: fast,
		a:    a,
		b:    b,
		u:    math.Hypot(a, b),
	}
}

// PassiveMoveBy re-expresses the same trajectory relative to the origin
// moved to by. The new direction equals phi0 + curvature * ArcLengthTo(by).
func (c *PerigeeCircle) PassiveMoveBy(by Vector2D) {
	t := c.moveTerms(by)
	c.impact = stableDistance(t.fast, c.curvature)
	c.phi0 = NormalizeAngle(c.phi0 + math.Atan2(t.b, t.a))
	c.phi0Vec = PhiVec(c.phi0)
}

// PassiveMovedBy returns a moved copy.
func (c PerigeeCircle) PassiveMovedBy(by Vector2D) PerigeeCircle {
	c.PassiveMoveBy(by)
	return c
}

// PassiveMoveByJacobian is d(new parameters)/d(old parameters) for
// PassiveMoveBy(by), in the order curvature, phi0, impact.
func (c PerigeeCircle) PassiveMoveByJacobian(by Vector2D) *mat.Dense {
	t := c.moveTerms(by)
	k := c.curvature
	i := c.impact
	u2 := t.u * t.u
	newImpact := stableDistance(t.fast, k)

	jac := mat.NewDense(PerigeeDim, PerigeeDim, nil)
	jac.Set(IndexCurvature, IndexCurvature, 1)

	jac.Set(IndexPhi0, IndexCurvature, (t.a*t.par-t.b*(i-t.orth))/u2)
	jac.Set(IndexPhi0, IndexPhi0, 1+k*(t.a*t.orth-t.b*t.par)/u2)
	jac.Set(IndexPhi0, IndexImpact, -t.b*k/u2)

	dFastDCurvature := i*i/2 - t.orth*i + by.NormSquared()/2
	jac.Set(IndexImpact, IndexCurvature, (dFastDCurvature-newImpact*newImpact/2)/t.u)
	jac.Set(IndexImpact, IndexPhi0, t.par*(1+k*i)/t.u)
	jac.Set(IndexImpact, IndexImpact, t.a/t.u)
	return jac
}

// DistanceGradient is d Distance(point) / d(curvature, phi0, impact).
func (c PerigeeCircle) DistanceGradient(point Vector2D) [PerigeeDim]float64 {
	jac := c.PassiveMoveByJacobian(point)
	return [PerigeeDim]float64{
		jac.At(IndexImpact, IndexCurvature),
		jac.At(IndexImpact, IndexPhi0),
		jac.At(IndexImpact, IndexImpact),
	}
}

func (c PerigeeCircle) String() string {
	return fmt.Sprintf("PerigeeCircle(curvature=%g, phi0=%g, impact=%g)", c.curvature, c.phi0, c.impact)
}
