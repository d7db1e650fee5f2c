package geometry

import (
	"fmt"
	"math"
)

// ParameterLine2D is the straight line Support + t * Tangential. The
// tangential vector need not be normalised; its length sets the scale of
// the parameter t.
type ParameterLine2D struct {
	Support    Vector2D
	Tangential Vector2D
}

// LineFromPoints returns the line through from and to with At(0) == from
// and At(1) == to.
func LineFromPoints(from, to Vector2D) ParameterLine2D {
	return ParameterLine2D{Support: from, Tangential: to.Sub(from)}
}

// TouchingCircles returns the line touching the circle of signed radius
// fromSignedRadius around fromCenter and then the circle of signed radius
// toSignedRadius around toCenter. A positive radius puts the centre on the
// right of the line. Circles that admit no such tangent yield
// ErrNoCommonTangent and a line with NaN coordinates.
func TouchingCircles(fromCenter Vector2D, fromSignedRadius float64, toCenter Vector2D, toSignedRadius float64) (ParameterLine2D, error) {
	connecting := toCenter.Sub(fromCenter)
	norm := connecting.Norm()
	connecting = connecting.Divide(norm)

	kappa := (fromSignedRadius - toSignedRadius) / norm
	cokappa := math.Sqrt(1 - kappa*kappa)

	fromPos := fromCenter.Add(Compose(connecting, kappa*fromSignedRadius, cokappa*fromSignedRadius))
	toPos := toCenter.Add(Compose(connecting, kappa*toSignedRadius, cokappa*toSignedRadius))
	line := LineFromPoints(fromPos, toPos)
	if line.Support.HasNaN() || line.Tangential.HasNaN() || line.Tangential.IsNull() {
		return line, fmt.Errorf("touching circles at %v and %v: %w", fromCenter, toCenter, ErrNoCommonTangent)
	}
	return line, nil
}

// At evaluates the line at parameter t.
func (l ParameterLine2D) At(t float64) Vector2D {
	return l.Support.Add(l.Tangential.Scale(t))
}

// Direction is the unit tangential.
func (l ParameterLine2D) Direction() Vector2D { return l.Tangential.Unit() }

// Normal is the unit vector pointing to the right of the line.
func (l ParameterLine2D) Normal() Vector2D {
	return l.Tangential.OrthogonalTo(Clockwise).Unit()
}

// Distance is the signed distance of point, positive on the right.
func (l ParameterLine2D) Distance(point Vector2D) float64 {
	return -l.Tangential.OrthogonalComp(point.Sub(l.Support))
}

// LengthOnCurve is the signed length from the support to the foot point of
// point.
func (l ParameterLine2D) LengthOnCurve(point Vector2D) float64 {
	return l.Tangential.ParallelComp(point.Sub(l.Support))
}

// Closest is the foot point of point on the line.
func (l ParameterLine2D) Closest(point Vector2D) Vector2D {
	return l.Support.Add(l.Direction().Scale(l.LengthOnCurve(point)))
}

// PassiveMoveBy moves the coordinate origin to by.
func (l *ParameterLine2D) PassiveMoveBy(by Vector2D) {
	l.Support = l.Support.Sub(by)
}

// ToPerigeeCircle converts to the zero curvature perigee form.
func (l ParameterLine2D) ToPerigeeCircle() PerigeeCircle {
	return NewPerigeeCircleFromVec(0, l.Tangential, l.Distance(Vector2D{}))
}
