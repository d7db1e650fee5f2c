package geometry

import (
	"gonum.org/v1/gonum/mat"
)

// UncertainPerigeeCircle is a fitted PerigeeCircle with the covariance of
// its parameters (curvature, phi0, impact) and the fit quality.
type UncertainPerigeeCircle struct {
	PerigeeCircle
	Covariance *mat.SymDense
	Chi2       float64
	NDF        int
}

// NewUncertainPerigeeCircle wraps a circle. A nil covariance is replaced by
// a zero matrix.
func NewUncertainPerigeeCircle(circle PerigeeCircle, cov *mat.SymDense, chi2 float64, ndf int) UncertainPerigeeCircle {
	if cov == nil {
		cov = mat.NewSymDense(PerigeeDim, nil)
	}
	return UncertainPerigeeCircle{PerigeeCircle: circle, Covariance: cov, Chi2: chi2, NDF: ndf}
}

// Chi2PerNDF is NaN without degrees of freedom.
func (c UncertainPerigeeCircle) Chi2PerNDF() float64 {
	if c.NDF <= 0 {
		return nan()
	}
	return c.Chi2 / float64(c.NDF)
}

// Variance returns the diagonal covariance entry for parameter idx.
func (c UncertainPerigeeCircle) Variance(idx int) float64 {
	return c.Covariance.At(idx, idx)
}

// Validity extends the circle check to the covariance.
func (c UncertainPerigeeCircle) Validity() Validity {
	if v := c.PerigeeCircle.Validity(); v != Valid {
		return v
	}
	if c.Covariance == nil || symHasNaN(c.Covariance) {
		return Undefined
	}
	return Valid
}

func (c UncertainPerigeeCircle) Err() error { return c.Validity().Err() }

// PassiveMoveBy moves the reference point and transports the covariance.
func (c *UncertainPerigeeCircle) PassiveMoveBy(by Vector2D) {
	jac := c.PerigeeCircle.PassiveMoveByJacobian(by)
	c.PerigeeCircle.PassiveMoveBy(by)
	c.Covariance = Transport(jac, c.Covariance)
}

// PassiveMovedBy returns a moved copy; the covariance is not shared.
func (c UncertainPerigeeCircle) PassiveMovedBy(by Vector2D) UncertainPerigeeCircle {
	c.PassiveMoveBy(by)
	return c
}

// Reverse flips the direction of travel.
func (c *UncertainPerigeeCircle) Reverse() {
	c.PerigeeCircle.Reverse()
	c.Covariance = Transport(ReversalJacobian(PerigeeDim, IndexPhi0), c.Covariance)
}

// Reversed returns a reversed copy.
func (c UncertainPerigeeCircle) Reversed() UncertainPerigeeCircle {
	c.Reverse()
	return c
}
