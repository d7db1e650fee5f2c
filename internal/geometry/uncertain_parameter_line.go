package geometry

import (
	"gonum.org/v1/gonum/mat"
)

// Line parameter indices for the 2x2 covariance.
const (
	LineIndexPhi0   = 0
	LineIndexImpact = 1

	LineDim = 2
)

// UncertainParameterLine2D is a fitted line with the covariance of its
// direction angle and the signed distance of the coordinate origin.
type UncertainParameterLine2D struct {
	Line       ParameterLine2D
	Covariance *mat.SymDense
	Chi2       float64
	NDF        int
}

// Validity checks the line and its covariance.
func (l UncertainParameterLine2D) Validity() Validity {
	if l.Line.Support.HasNaN() || l.Line.Tangential.HasNaN() || !isFinite(l.Chi2) {
		return Undefined
	}
	if l.Line.Tangential.IsNull() {
		return Degenerate
	}
	if l.Covariance == nil || symHasNaN(l.Covariance) {
		return Undefined
	}
	return Valid
}

func (l UncertainParameterLine2D) Err() error { return l.Validity().Err() }

func (l UncertainParameterLine2D) IsInvalid() bool { return l.Validity() != Valid }

// Phi0 is the direction angle.
func (l UncertainParameterLine2D) Phi0() float64 { return l.Line.Tangential.Phi() }

// Impact is the signed distance of the coordinate origin.
func (l UncertainParameterLine2D) Impact() float64 { return l.Line.Distance(Vector2D{}) }

// PassiveMoveBy moves the coordinate origin to by and transports the
// covariance to the new reference point.
func (l *UncertainParameterLine2D) PassiveMoveBy(by Vector2D) {
	par := l.Line.Direction().Dot(by)
	jac := mat.NewDense(LineDim, LineDim, []float64{
		1, 0,
		par, 1,
	})
	l.Line.PassiveMoveBy(by)
	l.Covariance = Transport(jac, l.Covariance)
}

// PassiveMovedBy returns a moved copy.
func (l UncertainParameterLine2D) PassiveMovedBy(by Vector2D) UncertainParameterLine2D {
	l.PassiveMoveBy(by)
	return l
}

// ToUncertainPerigeeCircle embeds the line as a zero curvature circle. The
// curvature row of the covariance is zero.
func (l UncertainParameterLine2D) ToUncertainPerigeeCircle() UncertainPerigeeCircle {
	cov := mat.NewSymDense(PerigeeDim, nil)
	cov.SetSym(IndexPhi0, IndexPhi0, l.Covariance.At(LineIndexPhi0, LineIndexPhi0))
	cov.SetSym(IndexPhi0, IndexImpact, l.Covariance.At(LineIndexPhi0, LineIndexImpact))
	cov.SetSym(IndexImpact, IndexImpact, l.Covariance.At(LineIndexImpact, LineIndexImpact))
	return NewUncertainPerigeeCircle(l.Line.ToPerigeeCircle(), cov, l.Chi2, l.NDF)
}
