package geometry

import (
	"errors"
	"math"
)

var (
	// ErrDegenerate marks a construction that collapsed (zero vector,
	// coincident or nested inputs).
	ErrDegenerate = errors.New("geometry: degenerate input")
	// ErrUndefined marks a result with non-finite parameters.
	ErrUndefined = errors.New("geometry: undefined result")
	// ErrNoCommonTangent is returned when two circles have no tangent line
	// touching both with the requested orientation.
	ErrNoCommonTangent = errors.New("geometry: no common tangent")
	// ErrSingular is returned when a precision matrix cannot be inverted.
	ErrSingular = errors.New("geometry: singular matrix")
)

// Validity classifies a geometric value.
type Validity int

const (
	Valid Validity = iota
	Degenerate
	Undefined
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case Degenerate:
		return "degenerate"
	default:
		return "undefined"
	}
}

// Err maps a validity to its sentinel error, nil when valid.
func (v Validity) Err() error {
	switch v {
	case Valid:
		return nil
	case Degenerate:
		return ErrDegenerate
	default:
		return ErrUndefined
	}
}

func isFinite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func nan() float64 { return math.NaN() }
