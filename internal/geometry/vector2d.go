package geometry

import (
	"fmt"
	"math"
)

// Vector2D is a point or direction in the transverse plane.
type Vector2D struct {
	X float64
	Y float64
}

// NewVector2D builds a vector from its coordinates.
func NewVector2D(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// PhiVec returns the unit vector with polar angle phi.
func PhiVec(phi float64) Vector2D {
	return Vector2D{X: math.Cos(phi), Y: math.Sin(phi)}
}

// Compose builds parallel*dir + orthogonal*dir.Orthogonal().
func Compose(dir Vector2D, parallel, orthogonal float64) Vector2D {
	return Vector2D{
		X: dir.X*parallel - dir.Y*orthogonal,
		Y: dir.Y*parallel + dir.X*orthogonal,
	}
}

// Average returns the midpoint of a and b.
func Average(a, b Vector2D) Vector2D {
	return Vector2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func (v Vector2D) Add(o Vector2D) Vector2D { return Vector2D{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vector2D) Sub(o Vector2D) Vector2D { return Vector2D{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vector2D) Scale(f float64) Vector2D {
	return Vector2D{X: v.X * f, Y: v.Y * f}
}
func (v Vector2D) Divide(d float64) Vector2D {
	return Vector2D{X: v.X / d, Y: v.Y / d}
}

// Dot is the scalar product.
func (v Vector2D) Dot(o Vector2D) float64 { return v.X*o.X + v.Y*o.Y }

// Cross is the z component of the 3D cross product of v and o.
func (v Vector2D) Cross(o Vector2D) float64 { return v.X*o.Y - v.Y*o.X }

func (v Vector2D) NormSquared() float64 { return v.X*v.X + v.Y*v.Y }
func (v Vector2D) Norm() float64        { return math.Hypot(v.X, v.Y) }

// Unit returns v scaled to length one. The zero vector yields NaN
// coordinates; check with HasNaN or use TryUnit.
func (v Vector2D) Unit() Vector2D {
	n := v.Norm()
	if n == 0 {
		return Vector2D{X: math.NaN(), Y: math.NaN()}
	}
	return v.Divide(n)
}

// TryUnit is Unit with an explicit error for the zero or non-finite vector.
func (v Vector2D) TryUnit() (Vector2D, error) {
	u := v.Unit()
	if u.HasNaN() {
		return u, fmt.Errorf("normalise %v: %w", v, ErrDegenerate)
	}
	return u, nil
}

// Orthogonal rotates v by +90 degrees.
func (v Vector2D) Orthogonal() Vector2D { return Vector2D{X: -v.Y, Y: v.X} }

// OrthogonalTo rotates v by 90 degrees in the given sense.
func (v Vector2D) OrthogonalTo(rot ERotation) Vector2D {
	if rot == Clockwise {
		return Vector2D{X: v.Y, Y: -v.X}
	}
	return v.Orthogonal()
}

// Reversed points the other way.
func (v Vector2D) Reversed() Vector2D { return Vector2D{X: -v.X, Y: -v.Y} }

// PassiveRotatedBy expresses v in the frame whose x axis is the unit
// vector dir.
func (v Vector2D) PassiveRotatedBy(dir Vector2D) Vector2D {
	return Vector2D{
		X: v.X*dir.X + v.Y*dir.Y,
		Y: -v.X*dir.Y + v.Y*dir.X,
	}
}

// RotatedBy is the inverse of PassiveRotatedBy: it turns v by the angle
// of the unit vector dir.
func (v Vector2D) RotatedBy(dir Vector2D) Vector2D {
	return Vector2D{
		X: v.X*dir.X - v.Y*dir.Y,
		Y: v.X*dir.Y + v.Y*dir.X,
	}
}

// Phi is the polar angle in (-pi, pi].
func (v Vector2D) Phi() float64 { return math.Atan2(v.Y, v.X) }

func (v Vector2D) Distance(o Vector2D) float64 { return v.Sub(o).Norm() }

// ParallelComp is the component of o along v, scaled by |v|.
func (v Vector2D) ParallelComp(o Vector2D) float64 { return v.Dot(o) / v.Norm() }

// OrthogonalComp is the component of o along v.Orthogonal(), scaled by |v|.
func (v Vector2D) OrthogonalComp(o Vector2D) float64 { return v.Cross(o) / v.Norm() }

func (v Vector2D) IsNull() bool { return v.X == 0 && v.Y == 0 }

func (v Vector2D) HasNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0)
}

func (v Vector2D) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}
