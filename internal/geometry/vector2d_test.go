package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector2D_Algebra(t *testing.T) {
	t.Parallel()

	a := NewVector2D(3, 4)
	b := NewVector2D(-1, 2)

	assert.Equal(t, NewVector2D(2, 6), a.Add(b))
	assert.Equal(t, NewVector2D(4, 2), a.Sub(b))
	assert.Equal(t, NewVector2D(6, 8), a.Scale(2))
	assert.InDelta(t, 5.0, a.Dot(b), 1e-15)
	assert.InDelta(t, 10.0, a.Cross(b), 1e-15)
	assert.InDelta(t, 5.0, a.Norm(), 1e-15)
	assert.InDelta(t, 25.0, a.NormSquared(), 1e-15)
	assert.InDelta(t, 1.0, a.Unit().Norm(), 1e-15)
}

func TestVector2D_UnitOfZeroIsNaN(t *testing.T) {
	t.Parallel()

	u := Vector2D{}.Unit()
	assert.True(t, math.IsNaN(u.X))
	assert.True(t, math.IsNaN(u.Y))

	_, err := Vector2D{}.TryUnit()
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestVector2D_Orthogonal(t *testing.T) {
	t.Parallel()

	v := NewVector2D(1, 0)
	assert.Equal(t, NewVector2D(0, 1), v.Orthogonal())
	assert.Equal(t, NewVector2D(0, 1), v.OrthogonalTo(CounterClockwise))
	assert.Equal(t, NewVector2D(0, -1), v.OrthogonalTo(Clockwise))
}

func TestVector2D_PassiveRotationRoundTrip(t *testing.T) {
	t.Parallel()

	dir := PhiVec(0.7)
	v := NewVector2D(2.5, -1.25)

	rotated := v.PassiveRotatedBy(dir)
	// The direction itself becomes the x axis.
	x := dir.PassiveRotatedBy(dir)
	assert.InDelta(t, 1.0, x.X, 1e-15)
	assert.InDelta(t, 0.0, x.Y, 1e-15)

	back := rotated.RotatedBy(dir)
	assert.InDelta(t, v.X, back.X, 1e-14)
	assert.InDelta(t, v.Y, back.Y, 1e-14)
	assert.InDelta(t, v.Norm(), rotated.Norm(), 1e-14)
}

func TestCompose(t *testing.T) {
	t.Parallel()

	dir := PhiVec(math.Pi / 2)
	p := Compose(dir, 2, 3)
	// parallel along +y, orthogonal along -x
	assert.InDelta(t, -3.0, p.X, 1e-15)
	assert.InDelta(t, 2.0, p.Y, 1e-15)
}

func TestNormalizeAngle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-5 * math.Pi / 2, -math.Pi / 2},
		{7, 7 - 2*math.Pi},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeAngle(tt.in), 1e-12, "in=%v", tt.in)
	}
	assert.InDelta(t, -math.Pi/2, ReverseAngle(math.Pi/2), 1e-15)
	assert.InDelta(t, math.Pi/2, ReverseAngle(-math.Pi/2), 1e-15)
}

func TestSincAsinc(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, Sinc(0))
	assert.Equal(t, 1.0, Asinc(0))
	for _, x := range []float64{1e-9, 1e-5, 9e-4, 1.1e-3, 0.1, 0.9} {
		assert.InDelta(t, math.Sin(x)/x, Sinc(x), 1e-15, "sinc x=%v", x)
		assert.InDelta(t, math.Asin(x)/x, Asinc(x), 1e-14, "asinc x=%v", x)
		assert.InDelta(t, Asinc(x), Asinc(-x), 0, "asinc is even")
	}
	// Rounding slightly above one must not produce NaN.
	assert.InDelta(t, math.Pi/2, Asinc(1+1e-15), 1e-12)
}
