package fitting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrentMinimize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		f     func(float64) float64
		lo    float64
		hi    float64
		wantX float64
	}{
		{"parabola", func(x float64) float64 { return (x - 0.3) * (x - 0.3) }, -1, 1, 0.3},
		{"cosine", func(x float64) float64 { return -math.Cos(x - 0.1) }, -math.Pi / 2, math.Pi / 2, 0.1},
		{"minimum at lower edge", func(x float64) float64 { return x }, 0, 1, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := BrentMinimize(tt.f, tt.lo, tt.hi, DefaultBrentToleranceBits, 200)
			assert.InDelta(t, tt.wantX, res.X, 1e-6)
			assert.InDelta(t, tt.f(tt.wantX), res.F, 1e-6)
			assert.Less(t, res.Iterations, 200)
		})
	}
}

func TestBrentMinimize_RespectsIterationLimit(t *testing.T) {
	t.Parallel()

	calls := 0
	f := func(x float64) float64 {
		calls++
		return (x - 0.3) * (x - 0.3)
	}
	res := BrentMinimize(f, -1, 1, DefaultBrentToleranceBits, 3)
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, 4, calls)
}
