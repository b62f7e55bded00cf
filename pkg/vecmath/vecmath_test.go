package vecmath

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestClip(t *testing.T) {
	tests := []struct {
		name     string
		x        float64
		expected float64
	}{
		{"below", -3, -1},
		{"inside", 0.25, 0.25},
		{"above", 7, 1},
		{"lower edge", -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clip(tt.x, -1, 1))
		})
	}
}

func TestIntervalComparison(t *testing.T) {
	assert.Equal(t, -1, IntervalComparison(-0.9, -0.707, 0.707))
	assert.Equal(t, 0, IntervalComparison(0, -0.707, 0.707))
	assert.Equal(t, 0, IntervalComparison(0.707, -0.707, 0.707))
	assert.Equal(t, +1, IntervalComparison(0.8, -0.707, 0.707))
}

func TestScalarRandomWalk(t *testing.T) {
	// Float64 of 1 is a full positive step, 0 a full negative one.
	assert.InDelta(t, 0.5, ScalarRandomWalk(0.3, 0.2, -1, 1, fixedRand(1)), 1e-12)
	assert.InDelta(t, 0.1, ScalarRandomWalk(0.3, 0.2, -1, 1, fixedRand(0)), 1e-12)
	assert.InDelta(t, 0.3, ScalarRandomWalk(0.3, 0.2, -1, 1, fixedRand(0.5)), 1e-12)
	assert.Equal(t, 1.0, ScalarRandomWalk(0.95, 0.5, -1, 1, fixedRand(1)))
	assert.Equal(t, -1.0, ScalarRandomWalk(-0.95, 0.5, -1, 1, fixedRand(0)))
}

func TestInterpolate(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{10, -4, 2}
	assert.Equal(t, a, Interpolate(0, a, b))
	assert.Equal(t, b, Interpolate(1, a, b))
	assert.Equal(t, mgl64.Vec3{5, -2, 1}, Interpolate(0.5, a, b))
}

func TestTruncateLength(t *testing.T) {
	v := mgl64.Vec3{3, 4, 0}
	assert.Equal(t, v, TruncateLength(v, 10))
	assert.True(t, TruncateLength(v, 1).ApproxEqual(mgl64.Vec3{0.6, 0.8, 0}))
	assert.Equal(t, Zero, TruncateLength(Zero, 1))
}

func TestSafeNormalize(t *testing.T) {
	assert.Equal(t, Zero, SafeNormalize(Zero))
	assert.True(t, SafeNormalize(mgl64.Vec3{0, 0, 5}).ApproxEqual(mgl64.Vec3{0, 0, 1}))
}

func TestComponents(t *testing.T) {
	v := mgl64.Vec3{2, 3, 4}
	basis := mgl64.Vec3{0, 0, 1}
	assert.Equal(t, mgl64.Vec3{0, 0, 4}, ParallelComponent(v, basis))
	assert.Equal(t, mgl64.Vec3{2, 3, 0}, PerpendicularComponent(v, basis))
	assert.Equal(t, v, ParallelComponent(v, basis).Add(PerpendicularComponent(v, basis)))
}

func TestDistanceAndIsZero(t *testing.T) {
	assert.Equal(t, 5.0, Distance(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 3, 4}))
	assert.True(t, IsZero(mgl64.Vec3{}))
	assert.False(t, IsZero(mgl64.Vec3{0, 1e-12, 0}))
}
