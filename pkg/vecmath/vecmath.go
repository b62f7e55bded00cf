// Package vecmath holds the scalar and vector helpers shared by the steering kernel.
// Vectors are mgl64.Vec3; this package only adds what mgl64 does not provide.
package vecmath

import (
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultCosThreshold is the cosine of roughly 45 degrees, used to split
// directions into ahead / beside / behind buckets.
const DefaultCosThreshold = 0.707

// Rand is the random source consumed by ScalarRandomWalk.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Zero is the neutral steering result.
var Zero = mgl64.Vec3{}

// Clip constrains x to [min, max].
func Clip(x, min, max float64) float64 {
	return mgl64.Clamp(x, min, max)
}

// ScalarRandomWalk takes one step of size at most walkSpeed from initial,
// staying inside [min, max].
func ScalarRandomWalk(initial, walkSpeed, min, max float64, rnd Rand) float64 {
	next := initial + (rnd.Float64()*2-1)*walkSpeed
	return Clip(next, min, max)
}

// IntervalComparison returns -1 when x is below lower, +1 when above upper,
// and 0 otherwise.
func IntervalComparison(x, lower, upper float64) int {
	if x < lower {
		return -1
	}
	if x > upper {
		return +1
	}
	return 0
}

// Interpolate returns a + (b-a)*alpha.
func Interpolate(alpha float64, a, b mgl64.Vec3) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(alpha))
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// IsZero reports whether v is exactly the zero vector.
func IsZero(v mgl64.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// SafeNormalize returns v scaled to unit length, or the zero vector when v
// has no length.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return Zero
	}
	return v.Mul(1 / l)
}

// TruncateLength scales v down to maxLength when it is longer.
func TruncateLength(v mgl64.Vec3, maxLength float64) mgl64.Vec3 {
	l := v.Len()
	if l <= maxLength || l == 0 {
		return v
	}
	return v.Mul(maxLength / l)
}

// ParallelComponent is the part of v along unitBasis.
func ParallelComponent(v, unitBasis mgl64.Vec3) mgl64.Vec3 {
	return unitBasis.Mul(v.Dot(unitBasis))
}

// PerpendicularComponent is the part of v orthogonal to unitBasis.
func PerpendicularComponent(v, unitBasis mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(ParallelComponent(v, unitBasis))
}
