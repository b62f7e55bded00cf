package steering

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/vecmath"
)

// forwardness is the cosine between Forward and the direction to target,
// or 0 when target is at the vehicle's position.
func forwardness(v *core.Vehicle, target mgl64.Vec3) float64 {
	return v.Forward.Dot(vecmath.SafeNormalize(target.Sub(v.Position)))
}

// IsAhead reports whether target lies within the forward cone of half-angle
// acos(cosThreshold).
func IsAhead(v *core.Vehicle, target mgl64.Vec3, cosThreshold float64) bool {
	return forwardness(v, target) > cosThreshold
}

// IsBeside reports whether target lies outside both the forward and backward
// cones of half-angle acos(cosThreshold).
func IsBeside(v *core.Vehicle, target mgl64.Vec3, cosThreshold float64) bool {
	dp := forwardness(v, target)
	return dp < cosThreshold && dp > -cosThreshold
}

// IsBehind reports whether the cosine to target is below cosThreshold.
// Pass a negative threshold to test the backward cone.
func IsBehind(v *core.Vehicle, target mgl64.Vec3, cosThreshold float64) bool {
	return forwardness(v, target) < cosThreshold
}

// IsAheadDefault is IsAhead with a threshold of about 45 degrees.
func IsAheadDefault(v *core.Vehicle, target mgl64.Vec3) bool {
	return IsAhead(v, target, vecmath.DefaultCosThreshold)
}

// IsBesideDefault is IsBeside with a threshold of about 45 degrees.
func IsBesideDefault(v *core.Vehicle, target mgl64.Vec3) bool {
	return IsBeside(v, target, vecmath.DefaultCosThreshold)
}

// IsBehindDefault tests the backward cone of about 45 degrees.
func IsBehindDefault(v *core.Vehicle, target mgl64.Vec3) bool {
	return IsBehind(v, target, -vecmath.DefaultCosThreshold)
}
