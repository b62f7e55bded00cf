// Package sim is the external collaborator of the steering kernel: it owns
// the vehicles, asks the behaviours for forces each tick and integrates them.
package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/vecmath"
)

// blendIntoAccumulator moves smoothed toward newValue by rate, clipped to [0,1].
func blendIntoAccumulator(rate float64, newValue, smoothed mgl64.Vec3) mgl64.Vec3 {
	return vecmath.Interpolate(vecmath.Clip(rate, 0, 1), smoothed, newValue)
}

func blendScalar(rate, newValue, smoothed float64) float64 {
	alpha := vecmath.Clip(rate, 0, 1)
	return smoothed + (newValue-smoothed)*alpha
}

// ApplySteeringForce advances v by elapsed seconds under force.
//
// The force is clipped to MaximumSteeringForce and divided by Mass. The
// resulting acceleration is smoothed before it is applied, the new velocity
// is truncated to MaximumVelocity, and the basis is realigned with the new
// velocity when the vehicle moves. Curvature and the smoothed position are
// updated last. A zero elapsed time leaves v untouched.
func ApplySteeringForce(v *core.Vehicle, force mgl64.Vec3, elapsed float64) {
	if elapsed <= 0 {
		return
	}

	clipped := vecmath.TruncateLength(force, v.MaximumSteeringForce)
	mass := v.Mass
	if mass <= 0 {
		mass = core.DefaultMass
	}
	acceleration := clipped.Mul(1 / mass)

	smoothRate := vecmath.Clip(9*elapsed, 0.15, 0.4)
	v.SmoothedAcceleration = blendIntoAccumulator(smoothRate, acceleration, v.SmoothedAcceleration)

	newVelocity := v.TrueVelocity().Add(v.SmoothedAcceleration.Mul(elapsed))
	newVelocity = vecmath.TruncateLength(newVelocity, v.MaximumVelocity)

	speed := newVelocity.Len()
	v.Velocity = speed
	v.Position = v.Position.Add(newVelocity.Mul(elapsed))

	if speed > 0 {
		v.RegenerateOrthonormalBasisUF(newVelocity.Mul(1 / speed))
	}

	measurePathCurvature(v, elapsed)
	v.SmoothedPosition = blendIntoAccumulator(elapsed*0.06, v.Position, v.SmoothedPosition)
}

// measurePathCurvature records the signed curvature of the last step.
// Turning toward Side is negative.
func measurePathCurvature(v *core.Vehicle, elapsed float64) {
	dP := v.LastPosition.Sub(v.Position)
	step := dP.Len()
	if step > 0 {
		dF := v.LastForward.Sub(v.Forward).Mul(1 / step)
		lateral := vecmath.PerpendicularComponent(dF, v.Forward)
		sign := -1.0
		if lateral.Dot(v.Side) < 0 {
			sign = 1.0
		}
		v.Curvature = lateral.Len() * sign
		v.SmoothedCurvature = blendScalar(elapsed*4, v.Curvature, v.SmoothedCurvature)
	}
	v.LastForward = v.Forward
	v.LastPosition = v.Position
}
