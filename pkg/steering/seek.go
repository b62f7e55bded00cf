package steering

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/vecmath"
)

// WanderRate scales elapsed time into the random-walk step size used by Wander.
const WanderRate = 12.0

// WanderState holds the two random-walk scalars a wandering vehicle carries
// between ticks. Both stay within [-1, 1].
type WanderState struct {
	Side float64
	Up   float64
}

// Seek steers toward target, using the raw offset as the desired velocity.
func Seek(v *core.Vehicle, target mgl64.Vec3) mgl64.Vec3 {
	desiredVelocity := target.Sub(v.Position)
	return desiredVelocity.Sub(v.TrueVelocity())
}

// AlternateSeek is Seek with the desired velocity truncated to MaximumVelocity.
func AlternateSeek(v *core.Vehicle, target mgl64.Vec3) mgl64.Vec3 {
	desiredVelocity := vecmath.TruncateLength(target.Sub(v.Position), v.MaximumVelocity)
	return desiredVelocity.Sub(v.TrueVelocity())
}

// Flee steers away from target.
func Flee(v *core.Vehicle, target mgl64.Vec3) mgl64.Vec3 {
	desiredVelocity := v.Position.Sub(target)
	return desiredVelocity.Sub(v.TrueVelocity())
}

// AlternateFlee is Flee with the desired velocity truncated to MaximumVelocity.
func AlternateFlee(v *core.Vehicle, target mgl64.Vec3) mgl64.Vec3 {
	desiredVelocity := vecmath.TruncateLength(v.Position.Sub(target), v.MaximumVelocity)
	return desiredVelocity.Sub(v.TrueVelocity())
}

// Wander advances both random walks by one step of WanderRate*elapsedTime and
// returns the purely lateral force Side*side + Up*up with the advanced state.
// The caller stores the returned state for the next tick.
func Wander(v *core.Vehicle, elapsedTime float64, state WanderState, rnd vecmath.Rand) (mgl64.Vec3, WanderState) {
	speed := WanderRate * elapsedTime
	next := WanderState{
		Side: vecmath.ScalarRandomWalk(state.Side, speed, -1, +1, rnd),
		Up:   vecmath.ScalarRandomWalk(state.Up, speed, -1, +1, rnd),
	}
	return v.Side.Mul(next.Side).Add(v.Up.Mul(next.Up)), next
}

// TargetSpeed accelerates or brakes along Forward toward targetSpeed, limited
// by MaximumSteeringForce.
func TargetSpeed(v *core.Vehicle, targetSpeed float64) mgl64.Vec3 {
	mf := v.MaximumSteeringForce
	speedError := targetSpeed - v.Velocity
	return v.Forward.Mul(vecmath.Clip(speedError, -mf, +mf))
}
