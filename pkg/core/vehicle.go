// pkg/core/vehicle.go
package core

import "github.com/go-gl/mathgl/mgl64"

// Default kinematic values applied by NewVehicle and Reset.
const (
	DefaultMass                 = 1.0
	DefaultRadius               = 0.5
	DefaultMaximumSteeringForce = 0.1
	DefaultMaximumVelocity      = 1.0
)

// Vehicle is the per-agent kinematic record read by the steering behaviours.
// Behaviours never modify it; an integrator owned by the caller does.
// Vehicles are compared by pointer when a behaviour needs to skip itself in a
// neighbor list.
type Vehicle struct {
	LocalSpace

	Mass                   float64
	BoundingSphereRadius   float64 // used for avoidance and separation
	VisibilitySphereRadius float64
	Velocity               float64 // signed speed along Forward
	MaximumVelocity        float64
	MaximumSteeringForce   float64

	// Maintained by the integrator between ticks.
	LastForward          mgl64.Vec3
	LastPosition         mgl64.Vec3
	SmoothedPosition     mgl64.Vec3
	Curvature            float64
	SmoothedCurvature    float64
	SmoothedAcceleration mgl64.Vec3
}

// NewVehicle returns a vehicle with reset kinematics at the origin heading +Z.
func NewVehicle() *Vehicle {
	v := &Vehicle{}
	v.Reset()
	return v
}

// NewVehicleWithBasis returns a vehicle with default kinematics and the given basis.
func NewVehicleWithBasis(side, up, forward, position mgl64.Vec3) *Vehicle {
	v := NewVehicle()
	v.LocalSpace = NewLocalSpace(side, up, forward, position)
	return v
}

// NewVehicleFromUpForward returns a vehicle whose Side is derived from up and forward.
func NewVehicleFromUpForward(up, forward, position mgl64.Vec3) *Vehicle {
	v := NewVehicle()
	v.LocalSpace = NewLocalSpaceFromUpForward(up, forward, position)
	return v
}

// Reset restores default mass, radii, limits and a zero velocity, and resets
// the local space.
func (v *Vehicle) Reset() {
	v.Mass = DefaultMass
	v.Velocity = 0
	v.BoundingSphereRadius = DefaultRadius
	v.VisibilitySphereRadius = DefaultRadius
	v.MaximumSteeringForce = DefaultMaximumSteeringForce
	v.MaximumVelocity = DefaultMaximumVelocity
	v.ResetLocalSpace()

	v.LastForward = v.Forward
	v.LastPosition = v.Position
	v.SmoothedPosition = v.Position
	v.Curvature = 0
	v.SmoothedCurvature = 0
	v.SmoothedAcceleration = mgl64.Vec3{}
}

// TrueVelocity is Forward scaled by the scalar speed.
func (v *Vehicle) TrueVelocity() mgl64.Vec3 {
	return v.Forward.Mul(v.Velocity)
}

// PredictFuturePosition extrapolates the position at constant heading and speed.
func (v *Vehicle) PredictFuturePosition(predictionTime float64) mgl64.Vec3 {
	return v.Position.Add(v.TrueVelocity().Mul(predictionTime))
}

// Snapshot returns a copy safe to read while the original is integrated.
func (v *Vehicle) Snapshot() *Vehicle {
	c := *v
	return &c
}
