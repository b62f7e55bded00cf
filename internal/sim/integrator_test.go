package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/steerlab/steering/pkg/core"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d of %v", i, got)
	}
}

func TestApplySteeringForce_ZeroElapsed(t *testing.T) {
	v := core.NewVehicle()
	before := *v

	ApplySteeringForce(v, mgl64.Vec3{0, 0, 1}, 0)

	assert.Equal(t, before, *v)
}

func TestApplySteeringForce_FromRest(t *testing.T) {
	v := core.NewVehicle()

	// Force is clipped to 0.1 and the acceleration blended in at rate 0.4.
	ApplySteeringForce(v, mgl64.Vec3{0, 0, 5}, 1)

	assert.InDelta(t, 0.04, v.Velocity, 1e-9)
	assertVec(t, mgl64.Vec3{0, 0, 0.04}, v.Position)
	assertVec(t, mgl64.Vec3{0, 0, 0.04}, v.SmoothedAcceleration)
	assertVec(t, mgl64.Vec3{0, 0, 1}, v.Forward)
}

func TestApplySteeringForce_ZeroMassUsesDefault(t *testing.T) {
	a := core.NewVehicle()
	b := core.NewVehicle()
	b.Mass = 0

	ApplySteeringForce(a, mgl64.Vec3{0, 0, 1}, 0.5)
	ApplySteeringForce(b, mgl64.Vec3{0, 0, 1}, 0.5)

	assertVec(t, a.Position, b.Position)
}

func TestApplySteeringForce_SpeedLimited(t *testing.T) {
	v := core.NewVehicle()
	v.Velocity = v.MaximumVelocity

	for range 10 {
		ApplySteeringForce(v, mgl64.Vec3{0, 0, 1}, 0.1)
	}

	assert.InDelta(t, v.MaximumVelocity, v.Velocity, 1e-9)
}

func TestApplySteeringForce_TurnsTowardVelocity(t *testing.T) {
	v := core.NewVehicle()

	ApplySteeringForce(v, mgl64.Vec3{1, 0, 0}, 1)

	assertVec(t, mgl64.Vec3{1, 0, 0}, v.Forward)
	assert.InDelta(t, 0, v.Forward.Dot(v.Side), 1e-9)
	assert.InDelta(t, 0, v.Forward.Dot(v.Up), 1e-9)
	assert.InDelta(t, 1, v.Side.Len(), 1e-9)
}

func TestApplySteeringForce_ZeroForceKeepsBasis(t *testing.T) {
	v := core.NewVehicle()

	ApplySteeringForce(v, mgl64.Vec3{}, 0.1)

	assert.Equal(t, 0.0, v.Velocity)
	assertVec(t, mgl64.Vec3{0, 0, 1}, v.Forward)
	assertVec(t, mgl64.Vec3{}, v.Position)
}

func TestApplySteeringForce_CurvatureOnTurn(t *testing.T) {
	v := core.NewVehicle()
	v.Velocity = 1
	v.MaximumSteeringForce = 10

	ApplySteeringForce(v, mgl64.Vec3{}, 0.1)
	assert.Equal(t, 0.0, v.Curvature)

	ApplySteeringForce(v, mgl64.Vec3{10, 0, 0}, 0.1)
	assert.NotZero(t, v.Curvature)
	assert.NotZero(t, v.SmoothedCurvature)
	assertVec(t, v.Position, v.LastPosition)
	assertVec(t, v.Forward, v.LastForward)
}

func TestBlendScalar(t *testing.T) {
	assert.InDelta(t, 5.0, blendScalar(0.5, 10, 0), 1e-9)
	assert.InDelta(t, 10.0, blendScalar(2, 10, 0), 1e-9)
	assert.InDelta(t, 0.0, blendScalar(-1, 10, 0), 1e-9)
}
