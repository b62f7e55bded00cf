package obstacle

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/vecmath"
)

// Sphere is a spherical obstacle.
type Sphere struct {
	core.LocalSpace
	Radius float64
}

var _ Obstacle = (*Sphere)(nil)

// NewSphere places a sphere at position with an identity basis.
func NewSphere(radius float64, position mgl64.Vec3) *Sphere {
	s := &Sphere{Radius: radius}
	s.ResetLocalSpace()
	s.Position = position
	return s
}

// Shape implements Obstacle.
func (s *Sphere) Shape() Shape { return ShapeSphere }

// Center implements Obstacle.
func (s *Sphere) Center() mgl64.Vec3 { return s.Position }

// CollisionAvoidance tests the sphere against a cylinder of likely future
// positions: radius Radius+BoundingSphereRadius, extending along Forward
// minTimeToCollision*Velocity past the vehicle plus the sphere radius.
// Inside the cylinder it returns the negated lateral offset of the center.
// A center on the forward axis has no lateral offset; the vehicle then
// veers along Side by the cylinder radius.
func (s *Sphere) CollisionAvoidance(v *core.Vehicle, minTimeToCollision float64) mgl64.Vec3 {
	minDistanceToCenter := minTimeToCollision*v.Velocity + s.Radius
	totalRadius := s.Radius + v.BoundingSphereRadius

	forwardComponent, offForward := lateralOffset(v, s.Position)

	inCylinder := offForward.Len() < totalRadius
	nearby := forwardComponent < minDistanceToCenter
	inFront := forwardComponent > 0

	if inCylinder && nearby && inFront {
		if vecmath.IsZero(offForward) {
			return v.Side.Mul(totalRadius)
		}
		return offForward.Mul(-1)
	}
	return mgl64.Vec3{}
}

// HasCollided applies the lateral-offset test alone and returns the lateral
// offset when it passes.
func (s *Sphere) HasCollided(v *core.Vehicle) mgl64.Vec3 {
	totalRadius := s.Radius + v.BoundingSphereRadius
	_, offForward := lateralOffset(v, s.Position)

	if offForward.Len() < totalRadius {
		return offForward
	}
	return mgl64.Vec3{}
}
