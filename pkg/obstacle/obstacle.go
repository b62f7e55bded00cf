// Package obstacle provides static shapes that vehicles steer around.
package obstacle

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steerlab/steering/pkg/core"
)

// ErrUnsupportedShape marks shapes whose geometry queries are not implemented.
var ErrUnsupportedShape = errors.New("unsupported obstacle shape")

// Shape tags the concrete obstacle variant.
type Shape uint8

const (
	ShapeSphere Shape = iota
	ShapeCube
)

func (s Shape) String() string {
	switch s {
	case ShapeSphere:
		return "sphere"
	case ShapeCube:
		return "cube"
	default:
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
}

// Obstacle is the capability set the avoidance behaviours rely on.
type Obstacle interface {
	Shape() Shape
	Center() mgl64.Vec3
	// CollisionAvoidance returns a lateral steering force when the obstacle
	// lies in the vehicle's path within minTimeToCollision, or the zero vector.
	CollisionAvoidance(v *core.Vehicle, minTimeToCollision float64) mgl64.Vec3
	// HasCollided returns the contact offset, or the zero vector.
	HasCollided(v *core.Vehicle) mgl64.Vec3
}

// Supported returns ErrUnsupportedShape for obstacles whose queries always
// report "no collision".
func Supported(o Obstacle) error {
	switch o.Shape() {
	case ShapeSphere:
		return nil
	case ShapeCube:
		return fmt.Errorf("%w: %s", ErrUnsupportedShape, o.Shape())
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedShape, o.Shape())
	}
}

// lateralOffset splits the vehicle-to-center offset into the distance along
// Forward and the part off the forward axis.
func lateralOffset(v *core.Vehicle, center mgl64.Vec3) (forwardComponent float64, offForward mgl64.Vec3) {
	localOffset := center.Sub(v.Position)
	forwardComponent = localOffset.Dot(v.Forward)
	offForward = localOffset.Sub(v.Forward.Mul(forwardComponent))
	return forwardComponent, offForward
}
