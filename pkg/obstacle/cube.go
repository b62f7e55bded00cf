package obstacle

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/steerlab/steering/pkg/core"
)

// Cube is a box obstacle. Its geometry queries are not implemented: both
// always return the zero vector, and Supported reports ErrUnsupportedShape.
// Callers must not rely on cubes for avoidance.
type Cube struct {
	core.LocalSpace
	Width  float64
	Height float64
	Depth  float64
}

var _ Obstacle = (*Cube)(nil)

// NewCube places a cube with equal sides at position.
func NewCube(dimension float64, position mgl64.Vec3) *Cube {
	c := &Cube{Width: dimension, Height: dimension, Depth: dimension}
	c.ResetLocalSpace()
	c.Position = position
	return c
}

// Shape implements Obstacle.
func (c *Cube) Shape() Shape { return ShapeCube }

// Center implements Obstacle.
func (c *Cube) Center() mgl64.Vec3 { return c.Position }

// CollisionAvoidance is unimplemented and returns the zero vector.
func (c *Cube) CollisionAvoidance(v *core.Vehicle, minTimeToCollision float64) mgl64.Vec3 {
	return mgl64.Vec3{}
}

// HasCollided is unimplemented and returns the zero vector.
func (c *Cube) HasCollided(v *core.Vehicle) mgl64.Vec3 {
	return mgl64.Vec3{}
}
