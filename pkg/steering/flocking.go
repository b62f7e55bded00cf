package steering

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/vecmath"
)

// IsInNeighborhood reports whether other influences v: always inside
// minDistance, never beyond maxDistance, and in between only when the
// direction to other is within cosMaxAngle of Forward. A vehicle is never
// its own neighbor.
func IsInNeighborhood(v, other *core.Vehicle, minDistance, maxDistance, cosMaxAngle float64) bool {
	if other == v {
		return false
	}
	offset := other.Position.Sub(v.Position)
	distanceSquared := offset.Dot(offset)

	if distanceSquared < minDistance*minDistance {
		return true
	}
	if distanceSquared > maxDistance*maxDistance {
		return false
	}
	forwardness := v.Forward.Dot(vecmath.SafeNormalize(offset))
	return forwardness > cosMaxAngle
}

// neighborhood calls fn for every flock member within the boid neighborhood
// of v and returns how many there were.
func neighborhood(v *core.Vehicle, maxDistance, cosMaxAngle float64, flock []*core.Vehicle, fn func(other *core.Vehicle)) int {
	n := 0
	for _, other := range flock {
		if IsInNeighborhood(v, other, v.BoundingSphereRadius*3, maxDistance, cosMaxAngle) {
			fn(other)
			n++
		}
	}
	return n
}

// Separation steers away from neighbors with 1/d falloff.
func Separation(v *core.Vehicle, maxDistance, cosMaxAngle float64, flock []*core.Vehicle) mgl64.Vec3 {
	steering := mgl64.Vec3{}
	n := neighborhood(v, maxDistance, cosMaxAngle, flock, func(other *core.Vehicle) {
		offset := other.Position.Sub(v.Position)
		distanceSquared := offset.Dot(offset)
		if distanceSquared == 0 {
			return
		}
		steering = steering.Add(offset.Mul(-1 / distanceSquared))
	})
	if n == 0 {
		return mgl64.Vec3{}
	}
	return vecmath.SafeNormalize(steering.Mul(1 / float64(n)))
}

// Alignment steers toward the neighbors' mean heading.
func Alignment(v *core.Vehicle, maxDistance, cosMaxAngle float64, flock []*core.Vehicle) mgl64.Vec3 {
	steering := mgl64.Vec3{}
	n := neighborhood(v, maxDistance, cosMaxAngle, flock, func(other *core.Vehicle) {
		steering = steering.Add(other.Forward)
	})
	if n == 0 {
		return mgl64.Vec3{}
	}
	return vecmath.SafeNormalize(steering.Mul(1 / float64(n)).Sub(v.Forward))
}

// Cohesion steers toward the neighbors' centroid.
func Cohesion(v *core.Vehicle, maxDistance, cosMaxAngle float64, flock []*core.Vehicle) mgl64.Vec3 {
	steering := mgl64.Vec3{}
	n := neighborhood(v, maxDistance, cosMaxAngle, flock, func(other *core.Vehicle) {
		steering = steering.Add(other.Position)
	})
	if n == 0 {
		return mgl64.Vec3{}
	}
	return vecmath.SafeNormalize(steering.Mul(1 / float64(n)).Sub(v.Position))
}
