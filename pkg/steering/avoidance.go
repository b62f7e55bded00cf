package steering

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/obstacle"
	"github.com/steerlab/steering/pkg/vecmath"
)

// AvoidObstacle returns the obstacle's avoidance force for v.
func AvoidObstacle(v *core.Vehicle, minTimeToCollision float64, o obstacle.Obstacle) mgl64.Vec3 {
	return o.CollisionAvoidance(v, minTimeToCollision)
}

// AvoidObstacles avoids the nearest obstacle that produces an avoidance force.
// Ties go to the earlier obstacle in the list.
func AvoidObstacles(v *core.Vehicle, minTimeToCollision float64, obstacles []obstacle.Obstacle) mgl64.Vec3 {
	avoidance := mgl64.Vec3{}
	nearest := math.Inf(1)
	for _, o := range obstacles {
		force := o.CollisionAvoidance(v, minTimeToCollision)
		if vecmath.IsZero(force) {
			continue
		}
		if d := vecmath.Distance(o.Center(), v.Position); d < nearest {
			nearest = d
			avoidance = force
		}
	}
	return avoidance
}

// AvoidCloseNeighbors pushes v sideways away from the first neighbor closer
// than minSeparationDistance plus both bounding radii.
func AvoidCloseNeighbors(v *core.Vehicle, minSeparationDistance float64, others []*core.Vehicle) mgl64.Vec3 {
	for _, other := range others {
		if other == v {
			continue
		}
		sumOfRadii := v.BoundingSphereRadius + other.BoundingSphereRadius
		minCenterToCenter := minSeparationDistance + sumOfRadii
		offset := other.Position.Sub(v.Position)

		if offset.Len() < minCenterToCenter {
			return vecmath.PerpendicularComponent(offset.Mul(-1), v.Forward)
		}
	}
	return mgl64.Vec3{}
}

// AvoidNeighbors steers around the most imminent predicted collision with
// another vehicle within minTimeToCollision. Interpenetrating neighbors are
// handled first via AvoidCloseNeighbors.
//
// Head-on threats are avoided relative to where they will be at nearest
// approach, parallel ones relative to where they are now. For crossing paths
// only the slower vehicle steers, passing behind the faster one.
func AvoidNeighbors(v *core.Vehicle, minTimeToCollision float64, others []*core.Vehicle) mgl64.Vec3 {
	if separation := AvoidCloseNeighbors(v, 0, others); !vecmath.IsZero(separation) {
		return separation
	}

	var threat *core.Vehicle
	var threatPositionAtNearest mgl64.Vec3
	minTime := minTimeToCollision
	collisionDangerThreshold := v.BoundingSphereRadius * 2

	for _, other := range others {
		if other == v {
			continue
		}
		time := PredictNearestApproachTime(v, other)
		if time < 0 || time >= minTime {
			continue
		}
		if ComputeNearestApproachPositions(v, other, time) < collisionDangerThreshold {
			minTime = time
			threat = other
			threatPositionAtNearest = other.PredictFuturePosition(time)
		}
	}

	if threat == nil {
		return mgl64.Vec3{}
	}

	steer := 0.0
	parallelness := v.Forward.Dot(threat.Forward)
	switch {
	case parallelness < -vecmath.DefaultCosThreshold:
		sideDot := threatPositionAtNearest.Sub(v.Position).Dot(v.Side)
		steer = awayFrom(sideDot)
	case parallelness > vecmath.DefaultCosThreshold:
		sideDot := threat.Position.Sub(v.Position).Dot(v.Side)
		steer = awayFrom(sideDot)
	default:
		if threat.Velocity <= v.Velocity {
			sideDot := v.Side.Dot(threat.TrueVelocity())
			steer = awayFrom(sideDot)
		}
	}
	return v.Side.Mul(steer)
}

func awayFrom(sideDot float64) float64 {
	if sideDot > 0 {
		return -1
	}
	return 1
}

// PredictNearestApproachTime returns when other comes closest to v assuming
// both keep their heading and speed. A negative time means the nearest
// approach is in the past. Equal velocities never close, so the answer is 0.
func PredictNearestApproachTime(v, other *core.Vehicle) float64 {
	relVelocity := other.TrueVelocity().Sub(v.TrueVelocity())
	relSpeed := relVelocity.Len()
	if relSpeed == 0 {
		return 0
	}

	relTangent := relVelocity.Mul(1 / relSpeed)
	relPosition := v.Position.Sub(other.Position)
	projection := relTangent.Dot(relPosition)
	return projection / relSpeed
}

// ComputeNearestApproachPositions returns the distance between v and other
// after both travel for time at their current heading and speed.
func ComputeNearestApproachPositions(v, other *core.Vehicle, time float64) float64 {
	return vecmath.Distance(v.PredictFuturePosition(time), other.PredictFuturePosition(time))
}

// NearestApproachDistance is ComputeNearestApproachPositions evaluated at the
// predicted nearest approach time.
func NearestApproachDistance(v, other *core.Vehicle) float64 {
	return ComputeNearestApproachPositions(v, other, PredictNearestApproachTime(v, other))
}
