package steering

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/pathway"
)

// FollowPath steers along path in the given direction (+1 with increasing
// path distance, -1 against it). No force is produced while the position
// predicted predictionTime ahead is inside the tube and moving the right way.
// Otherwise the vehicle seeks the point direction*predictionTime*Velocity
// further along the path from its current path distance.
func FollowPath(v *core.Vehicle, direction int, predictionTime float64, path pathway.Pathway) mgl64.Vec3 {
	pathDistanceOffset := float64(direction) * predictionTime * v.Velocity

	futurePosition := v.PredictFuturePosition(predictionTime)

	nowPathDistance := path.MapPointToPathDistance(v.Position)
	futurePathDistance := path.MapPointToPathDistance(futurePosition)

	var rightway bool
	if pathDistanceOffset > 0 {
		rightway = nowPathDistance < futurePathDistance
	} else {
		rightway = nowPathDistance > futurePathDistance
	}

	onPath := path.MapPointToPath(futurePosition)
	if onPath.Outside < 0 && rightway {
		return mgl64.Vec3{}
	}

	target := path.MapPathDistanceToPoint(nowPathDistance + pathDistanceOffset)
	return Seek(v, target)
}

// StayOnPath seeks the path whenever the position predicted predictionTime
// ahead leaves the tube, aiming at that position's projection on the path.
func StayOnPath(v *core.Vehicle, predictionTime float64, path pathway.Pathway) mgl64.Vec3 {
	futurePosition := v.PredictFuturePosition(predictionTime)

	onPath := path.MapPointToPath(futurePosition)
	if onPath.Outside < 0 {
		return mgl64.Vec3{}
	}
	return Seek(v, onPath.OnPath)
}
