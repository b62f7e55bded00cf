package steering

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/vecmath"
)

// pursuitTimeFactors is indexed by [forwardness bucket][parallelness bucket],
// each bucket being IntervalComparison+1 (behind/anti, aside/perp, ahead/parallel).
var pursuitTimeFactors = [3][3]float64{
	{2, 2, 0.5},    // behind: anti-parallel, perpendicular, parallel
	{4, 0.8, 1},    // aside
	{0.85, 1.8, 4}, // ahead
}

// PursuitTimeFactor scales the direct travel time to the quarry depending on
// where it is (forwardness) and where it is heading (parallelness) relative
// to the pursuer.
func PursuitTimeFactor(forwardness, parallelness float64) float64 {
	c := vecmath.DefaultCosThreshold
	f := vecmath.IntervalComparison(forwardness, -c, c)
	p := vecmath.IntervalComparison(parallelness, -c, c)
	return pursuitTimeFactors[f+1][p+1]
}

// PursuitPredictionTime returns how far ahead Pursuit predicts the target.
// A stationary pursuer predicts nothing and seeks the current position.
func PursuitPredictionTime(v, target *core.Vehicle, maxPredictionTime float64) float64 {
	if v.Velocity == 0 {
		return 0
	}
	offset := target.Position.Sub(v.Position)
	distance := offset.Len()

	parallelness := v.Forward.Dot(target.Forward)
	forwardness := v.Forward.Dot(vecmath.SafeNormalize(offset))

	directTravelTime := distance / v.Velocity
	estimated := directTravelTime * PursuitTimeFactor(forwardness, parallelness)
	if estimated > maxPredictionTime {
		return maxPredictionTime
	}
	return estimated
}

// Pursuit seeks where target is predicted to be at interception, with the
// prediction horizon capped at maxPredictionTime.
func Pursuit(v, target *core.Vehicle, maxPredictionTime float64) mgl64.Vec3 {
	t := PursuitPredictionTime(v, target, maxPredictionTime)
	return Seek(v, target.PredictFuturePosition(t))
}

// PursuitUnbounded is Pursuit without a prediction cap.
func PursuitUnbounded(v, target *core.Vehicle) mgl64.Vec3 {
	return Pursuit(v, target, math.MaxFloat64)
}

// Evasion flees where menace will be after the time it would need to cover
// the current distance, capped at maxPredictionTime. A stationary menace is
// fled at its current position.
func Evasion(v, menace *core.Vehicle, maxPredictionTime float64) mgl64.Vec3 {
	predictionTime := 0.0
	if menace.Velocity != 0 {
		roughTime := vecmath.Distance(menace.Position, v.Position) / menace.Velocity
		predictionTime = math.Min(roughTime, maxPredictionTime)
	}
	return Flee(v, menace.PredictFuturePosition(predictionTime))
}
