package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/steering"
	"github.com/steerlab/steering/pkg/vecmath"
)

// Kind names a steering behaviour as written in scenario files.
type Kind string

const (
	KindSeek                Kind = "seek"
	KindFlee                Kind = "flee"
	KindAlternateSeek       Kind = "alternateSeek"
	KindAlternateFlee       Kind = "alternateFlee"
	KindArrive              Kind = "arrive"
	KindWander              Kind = "wander"
	KindFollowPath          Kind = "followPath"
	KindStayOnPath          Kind = "stayOnPath"
	KindAvoidObstacles      Kind = "avoidObstacles"
	KindAvoidNeighbors      Kind = "avoidNeighbors"
	KindAvoidCloseNeighbors Kind = "avoidCloseNeighbors"
	KindSeparation          Kind = "separation"
	KindAlignment           Kind = "alignment"
	KindCohesion            Kind = "cohesion"
	KindPursuit             Kind = "pursuit"
	KindEvasion             Kind = "evasion"
	KindTargetSpeed         Kind = "targetSpeed"
)

var kinds = map[Kind]struct {
	needsPath   bool
	needsTarget bool // another agent
	priority    bool // default priority
}{
	KindSeek:                {},
	KindFlee:                {},
	KindAlternateSeek:       {},
	KindAlternateFlee:       {},
	KindArrive:              {},
	KindWander:              {},
	KindFollowPath:          {needsPath: true},
	KindStayOnPath:          {needsPath: true},
	KindAvoidObstacles:      {priority: true},
	KindAvoidNeighbors:      {priority: true},
	KindAvoidCloseNeighbors: {priority: true},
	KindSeparation:          {},
	KindAlignment:           {},
	KindCohesion:            {},
	KindPursuit:             {needsTarget: true},
	KindEvasion:             {needsTarget: true},
	KindTargetSpeed:         {},
}

// Known reports whether k is a behaviour the mixer can run.
func (k Kind) Known() bool {
	_, ok := kinds[k]
	return ok
}

// NeedsPath reports whether k reads the world pathway.
func (k Kind) NeedsPath() bool { return kinds[k].needsPath }

// NeedsTarget reports whether k chases or flees another agent.
func (k Kind) NeedsTarget() bool { return kinds[k].needsTarget }

// DefaultPriority reports whether k overrides the weighted sum by default.
func (k Kind) DefaultPriority() bool { return kinds[k].priority }

// Behaviour is one configured entry in an agent's behaviour list.
// Zero tunables fall back to the world Params.
type Behaviour struct {
	Kind     Kind
	Weight   float64
	Priority bool

	Target          mgl64.Vec3 // seek, flee, arrive
	TargetAgent     int        // index into World.Agents for pursuit and evasion
	Speed           float64    // targetSpeed
	SlowingDistance float64    // arrive
	Direction       int        // followPath, +1 or -1

	PredictionTime     float64
	MaxPredictionTime  float64
	MinTimeToCollision float64
	MinSeparation      float64 // avoidCloseNeighbors
	MaxDistance        float64 // flocking neighborhood radius
	CosMaxAngle        float64 // flocking neighborhood cone, 0 uses Params.CosThreshold
}

// steerInput is everything a behaviour may read during one tick.
type steerInput struct {
	self     *core.Vehicle   // snapshot of the agent being steered
	snapshot []*core.Vehicle // every agent, same order as World.Agents
	world    *World
	agent    *Agent
	elapsed  float64
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// force evaluates the behaviour against a consistent snapshot.
func (b *Behaviour) force(in steerInput) mgl64.Vec3 {
	v := in.self
	p := in.world.Params

	switch b.Kind {
	case KindSeek:
		return steering.Seek(v, b.Target)
	case KindFlee:
		return steering.Flee(v, b.Target)
	case KindAlternateSeek:
		return steering.AlternateSeek(v, b.Target)
	case KindAlternateFlee:
		return steering.AlternateFlee(v, b.Target)
	case KindArrive:
		return arrive(v, b.Target, orDefault(b.SlowingDistance, 5))
	case KindWander:
		f, next := steering.Wander(v, in.elapsed, in.agent.wander, in.agent.rnd)
		in.agent.wander = next
		return f
	case KindFollowPath:
		direction := b.Direction
		if direction == 0 {
			direction = 1
		}
		return steering.FollowPath(v, direction, orDefault(b.PredictionTime, p.PredictionTime), in.world.Path)
	case KindStayOnPath:
		return steering.StayOnPath(v, orDefault(b.PredictionTime, p.PredictionTime), in.world.Path)
	case KindAvoidObstacles:
		return steering.AvoidObstacles(v, orDefault(b.MinTimeToCollision, p.MinTimeToCollision), in.world.Obstacles)
	case KindAvoidNeighbors:
		return steering.AvoidNeighbors(v, orDefault(b.MinTimeToCollision, p.MinTimeToCollision), in.snapshot)
	case KindAvoidCloseNeighbors:
		return steering.AvoidCloseNeighbors(v, b.MinSeparation, in.snapshot)
	case KindSeparation:
		return steering.Separation(v, b.MaxDistance, orDefault(b.CosMaxAngle, p.CosThreshold), in.snapshot)
	case KindAlignment:
		return steering.Alignment(v, b.MaxDistance, orDefault(b.CosMaxAngle, p.CosThreshold), in.snapshot)
	case KindCohesion:
		return steering.Cohesion(v, b.MaxDistance, orDefault(b.CosMaxAngle, p.CosThreshold), in.snapshot)
	case KindPursuit:
		return steering.Pursuit(v, in.snapshot[b.TargetAgent], orDefault(b.MaxPredictionTime, p.MaxPredictionTime))
	case KindEvasion:
		return steering.Evasion(v, in.snapshot[b.TargetAgent], orDefault(b.MaxPredictionTime, p.MaxPredictionTime))
	case KindTargetSpeed:
		return steering.TargetSpeed(v, b.Speed)
	default:
		return vecmath.Zero
	}
}

// arrive steers toward target and ramps the desired speed down linearly
// inside slowingDistance, reaching zero at the target.
func arrive(v *core.Vehicle, target mgl64.Vec3, slowingDistance float64) mgl64.Vec3 {
	offset := target.Sub(v.Position)
	distance := offset.Len()
	desiredSpeed := v.MaximumVelocity
	if distance < slowingDistance {
		desiredSpeed = v.MaximumVelocity * distance / slowingDistance
	}

	turn := vecmath.PerpendicularComponent(steering.Seek(v, target), v.Forward)
	return turn.Add(steering.TargetSpeed(v, desiredSpeed))
}
