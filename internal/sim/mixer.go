package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/vecmath"
)

// Steer combines an agent's behaviours into one force.
//
// Priority behaviours are tried in declaration order and the first non-zero
// force wins outright, scaled by its weight. When all of them are zero the
// remaining behaviours are summed by weight. A zero weight counts as 1.
//
// self must be the agent's entry in snapshot so behaviours can skip it by
// identity. Steer mutates only the agent's wander state, so distinct agents
// can be steered concurrently.
func Steer(w *World, index int, snapshot []*core.Vehicle, elapsed float64) mgl64.Vec3 {
	agent := w.Agents[index]
	in := steerInput{
		self:     snapshot[index],
		snapshot: snapshot,
		world:    w,
		agent:    agent,
		elapsed:  elapsed,
	}

	for i := range agent.Behaviours {
		b := &agent.Behaviours[i]
		if !b.Priority {
			continue
		}
		if f := b.force(in); !vecmath.IsZero(f) {
			return f.Mul(weight(b))
		}
	}

	total := mgl64.Vec3{}
	for i := range agent.Behaviours {
		b := &agent.Behaviours[i]
		if b.Priority {
			continue
		}
		total = total.Add(b.force(in).Mul(weight(b)))
	}
	return total
}

func weight(b *Behaviour) float64 {
	if b.Weight == 0 {
		return 1
	}
	return b.Weight
}
