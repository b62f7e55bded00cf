package sim

import (
	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/obstacle"
	"github.com/steerlab/steering/pkg/vecmath"
)

type contactKey struct {
	kind  core.CollisionKind
	agent uint16
	other uint16
}

// contactTracker reports a contact only on the tick it begins.
type contactTracker struct {
	active map[contactKey]bool
}

func newContactTracker() *contactTracker {
	return &contactTracker{active: make(map[contactKey]bool)}
}

// detect checks every agent against every obstacle and every other agent.
// An obstacle contact needs the vehicle's bounding sphere to overlap the
// obstacle; the reported contact is the obstacle's lateral offset test.
func (c *contactTracker) detect(w *World, tick uint) []core.CollisionEvent {
	seen := make(map[contactKey]bool, len(c.active))
	var events []core.CollisionEvent

	begin := func(key contactKey, contact core.Position3D) {
		seen[key] = true
		if c.active[key] {
			return
		}
		events = append(events, core.CollisionEvent{
			Tick:    tick,
			AgentID: key.agent,
			Kind:    key.kind,
			OtherID: key.other,
			Contact: contact,
		})
	}

	for _, a := range w.Agents {
		v := a.Vehicle
		for i, o := range w.Obstacles {
			if !touchesObstacle(v, o) {
				continue
			}
			begin(contactKey{core.CollisionObstacle, a.ID, uint16(i)}, core.PositionFromVec(o.HasCollided(v)))
		}
	}

	for i, a := range w.Agents {
		for _, b := range w.Agents[i+1:] {
			va, vb := a.Vehicle, b.Vehicle
			reach := va.BoundingSphereRadius + vb.BoundingSphereRadius
			if vecmath.Distance(va.Position, vb.Position) >= reach {
				continue
			}
			begin(contactKey{core.CollisionNeighbor, a.ID, b.ID}, core.PositionFromVec(vb.Position.Sub(va.Position)))
		}
	}

	c.active = seen
	return events
}

func touchesObstacle(v *core.Vehicle, o obstacle.Obstacle) bool {
	s, ok := o.(*obstacle.Sphere)
	if !ok {
		return false
	}
	return vecmath.Distance(v.Position, s.Center()) < s.Radius+v.BoundingSphereRadius
}
