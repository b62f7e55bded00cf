// Package convert provides functions to convert core recorder types to GORM models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/steerlab/steering/internal/model"
	"github.com/steerlab/steering/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// position3DToPoint converts a Y-up core.Position3D to a POINT Z on the
// ground plane, matching the axis order of stored paths.
func position3DToPoint(p core.Position3D) geom.Point {
	coords := geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Z}, Z: p.Y, Type: geom.DimXYZ}
	return geom.NewPoint(coords)
}

func position3DToVec(p core.Position3D) model.Vec3 {
	return model.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// stringsToJSON converts a []string to datatypes.JSON for DB storage.
func stringsToJSON(items []string) datatypes.JSON {
	if len(items) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(items)
	return datatypes.JSON(data)
}

// CoreToRun converts a core.Run to a GORM model.Run.
// An unparsable PathWKT is an error; an empty one stores an empty geometry.
func CoreToRun(r core.Run) (model.Run, error) {
	params := datatypes.JSON("{}")
	if len(r.Parameters) > 0 {
		data, err := json.Marshal(r.Parameters)
		if err != nil {
			return model.Run{}, fmt.Errorf("failed to marshal run parameters: %w", err)
		}
		params = datatypes.JSON(data)
	}

	var path geom.Geometry
	if r.PathWKT != "" {
		g, err := geom.UnmarshalWKT(r.PathWKT)
		if err != nil {
			return model.Run{}, fmt.Errorf("failed to parse run path: %w", err)
		}
		path = g
	}

	return model.Run{
		RunUUID:      r.ID,
		ScenarioName: r.ScenarioName,
		StartTime:    r.StartTime,
		TickRate:     r.TickRate,
		Seed:         int64(r.Seed),
		Path:         path,
		Parameters:   params,
	}, nil
}

// CoreToAgent converts a core.Agent to a GORM model.Agent.
func CoreToAgent(a core.Agent) model.Agent {
	return model.Agent{
		AgentID:    a.ID,
		Name:       a.Name,
		Behaviours: stringsToJSON(a.Behaviours),
		JoinTick:   a.JoinTick,
	}
}

// CoreToAgentState converts a core.AgentState to a GORM model.AgentState.
func CoreToAgentState(s core.AgentState) model.AgentState {
	return model.AgentState{
		Tick:      s.Tick,
		AgentID:   s.AgentID,
		SimTime:   s.SimTime,
		Position:  position3DToPoint(s.Position),
		Forward:   position3DToVec(s.Forward),
		Up:        position3DToVec(s.Up),
		Speed:     s.Velocity,
		Steering:  position3DToVec(s.Steering),
		Curvature: s.Curvature,
	}
}

// CoreToCollisionEvent converts a core.CollisionEvent to a GORM model.CollisionEvent.
func CoreToCollisionEvent(e core.CollisionEvent) model.CollisionEvent {
	return model.CollisionEvent{
		Tick:    e.Tick,
		AgentID: e.AgentID,
		Kind:    string(e.Kind),
		OtherID: e.OtherID,
		Contact: position3DToVec(e.Contact),
	}
}
