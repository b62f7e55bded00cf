// pkg/core/run.go
package core

import (
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Position3D is a point or direction in the recorder's serialized form.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"` // up
	Z float64 `json:"z"`
}

// PositionFromVec converts a kernel vector.
func PositionFromVec(v mgl64.Vec3) Position3D {
	return Position3D{X: v[0], Y: v[1], Z: v[2]}
}

// Vec converts back to a kernel vector.
func (p Position3D) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// Run describes one recorded simulation.
type Run struct {
	ID           string         `json:"id"`
	ScenarioName string         `json:"scenarioName"`
	StartTime    time.Time      `json:"startTime"`
	TickRate     float64        `json:"tickRate"`
	Seed         uint64         `json:"seed"`
	PathWKT      string         `json:"path,omitempty"`       // empty when the scenario has no pathway
	Parameters   map[string]any `json:"parameters,omitempty"` // resolved steering parameters
}

const shortIDLen = 8

var fileNameReplacer = strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")

// FileStem names files written for the run:
// <scenario>_<start time to the second>_<first 8 characters of the ID>.
// Runs of the same scenario started in the same second still get distinct
// names as long as their IDs differ.
func (r *Run) FileStem() string {
	name := fileNameReplacer.Replace(r.ScenarioName)
	if name == "" {
		name = "run"
	}
	stem := name + "_" + r.StartTime.Format("20060102_150405")

	id := r.ID
	if len(id) > shortIDLen {
		id = id[:shortIDLen]
	}
	if id = fileNameReplacer.Replace(id); id != "" {
		stem += "_" + id
	}
	return stem
}

// Agent is the identity of a simulated vehicle.
// ID is assigned by the scenario in declaration order.
type Agent struct {
	ID         uint16   `json:"id"`
	Name       string   `json:"name"`
	Behaviours []string `json:"behaviours"`
	JoinTick   uint     `json:"joinTick"`
}

// AgentState is a per-tick snapshot of one agent after integration.
type AgentState struct {
	AgentID   uint16     `json:"agentId"`
	Tick      uint       `json:"tick"`
	SimTime   float64    `json:"simTime"` // seconds since run start
	Position  Position3D `json:"position"`
	Forward   Position3D `json:"forward"`
	Up        Position3D `json:"up"`
	Velocity  float64    `json:"velocity"`
	Steering  Position3D `json:"steering"` // force applied this tick
	Curvature float64    `json:"curvature"`
}

// StateFromVehicle builds the snapshot for v.
func StateFromVehicle(agentID uint16, tick uint, simTime float64, v *Vehicle, steering mgl64.Vec3) AgentState {
	return AgentState{
		AgentID:   agentID,
		Tick:      tick,
		SimTime:   simTime,
		Position:  PositionFromVec(v.Position),
		Forward:   PositionFromVec(v.Forward),
		Up:        PositionFromVec(v.Up),
		Velocity:  v.Velocity,
		Steering:  PositionFromVec(steering),
		Curvature: v.Curvature,
	}
}
