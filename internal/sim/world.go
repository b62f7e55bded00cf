package sim

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/obstacle"
	"github.com/steerlab/steering/pkg/pathway"
	"github.com/steerlab/steering/pkg/steering"
)

// Params are the steering tunables shared by every agent in a world.
type Params struct {
	MinTimeToCollision float64
	PredictionTime     float64
	MaxPredictionTime  float64
	CosThreshold       float64
}

// ParamsFromConfig copies the steering tunables out of the sim settings.
func ParamsFromConfig(c config.SimConfig) Params {
	return Params{
		MinTimeToCollision: c.MinTimeToCollision,
		PredictionTime:     c.PredictionTime,
		MaxPredictionTime:  c.MaxPredictionTime,
		CosThreshold:       c.CosThreshold,
	}
}

// Map renders the params for run metadata.
func (p Params) Map() map[string]any {
	return map[string]any{
		"minTimeToCollision": p.MinTimeToCollision,
		"predictionTime":     p.PredictionTime,
		"maxPredictionTime":  p.MaxPredictionTime,
		"cosThreshold":       p.CosThreshold,
	}
}

// Agent is a vehicle plus the behaviours that steer it.
type Agent struct {
	ID         uint16
	Name       string
	Vehicle    *core.Vehicle
	Behaviours []Behaviour
	JoinTick   uint

	wander steering.WanderState
	rnd    *rand.Rand
}

// NewAgent builds an agent whose random stream depends only on the run seed
// and its name, so results do not depend on worker scheduling.
func NewAgent(id uint16, name string, v *core.Vehicle, behaviours []Behaviour, seed uint64) *Agent {
	nameHash := xxhash.Sum64String(name)
	return &Agent{
		ID:         id,
		Name:       name,
		Vehicle:    v,
		Behaviours: behaviours,
		wander:     steering.WanderState{},
		rnd:        rand.New(rand.NewPCG(seed^nameHash, nameHash)),
	}
}

// Record describes the agent for storage.
func (a *Agent) Record() *core.Agent {
	names := make([]string, len(a.Behaviours))
	for i, b := range a.Behaviours {
		names[i] = string(b.Kind)
	}
	return &core.Agent{
		ID:         a.ID,
		Name:       a.Name,
		Behaviours: names,
		JoinTick:   a.JoinTick,
	}
}

// World is everything the runner simulates.
type World struct {
	Name      string
	Seed      uint64
	Agents    []*Agent
	Obstacles []obstacle.Obstacle
	Path      pathway.Pathway // nil when no behaviour needs one
	PathWKT   string
	Params    Params
}
