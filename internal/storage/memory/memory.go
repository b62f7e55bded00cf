// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sync"

	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/pkg/core"
)

// AgentRecord groups an agent with its time series
type AgentRecord struct {
	Agent      core.Agent
	States     []core.AgentState
	Collisions []core.CollisionEvent
}

// Backend stores run data in memory and exports to JSON on EndRun
type Backend struct {
	cfg config.MemoryConfig
	run *core.Run

	agents     map[uint16]*AgentRecord
	order      []uint16 // registration order, kept for a stable export
	collisions []core.CollisionEvent
	lastTick   uint

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:    cfg,
		agents: make(map[uint16]*AgentRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartRun begins recording a new run and drops anything left from the previous one
func (b *Backend) StartRun(run *core.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.run = run
	b.agents = make(map[uint16]*AgentRecord)
	b.order = nil
	b.collisions = nil
	b.lastTick = 0
	b.lastExportPath = ""

	return nil
}

// EndRun finalizes and exports the run
func (b *Backend) EndRun() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return fmt.Errorf("no run in progress")
	}
	return b.exportJSON()
}

// AddAgent registers a new agent. Registering the same ID twice is an error.
func (b *Backend) AddAgent(a *core.Agent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.agents[a.ID]; ok {
		return fmt.Errorf("agent %d already registered", a.ID)
	}
	b.agents[a.ID] = &AgentRecord{Agent: *a}
	b.order = append(b.order, a.ID)
	return nil
}

// RecordAgentStates appends states to their agents. States for unknown
// agents are ignored.
func (b *Backend) RecordAgentStates(states []core.AgentState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range states {
		if record, ok := b.agents[s.AgentID]; ok {
			record.States = append(record.States, s)
		}
		if s.Tick > b.lastTick {
			b.lastTick = s.Tick
		}
	}
	return nil
}

// RecordCollision records a contact event
func (b *Backend) RecordCollision(e *core.CollisionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.collisions = append(b.collisions, *e)
	if record, ok := b.agents[e.AgentID]; ok {
		record.Collisions = append(record.Collisions, *e)
	}
	return nil
}

// ExportedFilePath returns the path of the last export, empty before EndRun
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// Agent returns a copy of the record for id
func (b *Backend) Agent(id uint16) (AgentRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	record, ok := b.agents[id]
	if !ok {
		return AgentRecord{}, false
	}
	return *record, true
}
