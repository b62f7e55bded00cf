// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/steerlab/steering/pkg/core"
)

// ErrUnknownBackend is returned by New for an unrecognized storage type.
var ErrUnknownBackend = errors.New("unknown storage type")

// Backend is the interface all recording implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management
	StartRun(run *core.Run) error
	EndRun() error

	// Agent registration
	AddAgent(a *core.Agent) error

	// State recording. States arrive in batches of one or more ticks.
	RecordAgentStates(states []core.AgentState) error

	// Event recording
	RecordCollision(e *core.CollisionEvent) error
}

// Exporter is an optional interface for backends that write the run to a file.
type Exporter interface {
	ExportedFilePath() string
}
