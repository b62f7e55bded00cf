// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RunExport is the root JSON structure
type RunExport struct {
	RunID        string         `json:"runId"`
	ScenarioName string         `json:"scenarioName"`
	StartTime    string         `json:"startTime"`
	TickRate     float64        `json:"tickRate"`
	Seed         uint64         `json:"seed"`
	EndTick      uint           `json:"endTick"`
	Path         string         `json:"path,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Agents       []AgentJSON    `json:"agents"`
	Collisions   [][]any        `json:"collisions"`
}

// AgentJSON represents one agent and its trajectory
type AgentJSON struct {
	ID         uint16   `json:"id"`
	Name       string   `json:"name"`
	Behaviours []string `json:"behaviours"`
	JoinTick   uint     `json:"joinTick"`
	// Each entry is [tick, [x,y,z], [fx,fy,fz], speed, [sx,sy,sz], curvature]
	States [][]any `json:"states"`
}

// exportJSON writes the run to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	filename := b.run.FileStem() + ".json"
	if b.cfg.CompressOutput {
		filename += ".gz"
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() RunExport {
	export := RunExport{
		RunID:        b.run.ID,
		ScenarioName: b.run.ScenarioName,
		StartTime:    b.run.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		TickRate:     b.run.TickRate,
		Seed:         b.run.Seed,
		EndTick:      b.lastTick,
		Path:         b.run.PathWKT,
		Parameters:   b.run.Parameters,
		Agents:       make([]AgentJSON, 0, len(b.order)),
		Collisions:   make([][]any, 0, len(b.collisions)),
	}

	for _, id := range b.order {
		record := b.agents[id]
		agent := AgentJSON{
			ID:         record.Agent.ID,
			Name:       record.Agent.Name,
			Behaviours: record.Agent.Behaviours,
			JoinTick:   record.Agent.JoinTick,
			States:     make([][]any, 0, len(record.States)),
		}
		if agent.Behaviours == nil {
			agent.Behaviours = []string{}
		}
		for _, s := range record.States {
			agent.States = append(agent.States, []any{
				s.Tick,
				[]float64{s.Position.X, s.Position.Y, s.Position.Z},
				[]float64{s.Forward.X, s.Forward.Y, s.Forward.Z},
				s.Velocity,
				[]float64{s.Steering.X, s.Steering.Y, s.Steering.Z},
				s.Curvature,
			})
		}
		export.Agents = append(export.Agents, agent)
	}

	// [tick, agentId, kind, otherId, [x,y,z]]
	for _, c := range b.collisions {
		export.Collisions = append(export.Collisions, []any{
			c.Tick,
			c.AgentID,
			string(c.Kind),
			c.OtherID,
			[]float64{c.Contact.X, c.Contact.Y, c.Contact.Z},
		})
	}

	return export
}

func writeJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
