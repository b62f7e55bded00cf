// internal/storage/memory/export_test.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/pkg/core"
)

func populated(t *testing.T, cfg config.MemoryConfig) *Backend {
	t.Helper()
	b := New(cfg)
	run := testRun()
	run.PathWKT = "LINESTRING Z(0 0 0,0 10 0)"
	run.Parameters = map[string]any{"minTimeToCollision": 2.0}
	_ = b.StartRun(run)
	_ = b.AddAgent(&core.Agent{ID: 2, Name: "second", Behaviours: []string{"seek"}})
	_ = b.AddAgent(&core.Agent{ID: 1, Name: "first"})
	_ = b.RecordAgentStates([]core.AgentState{
		{
			AgentID:  1,
			Tick:     1,
			Position: core.Position3D{X: 1, Y: 2, Z: 3},
			Forward:  core.Position3D{Z: 1},
			Velocity: 0.5,
			Steering: core.Position3D{X: 0.1},
		},
	})
	_ = b.RecordCollision(&core.CollisionEvent{
		Tick:    1,
		AgentID: 1,
		Kind:    core.CollisionObstacle,
		OtherID: 0,
		Contact: core.Position3D{X: -0.5},
	})
	return b
}

func TestBuildExport(t *testing.T) {
	b := populated(t, config.MemoryConfig{})
	export := b.buildExport()

	if export.RunID != "run-1" {
		t.Errorf("expected RunID=run-1, got %s", export.RunID)
	}
	if export.StartTime != "2024-01-15T10:30:00Z" {
		t.Errorf("unexpected StartTime %s", export.StartTime)
	}
	if export.EndTick != 1 {
		t.Errorf("expected EndTick=1, got %d", export.EndTick)
	}
	if export.Path == "" {
		t.Error("expected path to be exported")
	}

	// Registration order, not ID order.
	if len(export.Agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(export.Agents))
	}
	if export.Agents[0].Name != "second" || export.Agents[1].Name != "first" {
		t.Errorf("agents out of registration order: %+v", export.Agents)
	}
	if export.Agents[1].Behaviours == nil {
		t.Error("nil behaviours should export as an empty list")
	}

	states := export.Agents[1].States
	if len(states) != 1 {
		t.Fatalf("expected 1 state, got %d", len(states))
	}
	pos, ok := states[0][1].([]float64)
	if !ok || pos[0] != 1 || pos[1] != 2 || pos[2] != 3 {
		t.Errorf("unexpected position %v", states[0][1])
	}

	if len(export.Collisions) != 1 {
		t.Fatalf("expected 1 collision, got %d", len(export.Collisions))
	}
	if export.Collisions[0][2] != "obstacle" {
		t.Errorf("expected kind=obstacle, got %v", export.Collisions[0][2])
	}
}

func TestExportJSON(t *testing.T) {
	tempDir := t.TempDir()
	b := populated(t, config.MemoryConfig{OutputDir: tempDir, CompressOutput: false})

	if err := b.EndRun(); err != nil {
		t.Fatalf("EndRun failed: %v", err)
	}

	path := b.ExportedFilePath()
	if filepath.Base(path) != "Test_Scenario_20240115_103000.json" {
		t.Errorf("unexpected filename %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}

	var export RunExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if export.ScenarioName != "Test Scenario" {
		t.Errorf("expected ScenarioName='Test Scenario', got '%s'", export.ScenarioName)
	}
	if export.Parameters["minTimeToCollision"] != 2.0 {
		t.Errorf("unexpected parameters %v", export.Parameters)
	}
}

func TestExportGzipJSON(t *testing.T) {
	tempDir := t.TempDir()
	b := populated(t, config.MemoryConfig{OutputDir: tempDir, CompressOutput: true})

	if err := b.EndRun(); err != nil {
		t.Fatalf("EndRun failed: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(tempDir, "*.json.gz"))
	if len(matches) != 1 {
		t.Fatalf("expected 1 gzip file, got %d", len(matches))
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("failed to open gzip file: %v", err)
	}
	defer f.Close()

	gzReader, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("failed to create gzip reader: %v", err)
	}
	defer gzReader.Close()

	var export RunExport
	if err := json.NewDecoder(gzReader).Decode(&export); err != nil {
		t.Fatalf("failed to decode gzipped JSON: %v", err)
	}
	if len(export.Agents) != 2 {
		t.Errorf("expected 2 agents, got %d", len(export.Agents))
	}
}

func TestFilenameGeneration(t *testing.T) {
	tests := []struct {
		scenarioName   string
		compress       bool
		expectedSuffix string
	}{
		{"Simple", false, "Simple_20240115_103000_run-1.json"},
		{"With Spaces", true, "With_Spaces_20240115_103000_run-1.json.gz"},
		{"Colon:Name", false, "Colon_Name_20240115_103000_run-1.json"},
		{"", false, "run_20240115_103000_run-1.json"},
	}

	for _, tt := range tests {
		t.Run(tt.scenarioName, func(t *testing.T) {
			b := New(config.MemoryConfig{OutputDir: t.TempDir(), CompressOutput: tt.compress})
			run := testRun()
			run.ScenarioName = tt.scenarioName
			_ = b.StartRun(run)

			if err := b.EndRun(); err != nil {
				t.Fatalf("EndRun failed: %v", err)
			}
			if !strings.HasSuffix(b.ExportedFilePath(), tt.expectedSuffix) {
				t.Errorf("expected suffix %s, got %s", tt.expectedSuffix, b.ExportedFilePath())
			}
		})
	}
}

func TestSameSecondRunsDoNotCollide(t *testing.T) {
	outputDir := t.TempDir()
	var paths []string
	for _, id := range []string{"5b0d7e2a-aaaa", "c41f09b3-bbbb"} {
		b := New(config.MemoryConfig{OutputDir: outputDir})
		run := testRun()
		run.ID = id
		if err := b.StartRun(run); err != nil {
			t.Fatalf("StartRun failed: %v", err)
		}
		if err := b.EndRun(); err != nil {
			t.Fatalf("EndRun failed: %v", err)
		}
		paths = append(paths, b.ExportedFilePath())
	}

	if paths[0] == paths[1] {
		t.Fatalf("both runs exported to %s", paths[0])
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 export files, got %d", len(entries))
	}
}

func TestExportCreatesOutputDir(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "nested", "dir")
	b := populated(t, config.MemoryConfig{OutputDir: outputDir})

	if err := b.EndRun(); err != nil {
		t.Fatalf("EndRun failed: %v", err)
	}
	if _, err := os.Stat(outputDir); err != nil {
		t.Errorf("output directory not created: %v", err)
	}
}
