package scenario

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/internal/sim"
	"github.com/steerlab/steering/pkg/obstacle"
	"github.com/steerlab/steering/pkg/pathway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var params = sim.Params{MinTimeToCollision: 2, PredictionTime: 3, MaxPredictionTime: 20, CosThreshold: 0.707}

func parseYAML(t *testing.T, body string) *Scenario {
	t.Helper()
	s, err := Parse(strings.NewReader(body), "yaml")
	require.NoError(t, err)
	return s
}

func TestLoad_YAML(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "corridor.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "corridor patrol", s.Name)
	assert.Equal(t, uint64(11), s.Seed)
	assert.Equal(t, 30, s.TickRate)
	require.NotNil(t, s.Path)
	assert.Len(t, s.Path.Points, 3)
	require.Len(t, s.Vehicles, 2)
	assert.Equal(t, "leader", s.Vehicles[1].Behaviours[1].TargetVehicle)
	assert.Equal(t, 0.5, s.Vehicles[1].Velocity)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pair.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"name": "pair",
		"seed": 3,
		"vehicles": [
			{"name": "a", "behaviours": [{"type": "seek", "target": [5, 0, 5]}]},
			{"name": "b", "position": [2, 0, 0], "behaviours": [{"type": "evasion", "targetVehicle": "a", "priority": true}]}
		]
	}`), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	require.Len(t, s.Vehicles, 2)
	require.NotNil(t, s.Vehicles[1].Behaviours[0].Priority)
	assert.True(t, *s.Vehicles[1].Behaviours[0].Priority)
	assert.Equal(t, []float64{5, 0, 5}, s.Vehicles[0].Behaviours[0].Target)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/scenario.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "scenario.toml")
	require.NoError(t, os.WriteFile(path, []byte(`name = "x"`), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "unsupported scenario format")

	_, err = Parse(strings.NewReader("vehicles: [unclosed"), "yaml")
	assert.Error(t, err)
}

func TestBuild_Corridor(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "corridor.yaml"))
	require.NoError(t, err)

	w, err := s.Build(params)
	require.NoError(t, err)

	assert.Equal(t, "corridor patrol", w.Name)
	assert.Equal(t, uint64(11), w.Seed)
	path, ok := w.Path.(*pathway.Polyline)
	require.True(t, ok)
	assert.InDelta(t, 60.0, path.TotalLength(), 1e-9)
	assert.Equal(t, 2.0, path.Radius())
	assert.True(t, strings.HasPrefix(w.PathWKT, "LINESTRING Z"))
	require.Len(t, w.Obstacles, 1)

	require.Len(t, w.Agents, 2)
	leader, chaser := w.Agents[0], w.Agents[1]
	assert.Equal(t, uint16(0), leader.ID)
	assert.Equal(t, uint16(1), chaser.ID)
	assert.Equal(t, 2.0, leader.Vehicle.MaximumVelocity)
	assert.Equal(t, 0.4, leader.Vehicle.MaximumSteeringForce)
	assert.Equal(t, mgl64.Vec3{0, 0, -2}, leader.Vehicle.Position)
	assert.Equal(t, leader.Vehicle.Position, leader.Vehicle.LastPosition)

	require.Len(t, leader.Behaviours, 2)
	assert.True(t, leader.Behaviours[0].Priority, "avoidance defaults to priority")
	assert.False(t, leader.Behaviours[1].Priority)
	assert.Equal(t, 2.0, leader.Behaviours[1].PredictionTime)

	assert.Equal(t, sim.KindPursuit, chaser.Behaviours[1].Kind)
	assert.Equal(t, 0, chaser.Behaviours[1].TargetAgent)
	assert.Equal(t, 0.5, chaser.Behaviours[2].Weight)
}

func TestBuild_WKTAndWGS84Paths(t *testing.T) {
	s := parseYAML(t, `
name: wkt
path:
  wkt: LINESTRING(0 0, 10 0)
vehicles:
  - name: a
    behaviours: [{type: stayOnPath}]
`)
	w, err := s.Build(params)
	require.NoError(t, err)
	path, ok := w.Path.(*pathway.Polyline)
	require.True(t, ok)
	assert.InDelta(t, 10.0, path.TotalLength(), 1e-9)
	assert.Equal(t, defaultPathRadius, path.Radius())

	s = parseYAML(t, `
name: geo
path:
  wgs84: [[13.40, 52.52, 30], [13.41, 52.52, 30]]
  cyclic: false
vehicles:
  - name: a
`)
	w, err = s.Build(params)
	require.NoError(t, err)
	path, ok = w.Path.(*pathway.Polyline)
	require.True(t, ok)
	assert.Greater(t, path.TotalLength(), 1000.0)
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"duplicate name", `
vehicles:
  - name: a
  - name: a
`, "duplicate name"},
		{"missing name", `
vehicles:
  - position: [0, 0, 0]
`, "name is required"},
		{"unknown behaviour", `
vehicles:
  - name: a
    behaviours: [{type: teleport}]
`, `unknown behaviour type "teleport"`},
		{"missing target vehicle", `
vehicles:
  - name: a
    behaviours: [{type: pursuit, targetVehicle: ghost}]
`, `targetVehicle "ghost" does not exist`},
		{"self target", `
vehicles:
  - name: a
    behaviours: [{type: evasion, targetVehicle: a}]
`, "cannot target itself"},
		{"path required", `
vehicles:
  - name: a
    behaviours: [{type: followPath}]
`, "followPath needs a path"},
		{"cube", `
obstacles:
  - shape: cube
    size: 2
vehicles:
  - name: a
`, "unsupported obstacle shape"},
		{"two path sources", `
path:
  points: [[0, 0, 0], [1, 0, 0]]
  wkt: LINESTRING(0 0, 1 0)
vehicles:
  - name: a
`, "exactly one of"},
		{"zero length segment", `
path:
  points: [[0, 0, 0], [0, 0, 0]]
vehicles:
  - name: a
`, "zero length"},
		{"parallel basis", `
vehicles:
  - name: a
    forward: [0, 1, 0]
`, "must not be parallel"},
		{"seek without target", `
vehicles:
  - name: a
    behaviours: [{type: seek}]
`, "target"},
		{"too fast", `
vehicles:
  - name: a
    velocity: 3
`, "velocity 3 outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseYAML(t, tt.body).Build(params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidScenario))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuild_ReportsAllProblems(t *testing.T) {
	s := parseYAML(t, `
vehicles:
  - name: a
    behaviours: [{type: teleport}]
  - name: b
    behaviours: [{type: followPath}]
`)
	_, err := s.Build(params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teleport")
	assert.Contains(t, err.Error(), "needs a path")
}

func TestBuild_CubeErrorIsTyped(t *testing.T) {
	s := parseYAML(t, `
obstacles: [{shape: cube, size: 1}]
`)
	_, err := s.Build(params)
	assert.ErrorIs(t, err, obstacle.ErrUnsupportedShape)
}

func TestNormalized_FillsDefaults(t *testing.T) {
	s := parseYAML(t, `
path:
  points: [[0, 0, 0], [1, 0, 0]]
obstacles:
  - radius: 1
vehicles:
  - name: a
    behaviours: [{type: avoidNeighbors}, {type: wander, weight: 0.3}]
`)
	n := s.Normalized()

	assert.Equal(t, defaultName, n.Name)
	assert.Equal(t, defaultPathRadius, n.Path.Radius)
	assert.Equal(t, shapeSphere, n.Obstacles[0].Shape)
	v := n.Vehicles[0]
	assert.Equal(t, []float64{0, 0, 1}, v.Forward)
	assert.Equal(t, 1.0, v.Mass)
	assert.True(t, *v.Behaviours[0].Priority)
	assert.Equal(t, 1.0, v.Behaviours[0].Weight)
	assert.False(t, *v.Behaviours[1].Priority)
	assert.Equal(t, 0.3, v.Behaviours[1].Weight)

	// The original is untouched.
	assert.Nil(t, s.Vehicles[0].Behaviours[0].Priority)
	assert.Equal(t, 0.0, s.Path.Radius)
}

func TestDump_RoundTrips(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "corridor.yaml"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Dump(&buf))

	var back Scenario
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, s.Normalized(), &back)

	again, err := Parse(&buf, "yaml")
	require.NoError(t, err)
	_, err = again.Build(params)
	assert.NoError(t, err)
}

func TestSimConfig_Overrides(t *testing.T) {
	base := config.SimConfig{TickRate: 60, MaxTicks: 3600, Workers: 4}

	got := (&Scenario{TickRate: 30}).SimConfig(base)
	assert.Equal(t, 30, got.TickRate)
	assert.Equal(t, 3600, got.MaxTicks)
	assert.Equal(t, 4, got.Workers)
}
