// Package scenario loads the description of a simulation run: the pathway,
// the obstacles and every vehicle with its behaviours.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/steerlab/steering/internal/config"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScenario wraps every validation failure reported by Build.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is the file format read by Load.
type Scenario struct {
	Name      string     `mapstructure:"name" yaml:"name"`
	Seed      uint64     `mapstructure:"seed" yaml:"seed"`
	TickRate  int        `mapstructure:"tickRate" yaml:"tickRate,omitempty"`
	MaxTicks  int        `mapstructure:"maxTicks" yaml:"maxTicks,omitempty"`
	Path      *Path      `mapstructure:"path" yaml:"path,omitempty"`
	Obstacles []Obstacle `mapstructure:"obstacles" yaml:"obstacles,omitempty"`
	Vehicles  []Vehicle  `mapstructure:"vehicles" yaml:"vehicles"`
}

// Path is given as exactly one of Points, WKT or WGS84.
type Path struct {
	Points [][]float64 `mapstructure:"points" yaml:"points,omitempty,flow"`
	WKT    string      `mapstructure:"wkt" yaml:"wkt,omitempty"`
	WGS84  [][]float64 `mapstructure:"wgs84" yaml:"wgs84,omitempty,flow"` // [lon, lat, elevation]
	Radius float64     `mapstructure:"radius" yaml:"radius"`
	Cyclic bool        `mapstructure:"cyclic" yaml:"cyclic"`
}

// Obstacle is a sphere (Radius) or a cube (Size).
type Obstacle struct {
	Shape    string    `mapstructure:"shape" yaml:"shape"`
	Position []float64 `mapstructure:"position" yaml:"position,flow"`
	Radius   float64   `mapstructure:"radius" yaml:"radius,omitempty"`
	Size     float64   `mapstructure:"size" yaml:"size,omitempty"`
}

// Vehicle is one agent. Zero kinematic values take the vehicle defaults.
type Vehicle struct {
	Name        string      `mapstructure:"name" yaml:"name"`
	Position    []float64   `mapstructure:"position" yaml:"position,flow"`
	Forward     []float64   `mapstructure:"forward" yaml:"forward,flow"`
	Up          []float64   `mapstructure:"up" yaml:"up,flow"`
	Velocity    float64     `mapstructure:"velocity" yaml:"velocity"`
	MaxVelocity float64     `mapstructure:"maxVelocity" yaml:"maxVelocity"`
	MaxForce    float64     `mapstructure:"maxForce" yaml:"maxForce"`
	Mass        float64     `mapstructure:"mass" yaml:"mass"`
	Radius      float64     `mapstructure:"radius" yaml:"radius"`
	Behaviours  []Behaviour `mapstructure:"behaviours" yaml:"behaviours"`
}

// Behaviour configures one steering behaviour. Parameters a type does not
// use are ignored; zero tunables use the shared steering settings.
type Behaviour struct {
	Type     string  `mapstructure:"type" yaml:"type"`
	Weight   float64 `mapstructure:"weight" yaml:"weight"`
	Priority *bool   `mapstructure:"priority" yaml:"priority"`

	Target          []float64 `mapstructure:"target" yaml:"target,omitempty,flow"`
	TargetVehicle   string    `mapstructure:"targetVehicle" yaml:"targetVehicle,omitempty"`
	Speed           float64   `mapstructure:"speed" yaml:"speed,omitempty"`
	SlowingDistance float64   `mapstructure:"slowingDistance" yaml:"slowingDistance,omitempty"`
	Direction       int       `mapstructure:"direction" yaml:"direction,omitempty"`

	PredictionTime     float64 `mapstructure:"predictionTime" yaml:"predictionTime,omitempty"`
	MaxPredictionTime  float64 `mapstructure:"maxPredictionTime" yaml:"maxPredictionTime,omitempty"`
	MinTimeToCollision float64 `mapstructure:"minTimeToCollision" yaml:"minTimeToCollision,omitempty"`
	MinSeparation      float64 `mapstructure:"minSeparation" yaml:"minSeparation,omitempty"`
	MaxDistance        float64 `mapstructure:"maxDistance" yaml:"maxDistance,omitempty"`
	CosMaxAngle        float64 `mapstructure:"cosMaxAngle" yaml:"cosMaxAngle,omitempty"`
}

// Load reads a JSON or YAML scenario, choosing the format by extension.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "yml" {
		format = "yaml"
	}
	s, err := Parse(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario in the given format ("json" or "yaml").
func Parse(r io.Reader, format string) (*Scenario, error) {
	switch format {
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", format)
	}

	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}

	var s Scenario
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	return &s, nil
}

// SimConfig returns base with the scenario's tick settings applied.
func (s *Scenario) SimConfig(base config.SimConfig) config.SimConfig {
	if s.TickRate > 0 {
		base.TickRate = s.TickRate
	}
	if s.MaxTicks > 0 {
		base.MaxTicks = s.MaxTicks
	}
	return base
}

// Dump writes the scenario with defaults filled in as YAML.
func (s *Scenario) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.Normalized()); err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}
	return enc.Close()
}
