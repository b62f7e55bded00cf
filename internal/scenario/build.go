package scenario

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/steerlab/steering/internal/geo"
	"github.com/steerlab/steering/internal/sim"
	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/obstacle"
	"github.com/steerlab/steering/pkg/pathway"
	"github.com/steerlab/steering/pkg/vecmath"
)

const (
	defaultName       = "scenario"
	defaultPathRadius = 1.0
	shapeSphere       = "sphere"
	shapeCube         = "cube"
)

var (
	defaultForward = []float64{0, 0, 1}
	defaultUp      = []float64{0, 1, 0}
	origin         = []float64{0, 0, 0}
)

// Normalized returns a copy with every default made explicit.
func (s *Scenario) Normalized() *Scenario {
	n := *s
	if n.Name == "" {
		n.Name = defaultName
	}

	if s.Path != nil {
		p := *s.Path
		if p.Radius == 0 {
			p.Radius = defaultPathRadius
		}
		n.Path = &p
	}

	n.Obstacles = make([]Obstacle, len(s.Obstacles))
	for i, o := range s.Obstacles {
		if o.Shape == "" {
			o.Shape = shapeSphere
		}
		if o.Position == nil {
			o.Position = origin
		}
		n.Obstacles[i] = o
	}

	n.Vehicles = make([]Vehicle, len(s.Vehicles))
	for i, v := range s.Vehicles {
		if v.Position == nil {
			v.Position = origin
		}
		if v.Forward == nil {
			v.Forward = defaultForward
		}
		if v.Up == nil {
			v.Up = defaultUp
		}
		v.MaxVelocity = orDefault(v.MaxVelocity, core.DefaultMaximumVelocity)
		v.MaxForce = orDefault(v.MaxForce, core.DefaultMaximumSteeringForce)
		v.Mass = orDefault(v.Mass, core.DefaultMass)
		v.Radius = orDefault(v.Radius, core.DefaultRadius)

		behaviours := make([]Behaviour, len(v.Behaviours))
		for j, b := range v.Behaviours {
			b.Weight = orDefault(b.Weight, 1)
			if b.Priority == nil {
				p := sim.Kind(b.Type).DefaultPriority()
				b.Priority = &p
			}
			behaviours[j] = b
		}
		v.Behaviours = behaviours
		n.Vehicles[i] = v
	}
	return &n
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// PathPoints resolves the pathway control points. It returns nil when the
// scenario has no path.
func (s *Scenario) PathPoints() ([]mgl64.Vec3, error) {
	p := s.Path
	if p == nil {
		return nil, nil
	}

	given := 0
	for _, set := range []bool{len(p.Points) > 0, p.WKT != "", len(p.WGS84) > 0} {
		if set {
			given++
		}
	}
	if given != 1 {
		return nil, errors.New("path needs exactly one of points, wkt or wgs84")
	}

	switch {
	case len(p.Points) > 0:
		return geo.PointsFromArrays(p.Points)
	case p.WKT != "":
		return geo.ParseWKT(p.WKT)
	default:
		return geo.ProjectWGS84(p.WGS84)
	}
}

// BuildPath constructs the pathway. It returns nil when the scenario has no path.
func (s *Scenario) BuildPath() (*pathway.Polyline, []mgl64.Vec3, error) {
	points, err := s.PathPoints()
	if err != nil || points == nil {
		return nil, nil, err
	}
	radius := orDefault(s.Path.Radius, defaultPathRadius)
	pw, err := pathway.New(len(points), points, radius, s.Path.Cyclic)
	if err != nil {
		return nil, nil, err
	}
	return pw, points, nil
}

// Build validates the scenario and turns it into a world ready to run.
// All problems are reported together, each wrapped in ErrInvalidScenario.
func (s *Scenario) Build(params sim.Params) (*sim.World, error) {
	n := s.Normalized()
	var problems []error
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	w := &sim.World{
		Name:   n.Name,
		Seed:   n.Seed,
		Params: params,
	}

	pw, points, err := n.BuildPath()
	if err != nil {
		fail("path: %w", err)
	}
	if pw != nil {
		w.Path = pw
		w.PathWKT = geo.WKT(points)
	}

	for i, o := range n.Obstacles {
		built, err := buildObstacle(o)
		if err != nil {
			fail("obstacle %d: %w", i, err)
			continue
		}
		w.Obstacles = append(w.Obstacles, built)
	}

	if len(n.Vehicles) > math.MaxUint16 {
		fail("too many vehicles: %d", len(n.Vehicles))
	}
	index := make(map[string]int, len(n.Vehicles))
	for i, v := range n.Vehicles {
		if v.Name == "" {
			fail("vehicle %d: name is required", i)
			continue
		}
		if _, dup := index[v.Name]; dup {
			fail("vehicle %q: duplicate name", v.Name)
			continue
		}
		index[v.Name] = i
	}

	for i, v := range n.Vehicles {
		vehicle, err := buildVehicle(v)
		if err != nil {
			fail("vehicle %q: %w", v.Name, err)
			continue
		}

		behaviours := make([]sim.Behaviour, 0, len(v.Behaviours))
		for j, b := range v.Behaviours {
			built, err := buildBehaviour(b, i, index, pw != nil)
			if err != nil {
				fail("vehicle %q behaviour %d: %w", v.Name, j, err)
				continue
			}
			behaviours = append(behaviours, built)
		}

		w.Agents = append(w.Agents, sim.NewAgent(uint16(i), v.Name, vehicle, behaviours, n.Seed))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(problems...))
	}
	return w, nil
}

func vec(c []float64) (mgl64.Vec3, error) {
	if len(c) < 2 || len(c) > 3 {
		return mgl64.Vec3{}, fmt.Errorf("%v: %w", c, geo.ErrInvalidCoordinates)
	}
	var v mgl64.Vec3
	copy(v[:], c)
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return mgl64.Vec3{}, fmt.Errorf("%v: %w", c, geo.ErrInvalidCoordinates)
		}
	}
	return v, nil
}

func buildObstacle(o Obstacle) (obstacle.Obstacle, error) {
	position, err := vec(o.Position)
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}

	var built obstacle.Obstacle
	switch o.Shape {
	case shapeSphere:
		if o.Radius <= 0 {
			return nil, fmt.Errorf("sphere radius must be positive, got %v", o.Radius)
		}
		built = obstacle.NewSphere(o.Radius, position)
	case shapeCube:
		built = obstacle.NewCube(o.Size, position)
	default:
		return nil, fmt.Errorf("%w: %q", obstacle.ErrUnsupportedShape, o.Shape)
	}
	if err := obstacle.Supported(built); err != nil {
		return nil, err
	}
	return built, nil
}

func buildVehicle(v Vehicle) (*core.Vehicle, error) {
	position, err := vec(v.Position)
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	forward, err := vec(v.Forward)
	if err != nil {
		return nil, fmt.Errorf("forward: %w", err)
	}
	up, err := vec(v.Up)
	if err != nil {
		return nil, fmt.Errorf("up: %w", err)
	}

	forward = vecmath.SafeNormalize(forward)
	up = vecmath.SafeNormalize(up)
	if vecmath.IsZero(forward) || vecmath.IsZero(up) {
		return nil, errors.New("forward and up must be non-zero")
	}
	if math.Abs(forward.Dot(up)) > 1-1e-9 {
		return nil, errors.New("forward and up must not be parallel")
	}
	// Up is made perpendicular to forward so the basis is orthonormal.
	up = vecmath.PerpendicularComponent(up, forward).Normalize()

	for name, x := range map[string]float64{
		"maxVelocity": v.MaxVelocity,
		"maxForce":    v.MaxForce,
		"mass":        v.Mass,
		"radius":      v.Radius,
	} {
		if x <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %v", name, x)
		}
	}
	if v.Velocity < 0 || v.Velocity > v.MaxVelocity {
		return nil, fmt.Errorf("velocity %v outside [0, %v]", v.Velocity, v.MaxVelocity)
	}

	vehicle := core.NewVehicleFromUpForward(up, forward, position)
	vehicle.Velocity = v.Velocity
	vehicle.MaximumVelocity = v.MaxVelocity
	vehicle.MaximumSteeringForce = v.MaxForce
	vehicle.Mass = v.Mass
	vehicle.BoundingSphereRadius = v.Radius
	vehicle.VisibilitySphereRadius = v.Radius
	vehicle.LastForward = vehicle.Forward
	vehicle.LastPosition = vehicle.Position
	vehicle.SmoothedPosition = vehicle.Position
	return vehicle, nil
}

func buildBehaviour(b Behaviour, self int, index map[string]int, hasPath bool) (sim.Behaviour, error) {
	kind := sim.Kind(b.Type)
	if !kind.Known() {
		return sim.Behaviour{}, fmt.Errorf("unknown behaviour type %q", b.Type)
	}

	built := sim.Behaviour{
		Kind:               kind,
		Weight:             b.Weight,
		Priority:           *b.Priority,
		Speed:              b.Speed,
		SlowingDistance:    b.SlowingDistance,
		Direction:          b.Direction,
		PredictionTime:     b.PredictionTime,
		MaxPredictionTime:  b.MaxPredictionTime,
		MinTimeToCollision: b.MinTimeToCollision,
		MinSeparation:      b.MinSeparation,
		MaxDistance:        b.MaxDistance,
		CosMaxAngle:        b.CosMaxAngle,
	}

	if kind.NeedsPath() && !hasPath {
		return sim.Behaviour{}, fmt.Errorf("%s needs a path", kind)
	}
	if b.Direction != 0 && b.Direction != 1 && b.Direction != -1 {
		return sim.Behaviour{}, fmt.Errorf("direction must be 1 or -1, got %d", b.Direction)
	}

	if kind.NeedsTarget() {
		target, ok := index[b.TargetVehicle]
		switch {
		case b.TargetVehicle == "":
			return sim.Behaviour{}, fmt.Errorf("%s needs targetVehicle", kind)
		case !ok:
			return sim.Behaviour{}, fmt.Errorf("targetVehicle %q does not exist", b.TargetVehicle)
		case target == self:
			return sim.Behaviour{}, fmt.Errorf("%s cannot target itself", kind)
		}
		built.TargetAgent = target
	}

	switch kind {
	case sim.KindSeek, sim.KindFlee, sim.KindAlternateSeek, sim.KindAlternateFlee, sim.KindArrive:
		target, err := vec(b.Target)
		if err != nil {
			return sim.Behaviour{}, fmt.Errorf("target: %w", err)
		}
		built.Target = target
	}
	return built, nil
}
