package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/internal/queue"
	"github.com/steerlab/steering/internal/storage"
	"github.com/steerlab/steering/pkg/core"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

const defaultTickRate = 60

// ErrNonFiniteForce is returned when a behaviour produces NaN or Inf.
var ErrNonFiniteForce = errors.New("non-finite steering force")

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Ticks      uint
	States     int
	Collisions int
	Cancelled  bool
	Duration   time.Duration
	ExportPath string // set when the backend writes a file
}

// Runner drives a World through the tick loop and records it.
type Runner struct {
	world   *World
	backend storage.Backend
	cfg     config.SimConfig

	log      *slog.Logger
	meter    metric.Meter
	realtime bool
	now      func() time.Time

	states     *queue.Queue[core.AgentState]
	collisions *queue.Queue[core.CollisionEvent]
	contacts   *contactTracker

	tick atomic.Uint64
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithMeter records metrics on m instead of the global meter.
func WithMeter(m metric.Meter) Option {
	return func(r *Runner) { r.meter = m }
}

// WithRealtime paces ticks to wall-clock time.
func WithRealtime() Option {
	return func(r *Runner) { r.realtime = true }
}

// WithClock overrides the source of the run start time.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner prepares a runner. Missing tick rate and worker count fall back
// to 60 Hz and a single worker. MaxTicks <= 0 runs until ctx is cancelled,
// FlushEvery <= 0 flushes only at the end.
func NewRunner(world *World, backend storage.Backend, cfg config.SimConfig, opts ...Option) *Runner {
	if cfg.TickRate <= 0 {
		cfg.TickRate = defaultTickRate
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	r := &Runner{
		world:      world,
		backend:    backend,
		cfg:        cfg,
		log:        slog.Default(),
		now:        time.Now,
		states:     queue.New[core.AgentState](),
		collisions: queue.New[core.CollisionEvent](),
		contacts:   newContactTracker(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.meter == nil {
		r.meter = meter()
	}
	return r
}

// CurrentTick is the number of ticks completed so far. Safe to call while
// Run is in progress.
func (r *Runner) CurrentTick() uint {
	return uint(r.tick.Load())
}

// Pending is the number of agent states waiting for the next flush.
func (r *Runner) Pending() int {
	return r.states.Len()
}

// Run simulates until MaxTicks or ctx is done. Cancellation is not an error:
// the run is closed normally and the summary is marked Cancelled.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	m, err := newMetrics(r.meter, r.states.Len)
	if err != nil {
		return Summary{}, err
	}
	defer m.close()

	started := time.Now()
	run := &core.Run{
		ID:           uuid.NewString(),
		ScenarioName: r.world.Name,
		StartTime:    r.now().UTC(),
		TickRate:     float64(r.cfg.TickRate),
		Seed:         r.world.Seed,
		PathWKT:      r.world.PathWKT,
		Parameters:   r.world.Params.Map(),
	}
	summary := Summary{RunID: run.ID}
	log := r.log.With("run", run.ID, "scenario", run.ScenarioName)

	if err := r.backend.StartRun(run); err != nil {
		return summary, fmt.Errorf("starting run: %w", err)
	}
	for _, a := range r.world.Agents {
		if err := r.backend.AddAgent(a.Record()); err != nil {
			return summary, fmt.Errorf("adding agent %q: %w", a.Name, err)
		}
	}
	log.Info("Run started", "agents", len(r.world.Agents), "obstacles", len(r.world.Obstacles),
		"tickRate", r.cfg.TickRate, "maxTicks", r.cfg.MaxTicks)

	elapsed := 1 / float64(r.cfg.TickRate)

	var ticker *time.Ticker
	if r.realtime {
		ticker = time.NewTicker(r.cfg.TickDuration())
		defer ticker.Stop()
	}

	var runErr error
	var tick uint
loop:
	for r.cfg.MaxTicks <= 0 || tick < uint(r.cfg.MaxTicks) {
		if ticker != nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		if runErr = r.step(ctx, m, tick, elapsed); runErr != nil {
			break loop
		}
		tick++
		r.tick.Store(uint64(tick))

		if r.cfg.FlushEvery > 0 && tick%uint(r.cfg.FlushEvery) == 0 {
			n, c, err := r.flush()
			summary.States += n
			summary.Collisions += c
			if err != nil {
				runErr = err
				break loop
			}
			log.Debug("Flushed records", "tick", tick, "states", n, "collisions", c)
		}
	}
	summary.Ticks = tick

	n, c, flushErr := r.flush()
	summary.States += n
	summary.Collisions += c

	endErr := r.backend.EndRun()
	if endErr != nil {
		endErr = fmt.Errorf("ending run: %w", endErr)
	}
	if e, ok := r.backend.(storage.Exporter); ok {
		summary.ExportPath = e.ExportedFilePath()
	}
	summary.Duration = time.Since(started)

	log.Info("Run finished", "ticks", summary.Ticks, "states", summary.States,
		"collisions", summary.Collisions, "cancelled", summary.Cancelled,
		"duration", summary.Duration)

	return summary, errors.Join(runErr, flushErr, endErr)
}

// step advances every agent by one tick. Forces are computed concurrently
// against a snapshot taken before any vehicle moves.
func (r *Runner) step(ctx context.Context, m *metrics, tick uint, elapsed float64) error {
	began := time.Now()
	agents := r.world.Agents

	snapshot := make([]*core.Vehicle, len(agents))
	for i, a := range agents {
		snapshot[i] = a.Vehicle.Snapshot()
	}

	forces := make([]mgl64.Vec3, len(agents))
	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Workers)
	for i := range agents {
		g.Go(func() error {
			f := Steer(r.world, i, snapshot, elapsed)
			if !finite(f) {
				return fmt.Errorf("%w: agent %q at tick %d", ErrNonFiniteForce, agents[i].Name, tick)
			}
			forces[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	simTime := float64(tick+1) * elapsed
	states := make([]core.AgentState, len(agents))
	for i, a := range agents {
		ApplySteeringForce(a.Vehicle, forces[i], elapsed)
		states[i] = core.StateFromVehicle(a.ID, tick, simTime, a.Vehicle, forces[i])
		m.steering.Record(ctx, forces[i].Len())
	}
	r.states.Push(states...)

	events := r.contacts.detect(r.world, tick)
	for _, e := range events {
		m.collision(ctx, string(e.Kind))
	}
	r.collisions.Push(events...)

	m.ticks.Add(ctx, 1)
	m.tickDuration.Record(ctx, float64(time.Since(began).Microseconds())/1000)
	return nil
}

// flush hands everything queued to the backend.
func (r *Runner) flush() (states, collisions int, err error) {
	pending := r.states.Drain()
	if len(pending) > 0 {
		if err := r.backend.RecordAgentStates(pending); err != nil {
			return 0, 0, fmt.Errorf("recording states: %w", err)
		}
	}

	var errs []error
	events := r.collisions.Drain()
	for i := range events {
		if err := r.backend.RecordCollision(&events[i]); err != nil {
			errs = append(errs, err)
			continue
		}
		collisions++
	}
	if len(errs) > 0 {
		err = fmt.Errorf("recording collisions: %w", errors.Join(errs...))
	}
	return len(pending), collisions, err
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
