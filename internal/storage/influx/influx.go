// Package influx records runs as InfluxDB v2 points. When the server cannot
// be reached the points are appended to a gzipped line-protocol backup file
// instead.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/pkg/core"
)

// Measurement names.
const (
	MeasurementRun        = "run"
	MeasurementAgent      = "agent"
	MeasurementAgentState = "agent_state"
	MeasurementCollision  = "collision"
)

// retention applied to a bucket created by Init.
const bucketRetentionSeconds = 60 * 60 * 24 * 90 // 90 days

// Backend writes run data to InfluxDB.
type Backend struct {
	cfg config.InfluxConfig
	log *slog.Logger

	client influxdb2.Client
	writer influxdb2_api.WriteAPI

	backupFile   *os.File
	backupWriter *gzip.Writer

	mu  sync.Mutex
	run *core.Run
}

// New creates a new InfluxDB backend. Nothing is contacted until Init.
func New(cfg config.InfluxConfig) *Backend {
	return &Backend{
		cfg: cfg,
		log: slog.Default(),
	}
}

// Init connects to InfluxDB, falling back to the backup file when the
// server does not answer a ping.
func (b *Backend) Init() error {
	b.client = influxdb2.NewClientWithOptions(
		b.cfg.ServerURL(),
		b.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	running, err := b.client.Ping(ctx)
	if err != nil || !running {
		b.client.Close()
		b.client = nil
		if b.cfg.BackupPath == "" {
			return fmt.Errorf("influxdb at %s is unreachable: %v", b.cfg.ServerURL(), err)
		}
		b.log.Warn("InfluxDB unreachable, writing to backup file", "backupPath", b.cfg.BackupPath, "error", err)
		return b.openBackup()
	}

	if err := b.ensureBucket(ctx); err != nil {
		return err
	}

	b.writer = b.client.WriteAPI(b.cfg.Org, b.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			b.log.Error("Error sending data to InfluxDB", "bucket", b.cfg.Bucket, "error", writeErr)
		}
	}(b.writer.Errors())

	b.log.Info("InfluxDB client initialized", "url", b.cfg.ServerURL(), "bucket", b.cfg.Bucket)
	return nil
}

func (b *Backend) openBackup() error {
	if err := os.MkdirAll(filepath.Dir(b.cfg.BackupPath), 0755); err != nil {
		return fmt.Errorf("error creating backup directory: %w", err)
	}
	file, err := os.OpenFile(b.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	b.backupFile = file
	b.backupWriter = gzip.NewWriter(file)
	return nil
}

// ensureBucket creates the organization and bucket when missing.
func (b *Backend) ensureBucket(ctx context.Context) error {
	orgs := b.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, b.cfg.Org)
	if err != nil {
		b.log.Info("Organization not found, creating", "org", b.cfg.Org)
		org, err = orgs.CreateOrganizationWithName(ctx, b.cfg.Org)
		if err != nil {
			return fmt.Errorf("error creating organization %s: %w", b.cfg.Org, err)
		}
	}

	buckets := b.client.BucketsAPI()
	if _, err := buckets.FindBucketByName(ctx, b.cfg.Bucket); err != nil {
		b.log.Info("Bucket not found, creating", "bucket", b.cfg.Bucket)
		rule := domain.RetentionRuleTypeExpire
		_, err = buckets.CreateBucketWithName(ctx, org, b.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: bucketRetentionSeconds,
		})
		if err != nil {
			return fmt.Errorf("error creating bucket %s: %w", b.cfg.Bucket, err)
		}
	}
	return nil
}

// Close flushes pending points and releases the client or backup file.
func (b *Backend) Close() error {
	var errs []error
	if b.writer != nil {
		b.writer.Flush()
		b.writer = nil
	}
	if b.client != nil {
		b.client.Close()
		b.client = nil
	}
	if b.backupWriter != nil {
		errs = append(errs, b.backupWriter.Close())
		b.backupWriter = nil
	}
	if b.backupFile != nil {
		errs = append(errs, b.backupFile.Close())
		b.backupFile = nil
	}
	return errors.Join(errs...)
}

// StartRun writes a run marker point.
func (b *Backend) StartRun(run *core.Run) error {
	b.mu.Lock()
	b.run = run
	b.mu.Unlock()

	p := influxdb2_write.NewPointWithMeasurement(MeasurementRun).
		AddTag("run", run.ID).
		AddTag("scenario", run.ScenarioName).
		AddField("tickRate", run.TickRate).
		AddField("seed", run.Seed).
		AddField("event", "start").
		SetTime(run.StartTime)
	return b.writePoint(p)
}

// EndRun writes the closing marker and flushes.
func (b *Backend) EndRun() error {
	run := b.currentRun()
	if run == nil {
		return fmt.Errorf("no run in progress")
	}

	p := influxdb2_write.NewPointWithMeasurement(MeasurementRun).
		AddTag("run", run.ID).
		AddTag("scenario", run.ScenarioName).
		AddField("event", "end").
		SetTime(time.Now())
	if err := b.writePoint(p); err != nil {
		return err
	}
	if b.writer != nil {
		b.writer.Flush()
	}
	if b.backupWriter != nil {
		if err := b.backupWriter.Flush(); err != nil {
			return fmt.Errorf("error flushing InfluxDB backup file: %w", err)
		}
	}

	b.mu.Lock()
	b.run = nil
	b.mu.Unlock()
	return nil
}

// AddAgent writes an agent registration point.
func (b *Backend) AddAgent(a *core.Agent) error {
	run := b.currentRun()
	if run == nil {
		return fmt.Errorf("no run in progress")
	}
	p := influxdb2_write.NewPointWithMeasurement(MeasurementAgent).
		AddTag("run", run.ID).
		AddTag("agent", strconv.Itoa(int(a.ID))).
		AddField("name", a.Name).
		AddField("joinTick", a.JoinTick).
		SetTime(b.tickTime(run, float64(a.JoinTick)/nonZero(run.TickRate)))
	return b.writePoint(p)
}

// RecordAgentStates writes one point per state, timestamped at run start
// plus simulated time.
func (b *Backend) RecordAgentStates(states []core.AgentState) error {
	run := b.currentRun()
	if run == nil {
		return fmt.Errorf("no run in progress")
	}
	for _, s := range states {
		if err := b.writePoint(StatePoint(run, s)); err != nil {
			return err
		}
	}
	return nil
}

// RecordCollision writes a collision point.
func (b *Backend) RecordCollision(e *core.CollisionEvent) error {
	run := b.currentRun()
	if run == nil {
		return fmt.Errorf("no run in progress")
	}
	p := influxdb2_write.NewPointWithMeasurement(MeasurementCollision).
		AddTag("run", run.ID).
		AddTag("agent", strconv.Itoa(int(e.AgentID))).
		AddTag("kind", string(e.Kind)).
		AddField("tick", e.Tick).
		AddField("other", e.OtherID).
		AddField("x", e.Contact.X).
		AddField("y", e.Contact.Y).
		AddField("z", e.Contact.Z).
		SetTime(b.tickTime(run, float64(e.Tick)/nonZero(run.TickRate)))
	return b.writePoint(p)
}

// StatePoint builds the agent_state point for s.
func StatePoint(run *core.Run, s core.AgentState) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement(MeasurementAgentState).
		AddTag("run", run.ID).
		AddTag("agent", strconv.Itoa(int(s.AgentID))).
		AddField("tick", s.Tick).
		AddField("x", s.Position.X).
		AddField("y", s.Position.Y).
		AddField("z", s.Position.Z).
		AddField("speed", s.Velocity).
		AddField("steer_x", s.Steering.X).
		AddField("steer_y", s.Steering.Y).
		AddField("steer_z", s.Steering.Z).
		AddField("curvature", s.Curvature).
		SetTime(run.StartTime.Add(time.Duration(s.SimTime * float64(time.Second))))
}

func (b *Backend) tickTime(run *core.Run, seconds float64) time.Time {
	return run.StartTime.Add(time.Duration(seconds * float64(time.Second)))
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func (b *Backend) currentRun() *core.Run {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.run
}

// writePoint sends a point to InfluxDB or the backup file.
func (b *Backend) writePoint(point *influxdb2_write.Point) error {
	if b.writer != nil {
		b.writer.WritePoint(point)
		return nil
	}
	if b.backupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}

	// PointToLineProtocol terminates the line itself.
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.backupWriter.Write([]byte(lineProtocol)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}
