// Package gormstorage implements the recording backend on top of GORM with
// internal queues and a background DB writer goroutine. It serves both the
// postgres and sqlite storage types.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/internal/database"
	"github.com/steerlab/steering/internal/model"
	"github.com/steerlab/steering/internal/model/convert"
	"github.com/steerlab/steering/internal/queue"
	"github.com/steerlab/steering/pkg/core"

	"gorm.io/gorm"
)

// DefaultFlushInterval is how often the writer drains its queues.
const DefaultFlushInterval = 2 * time.Second

// ErrNoRun is returned when recording before StartRun.
var ErrNoRun = errors.New("no run in progress")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
	// Open is called by Init when DB is nil.
	Open          func() (*gorm.DB, error)
	FlushInterval time.Duration
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	AgentStates     *queue.Queue[model.AgentState]
	CollisionEvents *queue.Queue[model.CollisionEvent]
}

func newQueues() *queues {
	return &queues{
		AgentStates:     queue.New[model.AgentState](),
		CollisionEvents: queue.New[model.CollisionEvent](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps     Dependencies
	queues   *queues
	runID    atomic.Uint64
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps: deps,
	}
}

// NewPostgres creates a backend that connects to postgres on Init.
func NewPostgres(cfg config.DBConfig) *Backend {
	return New(Dependencies{
		Open: func() (*gorm.DB, error) {
			return database.GetPostgresDB(cfg)
		},
	})
}

// Init opens the connection if needed, migrates the schema and starts the
// DB writer goroutine.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if b.deps.DB == nil {
		if b.deps.Open == nil {
			return fmt.Errorf("no database configured")
		}
		db, err := b.deps.Open()
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Ping(db); err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil && db.Name() == "postgres" {
			sqlDB.SetMaxOpenConns(10)
		}
		b.deps.DB = db
	}

	b.deps.Logger.Info("Migrating schema", "dialect", b.deps.DB.Name())
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.startDBWriter()
	return nil
}

// DB exposes the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Close stops the DB writer goroutine after a final flush.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	b.stopOnce.Do(func() {
		close(b.stopChan)
	})
	b.wg.Wait()
	return b.Flush()
}

// StartRun inserts the run row synchronously so its ID can stamp every
// queued record.
func (b *Backend) StartRun(run *core.Run) error {
	gormRun, err := convert.CoreToRun(*run)
	if err != nil {
		return err
	}
	if err := b.deps.DB.Create(&gormRun).Error; err != nil {
		return fmt.Errorf("failed to insert new run: %w", err)
	}
	b.runID.Store(uint64(gormRun.ID))
	return nil
}

// RunID returns the database ID of the current run, 0 when none.
func (b *Backend) RunID() uint {
	return uint(b.runID.Load())
}

// EndRun flushes pending records and stamps the run's end time.
func (b *Backend) EndRun() error {
	runID := b.RunID()
	if runID == 0 {
		return ErrNoRun
	}
	if err := b.Flush(); err != nil {
		return err
	}
	err := b.deps.DB.Model(&model.Run{}).Where("id = ?", runID).Update("end_time", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to close run: %w", err)
	}
	b.runID.Store(0)
	return nil
}

// AddAgent inserts the agent synchronously; agents are low-volume.
func (b *Backend) AddAgent(a *core.Agent) error {
	runID := b.RunID()
	if runID == 0 {
		return ErrNoRun
	}
	gormObj := convert.CoreToAgent(*a)
	gormObj.RunID = runID
	if err := b.deps.DB.Create(&gormObj).Error; err != nil {
		return fmt.Errorf("failed to insert agent: %w", err)
	}
	return nil
}

// RecordAgentStates converts and queues states.
func (b *Backend) RecordAgentStates(states []core.AgentState) error {
	runID := b.RunID()
	if runID == 0 {
		return ErrNoRun
	}
	items := make([]model.AgentState, len(states))
	for i, s := range states {
		items[i] = convert.CoreToAgentState(s)
		items[i].RunID = runID
	}
	b.queues.AgentStates.Push(items...)
	return nil
}

// RecordCollision converts and queues a collision event.
func (b *Backend) RecordCollision(e *core.CollisionEvent) error {
	runID := b.RunID()
	if runID == 0 {
		return ErrNoRun
	}
	gormObj := convert.CoreToCollisionEvent(*e)
	gormObj.RunID = runID
	b.queues.CollisionEvents.Push(gormObj)
	return nil
}

// Flush writes everything queued so far.
func (b *Backend) Flush() error {
	if b.queues == nil {
		return nil
	}
	return errors.Join(
		writeQueue(b.deps.DB, b.queues.AgentStates, "agent states", b.deps.Logger),
		writeQueue(b.deps.DB, b.queues.CollisionEvents, "collision events", b.deps.Logger),
	)
}

// startDBWriter starts the background goroutine that periodically drains queues into the DB.
func (b *Backend) startDBWriter() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(b.deps.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-b.stopChan:
				return
			case <-ticker.C:
				_ = b.Flush()
			}
		}
	}()
}

// writeQueue writes all items from a queue to the database in a transaction.
// Failed items are pushed back for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger) error {
	if q.Empty() {
		return nil
	}

	tx := db.Begin()
	items := q.Drain()
	if err := tx.Create(&items).Error; err != nil {
		log.Error("Error writing queue", "queue", name, "count", len(items), "error", err)
		tx.Rollback()
		q.Push(items...)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := tx.Commit().Error; err != nil {
		q.Push(items...)
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}
	log.Debug("Wrote queue", "queue", name, "count", len(items))
	return nil
}
