// Package monitor reports the progress of a running simulation.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Status is a point-in-time view of a run.
type Status struct {
	Time           time.Time `json:"time"`
	Scenario       string    `json:"scenario"`
	Tick           uint      `json:"tick"`
	MaxTicks       int       `json:"maxTicks"`
	PendingStates  int       `json:"pendingStates"`
	TicksPerSecond float64   `json:"ticksPerSecond"`
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger     *slog.Logger
	Scenario   string
	MaxTicks   int
	Tick       func() uint
	Pending    func() int
	Interval   time.Duration
	StatusFile string // rewritten on every report when set
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}

	lastTick uint
	lastTime time.Time
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Pending == nil {
		deps.Pending = func() int { return 0 }
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Snapshot computes the current status. The rate is measured since the
// previous snapshot.
func (s *Service) Snapshot(now time.Time) Status {
	tick := s.deps.Tick()

	s.mu.Lock()
	var rate float64
	if !s.lastTime.IsZero() {
		if dt := now.Sub(s.lastTime).Seconds(); dt > 0 && tick >= s.lastTick {
			rate = float64(tick-s.lastTick) / dt
		}
	}
	s.lastTick, s.lastTime = tick, now
	s.mu.Unlock()

	return Status{
		Time:           now.UTC(),
		Scenario:       s.deps.Scenario,
		Tick:           tick,
		MaxTicks:       s.deps.MaxTicks,
		PendingStates:  s.deps.Pending(),
		TicksPerSecond: rate,
	}
}

// Report logs the status and writes the status file if one is configured.
func (s *Service) Report(status Status) error {
	s.deps.Logger.Info("Run status",
		"tick", status.Tick,
		"maxTicks", status.MaxTicks,
		"pendingStates", status.PendingStates,
		"ticksPerSecond", fmt.Sprintf("%.1f", status.TicksPerSecond),
	)

	if s.deps.StatusFile == "" {
		return nil
	}
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	if err := os.WriteFile(s.deps.StatusFile, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing status file: %w", err)
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	if s.deps.Tick == nil {
		return fmt.Errorf("monitor needs a tick source")
	}
	if s.deps.Interval <= 0 {
		return fmt.Errorf("monitor interval must be positive, got %s", s.deps.Interval)
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug("Starting status monitor", "interval", s.deps.Interval)
		s.Snapshot(time.Now())

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				if err := s.Report(s.Snapshot(now)); err != nil {
					s.deps.Logger.Error("Error reporting status", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	s.isRunning = false
	done := s.done
	s.mu.Unlock()
	<-done
}
