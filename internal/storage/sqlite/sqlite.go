// Package sqlitestorage implements the recording backend using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the only SQLite-specific concerns are creating
// the database and dumping it to disk.
package sqlitestorage

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/internal/database"
	gormstorage "github.com/steerlab/steering/internal/storage/gorm"
	"github.com/steerlab/steering/pkg/core"

	"gorm.io/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	cfg config.SQLiteConfig
	log *slog.Logger

	mu             sync.Mutex
	dumpMu         sync.Mutex // serializes VACUUM INTO
	dumpPath       string
	lastExportPath string
	stopChan       chan struct{}
	wg             sync.WaitGroup
}

// New creates a new SQLite storage backend. With cfg.Path set the database
// lives in that file and no dumps are taken; otherwise it is kept in memory
// and dumped to cfg.OutputDir.
func New(cfg config.SQLiteConfig) *Backend {
	b := &Backend{
		cfg: cfg,
		log: slog.Default(),
	}
	b.Backend = gormstorage.New(gormstorage.Dependencies{
		Logger: b.log,
		Open: func() (*gorm.DB, error) {
			db, err := database.GetSqliteDB(cfg.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to create SQLite DB: %w", err)
			}
			return db, nil
		},
	})
	return b
}

func (b *Backend) inMemory() bool {
	return b.cfg.Path == ""
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	b.stopChan = make(chan struct{})
	if b.inMemory() && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine and closes the embedded GORM backend.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.wg.Wait()
		b.stopChan = nil
	}
	return b.Backend.Close()
}

// StartRun records the run and picks the dump file name for it.
func (b *Backend) StartRun(run *core.Run) error {
	if err := b.Backend.StartRun(run); err != nil {
		return err
	}

	if b.inMemory() {
		b.mu.Lock()
		b.dumpPath = filepath.Join(b.cfg.OutputDir, run.FileStem()+".db")
		b.mu.Unlock()
	}
	return nil
}

// EndRun flushes the run and writes the final dump.
func (b *Backend) EndRun() error {
	if err := b.Backend.EndRun(); err != nil {
		return err
	}

	if !b.inMemory() {
		b.mu.Lock()
		b.lastExportPath = b.cfg.Path
		b.mu.Unlock()
		return nil
	}

	path := b.currentDumpPath()
	if err := b.dump(path); err != nil {
		return err
	}
	b.mu.Lock()
	b.lastExportPath = path
	b.dumpPath = ""
	b.mu.Unlock()
	return nil
}

// ExportedFilePath returns the database file of the last finished run.
func (b *Backend) ExportedFilePath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastExportPath
}

func (b *Backend) dump(path string) error {
	b.dumpMu.Lock()
	defer b.dumpMu.Unlock()
	return database.DumpMemoryDBToDisk(b.DB(), path)
}

func (b *Backend) currentDumpPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dumpPath
}

// dumpLoop periodically dumps the in-memory database so a crash loses at
// most one interval of data.
func (b *Backend) dumpLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			path := b.currentDumpPath()
			if path == "" {
				continue
			}
			if err := b.Flush(); err != nil {
				b.log.Warn("Periodic flush failed", "error", err)
			}
			start := time.Now()
			if err := b.dump(path); err != nil {
				b.log.Error("Periodic dump failed", "path", path, "error", err)
				continue
			}
			b.log.Debug("Dumped memory DB to disk", "path", path, "duration", time.Since(start))
		}
	}
}
