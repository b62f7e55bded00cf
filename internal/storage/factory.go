// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/steerlab/steering/internal/config"
	gormstorage "github.com/steerlab/steering/internal/storage/gorm"
	"github.com/steerlab/steering/internal/storage/influx"
	"github.com/steerlab/steering/internal/storage/memory"
	sqlitestorage "github.com/steerlab/steering/internal/storage/sqlite"
	"github.com/steerlab/steering/internal/storage/websocket"
)

// Type names accepted in storage.type.
const (
	TypeMemory    = "memory"
	TypeSQLite    = "sqlite"
	TypePostgres  = "postgres"
	TypeInflux    = "influx"
	TypeWebSocket = "websocket"
)

// New creates a storage backend based on configuration. The backend is not
// yet initialized; callers must call Init.
func New(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case TypeMemory, "":
		return memory.New(cfg.Memory), nil
	case TypeSQLite:
		return sqlitestorage.New(cfg.SQLite), nil
	case TypePostgres:
		return gormstorage.NewPostgres(cfg.Postgres), nil
	case TypeInflux:
		return influx.New(cfg.Influx), nil
	case TypeWebSocket:
		return websocket.New(websocket.Config{URL: cfg.WebSocket.URL, Secret: cfg.WebSocket.Secret}), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Type)
	}
}
