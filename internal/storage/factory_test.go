// internal/storage/factory_test.go
package storage_test

import (
	"testing"

	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/internal/storage"
	gormstorage "github.com/steerlab/steering/internal/storage/gorm"
	"github.com/steerlab/steering/internal/storage/influx"
	"github.com/steerlab/steering/internal/storage/memory"
	sqlitestorage "github.com/steerlab/steering/internal/storage/sqlite"
	"github.com/steerlab/steering/internal/storage/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks
var (
	_ storage.Backend  = (*memory.Backend)(nil)
	_ storage.Exporter = (*memory.Backend)(nil)
	_ storage.Backend  = (*gormstorage.Backend)(nil)
	_ storage.Backend  = (*sqlitestorage.Backend)(nil)
	_ storage.Exporter = (*sqlitestorage.Backend)(nil)
	_ storage.Backend  = (*influx.Backend)(nil)
	_ storage.Backend  = (*websocket.Backend)(nil)
)

func TestNew_Types(t *testing.T) {
	tests := []struct {
		typ  string
		want any
	}{
		{"", &memory.Backend{}},
		{storage.TypeMemory, &memory.Backend{}},
		{storage.TypeSQLite, &sqlitestorage.Backend{}},
		{storage.TypePostgres, &gormstorage.Backend{}},
		{storage.TypeInflux, &influx.Backend{}},
		{storage.TypeWebSocket, &websocket.Backend{}},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			b, err := storage.New(config.StorageConfig{Type: tt.typ})
			require.NoError(t, err)
			assert.IsType(t, tt.want, b)
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := storage.New(config.StorageConfig{Type: "cassandra"})
	assert.ErrorIs(t, err, storage.ErrUnknownBackend)
	assert.Contains(t, err.Error(), "cassandra")
}
