package gormstorage

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/internal/database"
	"github.com/steerlab/steering/internal/geo"
	"github.com/steerlab/steering/internal/model"
	"github.com/steerlab/steering/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBackend creates a Backend over a private in-memory sqlite database.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.GetSqliteDB("")
	require.NoError(t, err)

	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func startRun(t *testing.T, b *Backend) {
	t.Helper()
	require.NoError(t, b.StartRun(&core.Run{
		ID:           "run-1",
		ScenarioName: "gorm",
		StartTime:    time.Now(),
		TickRate:     60,
		Seed:         42,
		PathWKT:      geo.WKT([]mgl64.Vec3{{0, 0, 0}, {0, 0, 10}}),
	}))
}

func count(t *testing.T, b *Backend, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, b.DB().Model(m).Count(&n).Error)
	return n
}

func TestInitClose(t *testing.T) {
	b := newTestBackend(t)
	require.NotNil(t, b.queues)
	require.NotNil(t, b.stopChan)

	require.NoError(t, b.Close())
	// Closing twice is harmless.
	require.NoError(t, b.Close())
}

func TestInit_NoDatabase(t *testing.T) {
	b := New(Dependencies{})
	assert.Error(t, b.Init())
}

func TestRecordBeforeStartRun(t *testing.T) {
	b := newTestBackend(t)

	assert.ErrorIs(t, b.AddAgent(&core.Agent{ID: 1}), ErrNoRun)
	assert.ErrorIs(t, b.RecordAgentStates([]core.AgentState{{AgentID: 1}}), ErrNoRun)
	assert.ErrorIs(t, b.RecordCollision(&core.CollisionEvent{}), ErrNoRun)
	assert.ErrorIs(t, b.EndRun(), ErrNoRun)
}

func TestStartRun_AssignsID(t *testing.T) {
	b := newTestBackend(t)
	startRun(t, b)

	assert.NotZero(t, b.RunID())
	assert.Equal(t, int64(1), count(t, b, &model.Run{}))
}

func TestStartRun_StoresPathOnGroundPlane(t *testing.T) {
	points, err := geo.ProjectWGS84([][]float64{{13.40, 52.50}, {13.40, 52.51}})
	require.NoError(t, err)

	for name, path := range map[string][]mgl64.Vec3{
		"due north": {{0, 0, 0}, {0, 0, 40}},
		"wgs84":     points,
	} {
		t.Run(name, func(t *testing.T) {
			b := newTestBackend(t)
			require.NoError(t, b.StartRun(&core.Run{ID: name, StartTime: time.Now(), PathWKT: geo.WKT(path)}))

			var run model.Run
			require.NoError(t, b.DB().First(&run, b.RunID()).Error)
			ls, ok := run.Path.AsLineString()
			require.True(t, ok)
			assert.InDelta(t, path[1].Sub(path[0]).Len(), ls.Length(), 1e-6)
		})
	}
}

func TestAddAgent_InsertsImmediately(t *testing.T) {
	b := newTestBackend(t)
	startRun(t, b)

	require.NoError(t, b.AddAgent(&core.Agent{ID: 7, Name: "scout", Behaviours: []string{"wander"}}))

	var agent model.Agent
	require.NoError(t, b.DB().First(&agent).Error)
	assert.Equal(t, uint16(7), agent.AgentID)
	assert.Equal(t, b.RunID(), agent.RunID)
}

func TestRecordAgentStates_QueuesUntilFlush(t *testing.T) {
	b := newTestBackend(t)
	startRun(t, b)

	require.NoError(t, b.RecordAgentStates([]core.AgentState{
		{AgentID: 1, Tick: 1, Position: core.Position3D{X: 1}},
		{AgentID: 2, Tick: 1, Position: core.Position3D{X: 2}},
	}))
	assert.Equal(t, 2, b.queues.AgentStates.Len())
	assert.Equal(t, int64(0), count(t, b, &model.AgentState{}))

	require.NoError(t, b.Flush())
	assert.True(t, b.queues.AgentStates.Empty())
	assert.Equal(t, int64(2), count(t, b, &model.AgentState{}))
}

func TestEndRun_FlushesAndStampsEndTime(t *testing.T) {
	b := newTestBackend(t)
	startRun(t, b)
	runID := b.RunID()

	require.NoError(t, b.RecordCollision(&core.CollisionEvent{Tick: 3, AgentID: 1, Kind: core.CollisionObstacle}))
	require.NoError(t, b.EndRun())

	assert.Equal(t, int64(1), count(t, b, &model.CollisionEvent{}))
	assert.Zero(t, b.RunID())

	var run model.Run
	require.NoError(t, b.DB().First(&run, runID).Error)
	assert.True(t, run.EndTime.Valid)
}

func TestBackgroundWriter(t *testing.T) {
	db, err := database.GetSqliteDB("")
	require.NoError(t, err)
	b := New(Dependencies{DB: db, FlushInterval: 10 * time.Millisecond})
	require.NoError(t, b.Init())
	defer b.Close()
	startRun(t, b)

	require.NoError(t, b.RecordAgentStates([]core.AgentState{{AgentID: 1, Tick: 1}}))

	assert.Eventually(t, func() bool {
		var n int64
		err := b.DB().Model(&model.AgentState{}).Count(&n).Error
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)
}

func TestNewPostgres_Unreachable(t *testing.T) {
	b := NewPostgres(config.DBConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "postgres",
		Password: "postgres",
		Database: "steersim",
	})
	assert.Error(t, b.Init())
}
