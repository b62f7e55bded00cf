package websocket

import (
	"log/slog"

	"github.com/steerlab/steering/pkg/core"
	"github.com/steerlab/steering/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams run data over WebSocket to a live viewer.
// It implements storage.Backend but not storage.Exporter.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config) *Backend {
	return &Backend{
		conn: newConnection(slog.Default()),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// Dropped is the number of messages lost to a full send buffer.
func (b *Backend) Dropped() uint64 {
	return b.conn.dropped.Load()
}

// Pending is the number of messages not yet written to the socket.
func (b *Backend) Pending() int {
	return b.conn.pending()
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := streaming.Marshal(msgType, payload)
	if err != nil {
		return err
	}
	return b.conn.send(data)
}

// StartRun sends the run description and waits for server ack.
func (b *Backend) StartRun(run *core.Run) error {
	data, err := streaming.Marshal(streaming.TypeStartRun, streaming.StartRunPayload{Run: run})
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartRun, ackTimeout)
}

// EndRun sends end_run and waits for server ack.
func (b *Backend) EndRun() error {
	data, err := streaming.Marshal(streaming.TypeEndRun, nil)
	if err == nil {
		err = b.conn.sendAndWait(data, streaming.TypeEndRun, ackTimeout)
	}

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()

	return err
}

func (b *Backend) AddAgent(a *core.Agent) error {
	return b.sendEnvelope(streaming.TypeAddAgent, a)
}

// RecordAgentStates sends the whole batch as one message.
func (b *Backend) RecordAgentStates(states []core.AgentState) error {
	if len(states) == 0 {
		return nil
	}
	return b.sendEnvelope(streaming.TypeAgentStates, streaming.AgentStatesPayload{States: states})
}

func (b *Backend) RecordCollision(e *core.CollisionEvent) error {
	return b.sendEnvelope(streaming.TypeCollision, e)
}
