// Package streaming defines the JSON envelope and payloads sent to a live
// run viewer over WebSocket.
package streaming

import (
	"encoding/json"
	"fmt"

	"github.com/steerlab/steering/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartRun    = "start_run"
	TypeEndRun      = "end_run"
	TypeAddAgent    = "add_agent"
	TypeAgentStates = "agent_states"
	TypeCollision   = "collision"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartRunPayload carries the run description.
type StartRunPayload struct {
	Run *core.Run `json:"run"`
}

// AgentStatesPayload carries one batch of states, usually a single tick.
type AgentStatesPayload struct {
	States []core.AgentState `json:"states"`
}

// Marshal builds a JSON-encoded Envelope from a message type and payload.
func Marshal(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}
