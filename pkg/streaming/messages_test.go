package streaming

import (
	"encoding/json"
	"testing"

	"github.com/steerlab/steering/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Envelope(t *testing.T) {
	data, err := Marshal(TypeAgentStates, AgentStatesPayload{
		States: []core.AgentState{{AgentID: 3, Tick: 9, Position: core.Position3D{X: 1.5}}},
	})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, TypeAgentStates, env.Type)

	var payload AgentStatesPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	require.Len(t, payload.States, 1)
	assert.Equal(t, uint16(3), payload.States[0].AgentID)
	assert.Equal(t, 1.5, payload.States[0].Position.X)
}

func TestMarshal_NilPayload(t *testing.T) {
	data, err := Marshal(TypeEndRun, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"end_run","payload":null}`, string(data))
}

func TestMarshal_Unencodable(t *testing.T) {
	_, err := Marshal(TypeStartRun, StartRunPayload{Run: &core.Run{
		Parameters: map[string]any{"bad": make(chan int)},
	}})
	assert.Error(t, err)
}
