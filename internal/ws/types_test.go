package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorMessage(t *testing.T) {
	raw, err := json.Marshal(NewErrorMessage(`illegal "move"`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","payload":{"error":"illegal \"move\""}}`, string(raw))
}

func TestMessage_RoundTrip(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"type":"undo"}`), &msg))
	assert.Equal(t, MessageTypeUndo, msg.Type)
	assert.Empty(t, msg.Payload)

	out, err := NewMessage(MessageTypeBoardState, map[string]string{"fen": "8/8/8/8/8/8/8/8 w - - 0 1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fen":"8/8/8/8/8/8/8/8 w - - 0 1"}`, string(out.Payload))
}
