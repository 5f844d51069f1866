package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMessage = `{
	"id": "0c6a3db1-40cb-4222-ae80-b013a9c164af",
	"timestamp": "2026-08-01T10:00:00Z",
	"sender": "worker-1",
	"type": "status_update",
	"status": "pending",
	"content": {"agent_id": "worker-1", "state": "busy", "progress": 10},
	"metadata": {}
}`

func TestParseCollection(t *testing.T) {
	data := []byte(`{
		"messages": [` + sampleMessage + `],
		"last_updated": "2026-08-01T10:00:00Z",
		"version": "1.1.0",
		"metadata": {"environment": "development"}
	}`)

	c, err := ParseCollection(data)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", c.Version)
	assert.Equal(t, "development", c.Metadata["environment"])
	require.Len(t, c.Messages, 1)
	assert.Equal(t, "worker-1", c.Messages[0].Sender)
}

func TestParseCollection_DefaultsAndTolerance(t *testing.T) {
	// missing version and metadata, plus an unknown top-level key
	c, err := ParseCollection([]byte(`{"messages": [], "future_field": true}`))
	require.NoError(t, err)
	assert.Equal(t, Version, c.Version)
	assert.NotNil(t, c.Metadata)
	assert.Empty(t, c.Messages)
}

func TestParseCollection_Rejections(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"messages": [`},
		{"bad version", `{"messages": [], "version": "v2"}`},
		{"bad last_updated", `{"messages": [], "last_updated": "soon"}`},
		{"invalid message", `{"messages": [{"id": "nope"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCollection([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestCollection_MarshalRoundTrip(t *testing.T) {
	c := NewCollection(map[string]any{"environment": "staging"})
	m, err := New("worker-2", TypeStatusUpdate, map[string]any{
		"agent_id": "worker-2",
		"state":    "idle",
		"progress": 0,
	}, nil)
	require.NoError(t, err)
	c.Messages = append(c.Messages, m)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	back, err := ParseCollection(data)
	require.NoError(t, err)
	assert.Equal(t, c.Version, back.Version)
	assert.Equal(t, "staging", back.Metadata["environment"])
	require.Len(t, back.Messages, 1)
	assert.Equal(t, m.ID, back.Messages[0].ID)
}

func TestRawMessages(t *testing.T) {
	raws, err := RawMessages([]byte(`{"messages": [{"id": "garbage"}, ` + sampleMessage + `]}`))
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "garbage", raws[0]["id"])

	_, err = RawMessages([]byte(`not json`))
	assert.Error(t, err)
}
