package viseme

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventMarshal_WordCarriesSpan(t *testing.T) {
	e := Event{Time: 0, Type: EventWord, Value: "hi", Start: 0, End: 500}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"time":0,"type":"word","value":"hi","start":0,"end":500}`, string(data))

	// Zero start must stay on the wire for word events.
	assert.Contains(t, string(data), `"start":0`)
}

func TestEventMarshal_VisemeOmitsSpan(t *testing.T) {
	e := Event{Time: 200, Type: EventViseme, Value: "i"}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"time":200,"type":"viseme","value":"i"}`, string(data))
	assert.NotContains(t, string(data), "start")
	assert.NotContains(t, string(data), "end")
}

func TestEventUnmarshal_RoundTrip(t *testing.T) {
	line := `{"time":120,"type":"word","value":"she","start":120,"end":900}`

	var e Event
	require.NoError(t, json.Unmarshal([]byte(line), &e))
	assert.Equal(t, Event{Time: 120, Type: EventWord, Value: "she", Start: 120, End: 900}, e)
}

func TestWriteJSONLines(t *testing.T) {
	events := []Event{
		{Time: 0, Type: EventViseme, Value: "sil"},
		{Time: 0, Type: EventWord, Value: "hi", Start: 0, End: 500},
		{Time: 500, Type: EventViseme, Value: "sil"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSONLines(&buf, events))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	for i, line := range lines {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(line), &e), "line %d", i)
		assert.Equal(t, events[i].Time, e.Time)
		assert.Equal(t, events[i].Type, e.Type)
		assert.Equal(t, events[i].Value, e.Value)
	}
}

func TestEventArrayEncoding(t *testing.T) {
	events := []Event{
		{Time: 0, Type: EventViseme, Value: "sil"},
		{Time: 0, Type: EventWord, Value: "go", Start: 0, End: 300},
	}

	data, err := json.Marshal(events)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"time":0,"type":"viseme","value":"sil"},{"time":0,"type":"word","value":"go","start":0,"end":300}]`, string(data))
}
