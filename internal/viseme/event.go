package viseme

import (
	"encoding/json"
	"io"
)

// EventType discriminates timeline entries.
type EventType string

const (
	EventWord   EventType = "word"
	EventViseme EventType = "viseme"
)

// Event is one timeline entry. Times are integer milliseconds from
// the start of the audio. Start and End are populated for word events
// only and carry the word's full span.
type Event struct {
	Time  int       `json:"time"`
	Type  EventType `json:"type"`
	Value string    `json:"value"`
	Start int       `json:"start,omitempty"`
	End   int       `json:"end,omitempty"`
}

// MarshalJSON keeps start/end off the wire for viseme events while
// always including them (zero or not) for word events.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Type == EventWord {
		return json.Marshal(struct {
			Time  int       `json:"time"`
			Type  EventType `json:"type"`
			Value string    `json:"value"`
			Start int       `json:"start"`
			End   int       `json:"end"`
		}{e.Time, e.Type, e.Value, e.Start, e.End})
	}
	return json.Marshal(struct {
		Time  int       `json:"time"`
		Type  EventType `json:"type"`
		Value string    `json:"value"`
	}{e.Time, e.Type, e.Value})
}

// WriteJSONLines renders events one JSON object per line.
func WriteJSONLines(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
