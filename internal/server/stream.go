package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/normanking/lipsyncd/internal/bus"
	"github.com/normanking/lipsyncd/internal/viseme"
)

// streamRequest is the first message a /stream client sends: either a
// job to replay or a live subscription
type streamRequest struct {
	JobID string `json:"job_id,omitempty"`
	Live  bool   `json:"live,omitempty"`
}

// streamControl frames non-event messages on the stream
type streamControl struct {
	Type   string         `json:"type"`
	JobID  string         `json:"job_id,omitempty"`
	Error  string         `json:"error,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
	Events []viseme.Event `json:"events,omitempty"`
}

// streamHandler upgrades to WebSocket and either replays a journaled
// job's timeline or follows jobs live off the event bus
func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req streamRequest
	if err := conn.ReadJSON(&req); err != nil {
		return
	}

	switch {
	case req.JobID != "":
		s.streamReplay(conn, req.JobID)
	case req.Live:
		s.streamLive(conn)
	default:
		conn.WriteJSON(streamControl{Type: "error", Error: "job_id or live required"})
	}
}

// streamReplay sends each stored event as one message, then a done marker
func (s *Server) streamReplay(conn *websocket.Conn, jobID string) {
	if s.journal == nil {
		conn.WriteJSON(streamControl{Type: "error", JobID: jobID, Error: "journal disabled"})
		return
	}

	events, err := s.journal.EventsFor(jobID)
	if err != nil {
		conn.WriteJSON(streamControl{Type: "error", JobID: jobID, Error: err.Error()})
		return
	}

	for _, event := range events {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
	conn.WriteJSON(streamControl{Type: "done", JobID: jobID})
}

// streamLive forwards job lifecycle events until the client disconnects.
// Completed jobs carry their full timeline when the journal holds it.
func (s *Server) streamLive(conn *websocket.Conn) {
	if s.bus == nil {
		conn.WriteJSON(streamControl{Type: "error", Error: "live stream unavailable"})
		return
	}

	msgs := make(chan bus.Event, 64)
	unsub := s.bus.SubscribeMultiple(
		[]bus.EventType{bus.EventTypeJobStarted, bus.EventTypeJobCompleted, bus.EventTypeJobFailed},
		func(e bus.Event) {
			select {
			case msgs <- e:
			default: // drop when the client lags
			}
		},
	)
	defer unsub()

	// Reads only to notice the peer going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case e := <-msgs:
			msg := streamControl{Type: string(e.Type), Data: e.Data}
			if e.Type == bus.EventTypeJobCompleted && s.journal != nil {
				if jobID, ok := e.Data["job_id"].(string); ok {
					if events, err := s.journal.EventsFor(jobID); err == nil {
						msg.Events = events
					}
				}
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
