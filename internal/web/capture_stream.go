package web

import (
	"context"
	"log"
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"github.com/BetterCallFirewall/Cryptoscope/internal/capture"
)

const (
	streamFinished = "finished"
	streamContent  = "content"
	streamAck      = "ack"
)

var captureUpgrader = gorilla.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamMessage is one frame of the capture stream.
//
// A "finished" frame carries the event. With Body set the exchange is stored
// at once, otherwise it waits for a "content" frame with the same request id.
type streamMessage struct {
	Type      string         `json:"type"`
	Event     *capture.Event `json:"event,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	Body      *string        `json:"body,omitempty"`
}

type streamAckMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Captured  bool   `json:"captured"`
	Pending   bool   `json:"pending,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handleCaptureStream(w http.ResponseWriter, r *http.Request) {
	conn, err := captureUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Capture stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("📡 Capture stream connected")
	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !gorilla.IsCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
				log.Printf("Capture stream closed: %v", err)
			}
			return
		}

		ack := s.ingest(r, msg)
		if err := conn.WriteJSON(ack); err != nil {
			log.Printf("Capture stream write failed: %v", err)
			return
		}
	}
}

func (s *Server) ingest(r *http.Request, msg streamMessage) streamAckMessage {
	ack := streamAckMessage{Type: streamAck, RequestID: msg.RequestID}
	rec := s.session.Recorder

	switch msg.Type {
	case streamFinished:
		if msg.Event == nil {
			ack.Error = "finished frame without event"
			return ack
		}
		ack.RequestID = msg.Event.RequestID

		if msg.Body != nil {
			body := *msg.Body
			captured, err := rec.Observe(r.Context(), *msg.Event, func(_ context.Context) (string, error) {
				return body, nil
			})
			ack.Captured = captured
			if err != nil {
				ack.Error = err.Error()
			}
			return ack
		}

		id, err := rec.Begin(*msg.Event)
		if err != nil {
			ack.Error = err.Error()
			return ack
		}
		ack.RequestID = id
		ack.Pending = id != ""

	case streamContent:
		body := ""
		if msg.Body != nil {
			body = *msg.Body
		}
		if err := rec.Complete(msg.RequestID, body); err != nil {
			ack.Error = err.Error()
			return ack
		}
		ack.Captured = true

	default:
		ack.Error = "unknown frame type: " + msg.Type
	}
	return ack
}
