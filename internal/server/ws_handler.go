package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/voxpipe/voxpipe/internal/recorder"
	"github.com/voxpipe/voxpipe/pkg/capture/wsingest"
	"github.com/voxpipe/voxpipe/pkg/transcribe"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // dev-only
}

// Control message from the client. Binary messages carry raw PCM fragments;
// text messages carry JSON control.
type controlMessage struct {
	Type string `json:"type"` // "start" or "stop"
}

// Event pushed back to the client.
type wsEvent struct {
	Type    string `json:"type"` // "state", "result", "error"
	Payload any    `json:"payload,omitempty"`
}

// wsSession binds one websocket connection to one recording session.
type wsSession struct {
	conn   *websocket.Conn
	dep    Dependencies
	source *wsingest.Source
	rec    *recorder.Recorder

	writeMu sync.Mutex
}

// handleWS upgrades the connection and runs one session per connection: the
// client streams binary PCM fragments and start/stop control, the server
// streams back transcription results as they complete.
func handleWS(c *gin.Context, dep Dependencies) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		dep.Logger.Errorf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s := &wsSession{conn: conn, dep: dep}
	dep.Logger.Infof("ws connected: %s", conn.RemoteAddr())

	s.readLoop()

	// Connection gone; stop any live session so the device side is released.
	if s.rec != nil && s.rec.State() == recorder.StateRecording {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.rec.Stop(ctx); err != nil {
			dep.Logger.Warnf("failed to stop session on disconnect: %v", err)
		}
	}
	dep.Logger.Infof("ws disconnected: %s", conn.RemoteAddr())
}

func (s *wsSession) readLoop() {
	for {
		messageType, msgBytes, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		switch messageType {
		case websocket.TextMessage:
			s.handleControl(msgBytes)
		case websocket.BinaryMessage:
			if s.source == nil {
				continue
			}
			if err := s.source.Push(msgBytes); err != nil {
				s.dep.Logger.Debugf("fragment dropped: %v", err)
			}
		default:
			s.dep.Logger.Warnf("unknown ws message type %d", messageType)
		}
	}
}

func (s *wsSession) handleControl(msgBytes []byte) {
	var msg controlMessage
	if err := json.Unmarshal(msgBytes, &msg); err != nil {
		s.sendEvent(wsEvent{Type: "error", Payload: "malformed control message"})
		return
	}

	switch msg.Type {
	case "start":
		s.startRecording()
	case "stop":
		s.stopRecording()
	default:
		s.sendEvent(wsEvent{Type: "error", Payload: "unknown control type: " + msg.Type})
	}
}

func (s *wsSession) startRecording() {
	if s.rec != nil && s.rec.State() == recorder.StateRecording {
		s.sendEvent(wsEvent{Type: "error", Payload: "already recording"})
		return
	}

	s.source = wsingest.New()
	s.rec = recorder.New(recorder.ConfigFromSettings(s.dep.Settings), s.dep.Service, s.source, s.dep.Logger)

	s.rec.OnResult(func(res transcribe.TranscriptionResult) {
		s.sendEvent(wsEvent{Type: "result", Payload: res})
	})
	s.rec.OnError(func(err error) {
		s.sendEvent(wsEvent{Type: "error", Payload: err.Error()})
	})

	if err := s.rec.Start(context.Background()); err != nil {
		s.sendEvent(wsEvent{Type: "error", Payload: err.Error()})
		return
	}
	s.sendEvent(wsEvent{Type: "state", Payload: recorder.StateRecording})
}

func (s *wsSession) stopRecording() {
	if s.rec == nil || s.rec.State() != recorder.StateRecording {
		s.sendEvent(wsEvent{Type: "error", Payload: "not recording"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.rec.Stop(ctx); err != nil {
		s.sendEvent(wsEvent{Type: "error", Payload: err.Error()})
		return
	}
	s.sendEvent(wsEvent{Type: "state", Payload: recorder.StateIdle})
}

// sendEvent serializes writes; gorilla allows one concurrent writer and
// results complete on arbitrary goroutines.
func (s *wsSession) sendEvent(ev wsEvent) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(ev); err != nil {
		s.dep.Logger.Debugf("ws write failed: %v", err)
	}
}
