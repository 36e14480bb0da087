package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/steerlab/voxsteer/internal/events"
	"github.com/steerlab/voxsteer/internal/store"
	"github.com/steerlab/voxsteer/internal/trainer"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return isLocalOrigin(r.Header.Get("Origin"))
	},
}

// ControlMessage is a JSON text frame exchanged alongside binary audio.
// Client to server: "start", "stop", "record_start", "record_stop",
// "train", "save", "load", "reset". Server to client: "ready", "gate",
// "prediction", "decision", "status", "error".
type ControlMessage struct {
	Type       string  `json:"type"`
	Label      string  `json:"label,omitempty"`
	Text       string  `json:"text,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	IsSpeech   bool    `json:"is_speech,omitempty"`
	SampleRate int     `json:"sample_rate,omitempty"`
}

// wsSession is one audio websocket connection. Binary frames are raw
// Int16LE mono PCM; they always feed the capture ring, and additionally
// a recording buffer while a labeled recording is in progress.
type wsSession struct {
	srv     *Server
	conn    *websocket.Conn
	writeMu sync.Mutex

	recordMu    sync.Mutex
	recording   bool
	recordLabel string
	recordBuf   []byte
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("ws upgrade failed: %v", err)
		return
	}
	s.log.Infof("ws connection from %s", r.RemoteAddr)
	sess := &wsSession{srv: s, conn: conn}
	sess.serve(r.Context())
	s.log.Infof("ws connection closed")
}

// serve forwards pipeline events to the client and pumps the socket
// until either side goes away.
func (ws *wsSession) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := ws.srv.deps.Hub
	subs := []events.Subscription{
		events.Subscribe(hub, events.TopicGate, func(_ context.Context, g events.GateChange) error {
			return ws.sendControl(ControlMessage{Type: "gate", IsSpeech: g.Speaking})
		}),
		events.Subscribe(hub, events.TopicPrediction, func(_ context.Context, p events.Prediction) error {
			return ws.sendControl(ControlMessage{Type: "prediction", Label: p.Label, Confidence: p.Confidence})
		}),
		events.Subscribe(hub, events.TopicDecision, func(_ context.Context, d events.Decision) error {
			return ws.sendControl(ControlMessage{Type: "decision", Label: d.Label})
		}),
		events.Subscribe(hub, events.TopicStatus, func(_ context.Context, st events.Status) error {
			return ws.sendControl(ControlMessage{Type: "status", Text: st.Text})
		}),
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	ws.sendControl(ControlMessage{Type: "ready", SampleRate: ws.srv.deps.Config.Audio.SampleRate})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); ws.readPump(ctx, cancel) }()
	go func() { defer wg.Done(); ws.pingLoop(ctx) }()

	<-ctx.Done()
	ws.conn.Close()
	wg.Wait()
}

func (ws *wsSession) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	ws.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.conn.SetPongHandler(func(string) error {
		ws.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		msgType, data, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.srv.log.Debugf("ws read error: %v", err)
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			ws.srv.deps.Ring.AppendPCM(data)
			ws.appendRecording(data)
		case websocket.TextMessage:
			ws.handleControl(ctx, data)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (ws *wsSession) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ws.writeMu.Lock()
			ws.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := ws.conn.WriteMessage(websocket.PingMessage, nil)
			ws.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// sendControl writes a JSON text frame. Safe from any goroutine.
func (ws *wsSession) sendControl(msg ControlMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()
	ws.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return ws.conn.WriteMessage(websocket.TextMessage, data)
}

func (ws *wsSession) sendError(err error) {
	ws.sendControl(ControlMessage{Type: "error", Text: err.Error()})
}

func (ws *wsSession) handleControl(ctx context.Context, data []byte) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		ws.sendError(fmt.Errorf("bad control frame: %w", err))
		return
	}

	deps := ws.srv.deps
	switch msg.Type {
	case "start":
		if err := deps.Loop.Start(); err != nil {
			ws.sendError(err)
			return
		}
		ws.sendControl(ControlMessage{Type: "status", Text: "listening"})
	case "stop":
		deps.Loop.Stop()
		ws.sendControl(ControlMessage{Type: "status", Text: "stopped"})
	case "record_start":
		if msg.Label == "" {
			ws.sendError(fmt.Errorf("record_start needs a label"))
			return
		}
		ws.startRecording(msg.Label)
		ws.sendControl(ControlMessage{Type: "status", Text: "recording " + msg.Label})
	case "record_stop":
		label, pcm := ws.stopRecording()
		if len(pcm) == 0 {
			ws.sendError(fmt.Errorf("nothing recorded"))
			return
		}
		if _, err := deps.Library.Add(label, deps.Config.Audio.SampleRate, pcm); err != nil {
			ws.sendError(err)
			return
		}
		ws.sendControl(ControlMessage{Type: "status", Text: "saved a sample for " + label})
	case "train":
		// Training can take a while; keep the read pump responsive.
		go func() {
			n, err := deps.Trainer.TrainFromLibrary(context.Background())
			if err != nil {
				ws.sendError(err)
				return
			}
			ws.sendControl(ControlMessage{Type: "status", Text: fmt.Sprintf("trained on %d samples", n)})
		}()
	case "save":
		if err := trainer.SaveModel(ctx, deps.Boundary, deps.Store, deps.Config.Decision.Labels); err != nil {
			ws.sendError(err)
			return
		}
		ws.sendControl(ControlMessage{Type: "status", Text: "model saved"})
	case "load":
		if _, err := trainer.LoadModel(ctx, deps.Boundary, deps.Store); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				ws.sendError(fmt.Errorf("no saved model"))
				return
			}
			ws.sendError(err)
			return
		}
		ws.sendControl(ControlMessage{Type: "status", Text: "model loaded"})
	case "reset":
		if err := trainer.ClearModel(ctx, deps.Boundary, deps.Store); err != nil {
			ws.sendError(err)
			return
		}
		ws.sendControl(ControlMessage{Type: "status", Text: "model cleared"})
	default:
		ws.sendError(fmt.Errorf("unknown control type %q", msg.Type))
	}
}

func (ws *wsSession) startRecording(label string) {
	ws.recordMu.Lock()
	defer ws.recordMu.Unlock()
	ws.recording = true
	ws.recordLabel = label
	ws.recordBuf = ws.recordBuf[:0]
}

func (ws *wsSession) stopRecording() (string, []byte) {
	ws.recordMu.Lock()
	defer ws.recordMu.Unlock()
	if !ws.recording {
		return "", nil
	}
	ws.recording = false
	pcm := make([]byte, len(ws.recordBuf))
	copy(pcm, ws.recordBuf)
	return ws.recordLabel, pcm
}

func (ws *wsSession) appendRecording(data []byte) {
	ws.recordMu.Lock()
	defer ws.recordMu.Unlock()
	if ws.recording {
		ws.recordBuf = append(ws.recordBuf, data...)
	}
}
