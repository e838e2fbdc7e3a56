package net

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/physics/protocol"
	"github.com/mage-engine/mage/internal/worker"
)

// Handler upgrades requests to websockets and hosts a simulation context
// for each one.
type Handler struct {
	opts     worker.Options
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	active   sync.WaitGroup
	log      *zap.Logger
}

func NewHandler(opts worker.Options, log *zap.Logger) *Handler {
	return &Handler{
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	h.active.Add(1)
	defer h.active.Done()

	id := h.nextID.Add(1)
	log := h.log.With(zap.Uint64("session", id), zap.String("remote", r.RemoteAddr))
	log.Info("simulation session opened")

	s := &session{ws: ws, sim: worker.New(h.opts, log), log: log}
	s.serve()
	log.Info("simulation session closed")
}

// Wait blocks until every session has finished.
func (h *Handler) Wait() { h.active.Wait() }

// session pairs one connection with one worker.
type session struct {
	ws  *websocket.Conn
	sim *worker.Worker
	log *zap.Logger
}

func (s *session) serve() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop()
	}()
	s.readLoop()
	_ = s.sim.Close()
	<-done
	_ = s.ws.Close()
}

// readLoop feeds commands to the worker until the client goes away.
func (s *session) readLoop() {
	for {
		_, payload, err := s.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		cmd, err := protocol.DecodeCommand(payload)
		if err != nil {
			s.log.Warn("discarding malformed command", zap.Error(err))
			continue
		}
		if err := s.sim.Send(cmd); err != nil {
			if errors.Is(err, worker.ErrClosed) {
				return
			}
			s.log.Warn("command dropped", zap.String("type", cmd.Type()), zap.Error(err))
		}
	}
}

// writeLoop forwards worker events until the worker exits, then says goodbye.
func (s *session) writeLoop() {
	for ev := range s.sim.Events() {
		data, err := protocol.EncodeEvent(ev)
		if err != nil {
			s.log.Error("encode event", zap.String("type", ev.Type()), zap.Error(err))
			continue
		}
		if err := writeFrame(s.ws, data); err != nil {
			s.log.Debug("write error", zap.Error(err))
			_ = s.sim.Close()
			return
		}
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "terminated")
	_ = s.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	// unblock readLoop if the client never answers the close frame
	_ = s.ws.SetReadDeadline(time.Now().Add(writeWait))
}
