// Package net carries the physics protocol over websockets. Conn is the
// engine side, a physics.Transport backed by a remote context; Handler is
// the host side, running one local worker per connection.
package net

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/config"
	"github.com/mage-engine/mage/internal/physics/protocol"
)

var (
	ErrClosed    = errors.New("connection closed")
	ErrQueueFull = errors.New("outbound queue full")
)

const writeWait = 10 * time.Second

// Conn is a client connection to a remote simulation context. Network I/O
// runs in dedicated goroutines; events are handed to the engine loop
// through Events.
type Conn struct {
	ws     *websocket.Conn
	out    chan []byte
	events chan protocol.Event

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

// Dial connects to the context host at cfg.Address.
func Dial(ctx context.Context, cfg config.PhysicsConfig, log *zap.Logger) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.Address, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Address, err)
	}
	c := newConn(ws, cfg.CommandQueueSize, cfg.EventQueueSize, log.With(zap.String("remote", cfg.Address)))
	go c.readLoop()
	go c.writeLoop()
	return c, nil
}

func newConn(ws *websocket.Conn, outSize, eventSize int, log *zap.Logger) *Conn {
	return &Conn{
		ws:      ws,
		out:     make(chan []byte, outSize),
		events:  make(chan protocol.Event, eventSize),
		closeCh: make(chan struct{}),
		log:     log,
	}
}

// Send encodes cmd and queues it for the writer goroutine without blocking.
func (c *Conn) Send(cmd protocol.Command) error {
	if c.closed.Load() {
		return ErrClosed
	}
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	select {
	case c.out <- data:
		return nil
	default:
		return ErrQueueFull
	}
}

// Events is closed when the connection drops.
func (c *Conn) Events() <-chan protocol.Event { return c.events }

// Close tells the host goodbye and drops the connection. Safe to call
// repeatedly.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) readLoop() {
	defer close(c.events)
	defer c.Close()

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if !c.closed.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.log.Debug("read error", zap.Error(err))
			}
			return
		}
		ev, err := protocol.DecodeEvent(payload)
		if err != nil {
			c.log.Warn("discarding malformed event", zap.Error(err))
			continue
		}
		// Block until the loop drains or the connection closes; dropping
		// transforms would desync the scene.
		select {
		case c.events <- ev:
		case <-c.closeCh:
			return
		}
	}
}

func (c *Conn) writeLoop() {
	defer c.Close()

	for {
		select {
		case data := <-c.out:
			if err := writeFrame(c.ws, data); err != nil {
				if !c.closed.Load() {
					c.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

func writeFrame(ws *websocket.Conn, data []byte) error {
	if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return ws.WriteMessage(websocket.TextMessage, data)
}
