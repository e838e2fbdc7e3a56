package physics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/config"
	"github.com/mage-engine/mage/internal/core/event"
	"github.com/mage-engine/mage/internal/physics/protocol"
)

// Bridge owns one simulation context for the lifetime of a session.
//
// Commands issued before the context reports Ready are queued in order and
// flushed on Ready. Commands issued after Dispose are dropped. Inbound events
// are only consumed by Init, Dispatch and AwaitTerminated, so entity updates
// happen on whichever goroutine runs those (normally the engine loop).
type Bridge struct {
	enabled      bool
	path         string
	readyTimeout time.Duration

	transport Transport
	registry  Registry
	bus       *event.Bus
	log       *zap.Logger

	state atomic.Int32

	mu       sync.Mutex // guards pending, initSent and every transport.Send
	pending  []protocol.Command
	initSent bool

	readyCh       chan struct{}
	readyOnce     sync.Once
	disposedCh    chan struct{}
	disposedOnce  sync.Once
	terminateOnce sync.Once
	releaseOnce   sync.Once
	released      atomic.Bool
}

// NewBridge creates a bridge in the Uninitialized state. transport may be nil
// when physics is disabled.
func NewBridge(cfg config.PhysicsConfig, transport Transport, registry Registry, bus *event.Bus, log *zap.Logger) (*Bridge, error) {
	if cfg.Enabled && transport == nil {
		return nil, errors.New("physics enabled without a transport")
	}
	if registry == nil {
		registry = RegistryFunc(func(string) (Entity, bool) { return nil, false })
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		enabled:      cfg.Enabled,
		path:         cfg.Path,
		readyTimeout: cfg.ReadyTimeout,
		transport:    transport,
		registry:     registry,
		bus:          bus,
		log:          log.With(zap.String("component", "physics")),
		readyCh:      make(chan struct{}),
		disposedCh:   make(chan struct{}),
	}, nil
}

func (b *Bridge) Enabled() bool { return b.enabled }
func (b *Bridge) State() State  { return State(b.state.Load()) }
func (b *Bridge) Ready() bool   { return b.State() == StateReady }

// ReadyCh is closed once the simulation context has reported Ready.
func (b *Bridge) ReadyCh() <-chan struct{} { return b.readyCh }

// Pending reports how many commands are waiting for Ready.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Init starts the handshake and blocks until the context is Ready.
//
// A disabled bridge is Ready immediately and sends nothing. Repeated calls
// never send a second Init; they only wait. If Init could not be sent the
// bridge stays Uninitialized and the next call tries again. While waiting, Init consumes
// inbound events itself, so it must not run concurrently with Dispatch.
func (b *Bridge) Init(ctx context.Context) error {
	if !b.enabled {
		if b.state.CompareAndSwap(int32(StateUninitialized), int32(StateReady)) {
			b.readyOnce.Do(func() { close(b.readyCh) })
		}
		return nil
	}
	if b.State() == StateDisposed {
		return ErrDisposed
	}

	b.mu.Lock()
	if !b.initSent {
		b.initSent = true
		b.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing))
		b.log.Info("starting simulation context", zap.String("path", b.path))
		if err := b.transport.Send(protocol.Init{Path: b.path}); err != nil {
			b.initSent = false
			b.state.CompareAndSwap(int32(StateInitializing), int32(StateUninitialized))
			b.mu.Unlock()
			return fmt.Errorf("send init: %w", err)
		}
	}
	b.mu.Unlock()

	if b.readyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.readyTimeout)
		defer cancel()
	}

	events := b.transport.Events()
	for {
		select {
		case <-b.readyCh:
			return nil
		default:
		}
		select {
		case <-b.readyCh:
			return nil
		case <-b.disposedCh:
			return ErrDisposed
		case <-ctx.Done():
			return fmt.Errorf("wait for simulation ready: %w", ctx.Err())
		case ev, ok := <-events:
			if !ok {
				b.release()
				return ErrDisposed
			}
			b.handle(ev)
		}
	}
}

// Add registers a rigid body for e.
func (b *Bridge) Add(e Entity, d Description) {
	if !b.enabled {
		return
	}
	cmd, err := BuildAddCommand(e, d)
	if err != nil {
		b.log.Warn("physics body rejected", zap.Error(err))
		return
	}
	b.submit(cmd)
}

// AddVehicle registers a vehicle for e. options override the description
// extracted from the entity.
func (b *Bridge) AddVehicle(e Entity, options map[string]any) {
	if !b.enabled {
		return
	}
	cmd, err := BuildVehicleCommand(e, options)
	if err != nil {
		b.log.Warn("physics vehicle rejected", zap.Error(err))
		return
	}
	b.submit(cmd)
}

// UpdateBodyState forwards an opaque state payload for e's body.
func (b *Bridge) UpdateBodyState(e Entity, state map[string]any) {
	if !b.enabled {
		return
	}
	cmd, err := BuildUpdateCommand(e, state)
	if err != nil {
		b.log.Warn("physics state update rejected", zap.Error(err))
		return
	}
	b.submit(cmd)
}

// Dispose asks the context to shut down. Terminate is sent at most once,
// queued commands are discarded and later commands are dropped.
func (b *Bridge) Dispose() {
	b.mu.Lock()
	prev := State(b.state.Swap(int32(StateDisposed)))
	dropped := len(b.pending)
	b.pending = nil
	if b.enabled && !b.released.Load() {
		b.terminateOnce.Do(func() { b.transmit(protocol.Terminate{}) })
	}
	b.mu.Unlock()

	b.disposedOnce.Do(func() {
		close(b.disposedCh)
		b.log.Info("physics bridge disposed",
			zap.Stringer("from", prev),
			zap.Int("dropped", dropped),
		)
	})
}

// Dispatch applies up to max buffered events without blocking and returns
// how many were handled. max <= 0 drains everything currently buffered.
func (b *Bridge) Dispatch(max int) int {
	if !b.enabled {
		return 0
	}
	events := b.transport.Events()
	n := 0
	for max <= 0 || n < max {
		select {
		case ev, ok := <-events:
			if !ok {
				b.release()
				return n
			}
			b.handle(ev)
			n++
		default:
			return n
		}
	}
	return n
}

// AwaitTerminated consumes events until the context confirms termination or
// ctx ends. On ctx expiry the context is released anyway.
func (b *Bridge) AwaitTerminated(ctx context.Context) error {
	if !b.enabled || b.released.Load() {
		return nil
	}
	events := b.transport.Events()
	for !b.released.Load() {
		select {
		case ev, ok := <-events:
			if !ok {
				b.release()
				return nil
			}
			b.handle(ev)
		case <-ctx.Done():
			b.release()
			return fmt.Errorf("wait for simulation termination: %w", ctx.Err())
		}
	}
	return nil
}

func (b *Bridge) submit(cmd protocol.Command) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.State() {
	case StateDisposed:
		b.log.Debug("physics command after dispose dropped", zap.String("type", cmd.Type()))
	case StateReady:
		b.transmit(cmd)
	default:
		b.pending = append(b.pending, cmd)
	}
}

// transmit must be called with b.mu held.
func (b *Bridge) transmit(cmd protocol.Command) {
	if err := b.transport.Send(cmd); err != nil {
		b.log.Warn("physics command not delivered",
			zap.String("type", cmd.Type()),
			zap.Error(err),
		)
	}
}

func (b *Bridge) markReady() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.state.CompareAndSwap(int32(StateInitializing), int32(StateReady)) {
		b.log.Debug("ready ignored", zap.Stringer("state", b.State()))
		return
	}
	pending := b.pending
	b.pending = nil
	for _, cmd := range pending {
		b.transmit(cmd)
	}
	b.readyOnce.Do(func() { close(b.readyCh) })
	b.log.Info("simulation context ready", zap.Int("flushed", len(pending)))
}

// release drops the context handle. Safe to call repeatedly.
func (b *Bridge) release() {
	b.releaseOnce.Do(func() {
		b.released.Store(true)
		if err := b.transport.Close(); err != nil {
			b.log.Warn("close simulation transport", zap.Error(err))
		}
		b.log.Info("simulation context released")
	})
	b.mu.Lock()
	b.state.Store(int32(StateDisposed))
	b.pending = nil
	b.mu.Unlock()
	b.disposedOnce.Do(func() { close(b.disposedCh) })
}
