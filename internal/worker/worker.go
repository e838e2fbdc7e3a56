// Package worker hosts a simulation context in-process. A Worker runs the
// simulation module on its own goroutine and exchanges protocol messages
// with the engine over channels, so it can stand in for a remote context.
package worker

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/config"
	"github.com/mage-engine/mage/internal/physics/protocol"
)

var (
	ErrClosed    = errors.New("simulation worker closed")
	ErrQueueFull = errors.New("simulation command queue full")
)

type Options struct {
	StepRate         time.Duration
	CommandQueueSize int
	EventQueueSize   int
	// Root confines module paths received with Init. Empty means paths are
	// used as given.
	Root string
}

func OptionsFrom(cfg config.PhysicsConfig) Options {
	return Options{
		StepRate:         cfg.StepRate,
		CommandQueueSize: cfg.CommandQueueSize,
		EventQueueSize:   cfg.EventQueueSize,
	}
}

// Worker is a local simulation context. It implements physics.Transport.
type Worker struct {
	opts   Options
	cmds   chan protocol.Command
	events chan protocol.Event
	log    *zap.Logger

	closeOnce sync.Once
	closeCh   chan struct{}
	done      chan struct{}
}

// New starts a worker goroutine. Nothing is simulated until Init arrives.
func New(opts Options, log *zap.Logger) *Worker {
	w := newWorker(opts, log)
	go w.run()
	return w
}

func newWorker(opts Options, log *zap.Logger) *Worker {
	if opts.StepRate <= 0 {
		opts.StepRate = 16 * time.Millisecond
	}
	if opts.CommandQueueSize <= 0 {
		opts.CommandQueueSize = 256
	}
	if opts.EventQueueSize <= 0 {
		opts.EventQueueSize = 1024
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		opts:    opts,
		cmds:    make(chan protocol.Command, opts.CommandQueueSize),
		events:  make(chan protocol.Event, opts.EventQueueSize),
		log:     log.With(zap.String("component", "worker")),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Send queues a command without blocking.
func (w *Worker) Send(cmd protocol.Command) error {
	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	select {
	case w.cmds <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Events is closed when the worker goroutine exits.
func (w *Worker) Events() <-chan protocol.Event { return w.events }

// Close stops the worker and waits for its goroutine. Safe to call repeatedly.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() { close(w.closeCh) })
	<-w.done
	return nil
}

// Done is closed once the worker goroutine has exited.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) run() {
	defer close(w.done)
	defer close(w.events)

	sim := newSimulation(w.emit, w.log)
	defer sim.close()

	var ticker *time.Ticker
	var tick <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()
	last := time.Now()

	for {
		select {
		case <-w.closeCh:
			return

		case cmd := <-w.cmds:
			switch cmd := cmd.(type) {
			case protocol.Init:
				if sim.loaded() {
					w.log.Warn("simulation module already loaded", zap.String("path", cmd.Path))
					continue
				}
				path := w.resolve(cmd.Path)
				if err := sim.load(path); err != nil {
					w.log.Error("load simulation module", zap.String("path", path), zap.Error(err))
					continue
				}
				w.log.Info("simulation module loaded", zap.String("path", path))
				if !w.emit(protocol.Ready{}) {
					return
				}
				ticker = time.NewTicker(w.opts.StepRate)
				tick = ticker.C
				last = time.Now()
			case protocol.AddBody:
				sim.addBody(cmd)
			case protocol.UpdateBodyState:
				sim.updateBody(cmd)
			case protocol.Terminate:
				w.emit(protocol.Terminated{})
				w.log.Info("simulation terminated")
				return
			}

		case now := <-tick:
			dt := now.Sub(last).Seconds()
			last = now
			sim.step(dt)
			if !w.emit(protocol.Stepped{Delta: dt}) {
				return
			}
		}
	}
}

// emit blocks until the event is buffered or the worker is closed.
func (w *Worker) emit(ev protocol.Event) bool {
	select {
	case w.events <- ev:
		return true
	case <-w.closeCh:
		return false
	}
}

func (w *Worker) resolve(path string) string {
	if w.opts.Root == "" {
		return path
	}
	return filepath.Join(w.opts.Root, filepath.Clean("/"+path))
}
