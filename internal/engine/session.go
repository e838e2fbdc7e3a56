// Package engine wires a running mage session: universe, scene, physics
// bridge, persistence and the phase-ordered system runner.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/config"
	"github.com/mage-engine/mage/internal/core/event"
	coresys "github.com/mage-engine/mage/internal/core/system"
	"github.com/mage-engine/mage/internal/level"
	magenet "github.com/mage-engine/mage/internal/net"
	"github.com/mage-engine/mage/internal/persist"
	"github.com/mage-engine/mage/internal/physics"
	"github.com/mage-engine/mage/internal/scene"
	"github.com/mage-engine/mage/internal/system"
	"github.com/mage-engine/mage/internal/universe"
	"github.com/mage-engine/mage/internal/worker"
)

// Session owns everything one engine instance needs. Apart from NewSession
// and Close, its methods must be called from the goroutine running Run.
type Session struct {
	cfg *config.Config
	log *zap.Logger

	bus      *event.Bus
	universe *universe.Universe
	bridge   *physics.Bridge
	scene    *scene.Scene
	runner   *coresys.Runner

	db      *persist.DB
	persist *system.PersistenceSystem

	renderer  scene.Renderer
	transport physics.Transport
	spawned   int
}

type Option func(*Session)

// WithRenderer attaches the render pipeline.
func WithRenderer(r scene.Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// WithTransport replaces the transport chosen by physics.transport.
func WithTransport(t physics.Transport) Option {
	return func(s *Session) { s.transport = t }
}

// NewSession builds a session. Level bodies are registered immediately and
// reach the simulation once Start has completed the handshake.
func NewSession(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:      cfg,
		log:      log,
		bus:      event.NewBus(),
		universe: universe.New(log),
		runner:   coresys.NewRunner(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Physics.Enabled && s.transport == nil {
		t, err := openTransport(ctx, cfg.Physics, log)
		if err != nil {
			return nil, fmt.Errorf("physics transport: %w", err)
		}
		s.transport = t
	}

	bridge, err := physics.NewBridge(cfg.Physics, s.transport, scene.Registry(s.universe), s.bus, log)
	if err != nil {
		return nil, err
	}
	s.bridge = bridge
	s.scene = scene.New(cfg.Engine.Name, s.universe, bridge, s.bus, log)

	if cfg.Database.Enabled {
		if err := s.openDatabase(ctx); err != nil {
			s.release()
			return nil, err
		}
	}

	if err := s.populate(ctx); err != nil {
		s.release()
		return nil, err
	}

	s.runner.Register(system.NewPhysicsInputSystem(bridge, cfg.Engine.MaxEventsPerTick))
	s.runner.Register(system.NewEventDispatchSystem(s.bus))
	s.runner.Register(system.NewUpdateSystem(s.scene))
	s.runner.Register(system.NewRenderSystem(s.scene, s.renderer))
	if s.persist != nil {
		s.runner.Register(s.persist)
	}
	s.runner.Register(system.NewCleanupSystem(s.scene))
	return s, nil
}

func openTransport(ctx context.Context, cfg config.PhysicsConfig, log *zap.Logger) (physics.Transport, error) {
	if cfg.Transport == config.TransportWebsocket {
		conn, err := magenet.Dial(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return worker.New(worker.OptionsFrom(cfg), log), nil
}

func (s *Session) openDatabase(ctx context.Context) error {
	db, err := persist.NewDB(ctx, s.cfg.Database, s.log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := persist.RunMigrations(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("migrations: %w", err)
	}
	s.db = db
	s.persist = system.NewPersistenceSystem(s.scene, persist.NewSnapshotRepo(db), s.log, s.cfg.Database.SnapshotInterval)
	return nil
}

// populate fills the scene from the level file, or from the last stored
// snapshot when no level is configured.
func (s *Session) populate(ctx context.Context) error {
	if path := s.cfg.Level.Path; path != "" {
		l, err := level.Load(path)
		if err != nil {
			return err
		}
		n, err := l.Spawn(s.scene)
		if err != nil {
			return err
		}
		s.spawned = n
		s.log.Info("level loaded", zap.String("path", path), zap.Int("entities", n))
		return nil
	}
	if s.db == nil {
		return nil
	}
	snaps, err := persist.NewSnapshotRepo(s.db).LoadScene(ctx, s.scene.Name())
	if err != nil {
		return fmt.Errorf("load scene snapshot: %w", err)
	}
	if err := s.scene.Restore(snaps); err != nil {
		s.log.Warn("scene restored partially", zap.Error(err))
	}
	s.spawned = len(snaps)
	s.log.Info("scene restored", zap.Int("entities", len(snaps)))
	return nil
}

// Start subscribes the scene and completes the physics handshake.
func (s *Session) Start(ctx context.Context) error {
	s.scene.Create()
	if err := s.bridge.Init(ctx); err != nil {
		return fmt.Errorf("physics init: %w", err)
	}
	return nil
}

// Run ticks the systems at engine.tick_rate until ctx ends.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Engine.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runner.Tick(s.cfg.Engine.TickRate)
		case <-ctx.Done():
			return nil
		}
	}
}

// Tick runs one frame.
func (s *Session) Tick(dt time.Duration) {
	s.runner.Tick(dt)
}

// Close saves the scene, shuts the simulation context down and releases the
// database. ctx bounds the wait for the context to confirm termination.
func (s *Session) Close(ctx context.Context) error {
	var errs []error
	if s.persist != nil {
		if err := s.persist.SaveNow(); err != nil {
			errs = append(errs, fmt.Errorf("final snapshot: %w", err))
		}
	}
	s.scene.Dispose()
	s.bridge.Dispose()
	if err := s.bridge.AwaitTerminated(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.db != nil {
		s.db.Close()
	}
	return errors.Join(errs...)
}

// release undoes a partially built session.
func (s *Session) release() {
	if s.transport != nil {
		_ = s.transport.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Session) Scene() *scene.Scene     { return s.scene }
func (s *Session) Bridge() *physics.Bridge { return s.bridge }
func (s *Session) Bus() *event.Bus         { return s.bus }
func (s *Session) Spawned() int            { return s.spawned }
