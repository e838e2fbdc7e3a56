// Package scene groups the universe, the camera and the physics bridge of a
// running session.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/core/event"
	"github.com/mage-engine/mage/internal/entity"
	"github.com/mage-engine/mage/internal/physics"
	"github.com/mage-engine/mage/internal/physics/protocol"
	"github.com/mage-engine/mage/internal/universe"
)

// Renderer draws a scene. The render pipeline lives outside the engine core.
type Renderer interface {
	Render(s *Scene)
}

// Fog is the scene's exponential fog.
type Fog struct {
	Color   string
	Density float64
}

// Scene is owned by the engine loop; not safe for concurrent use.
type Scene struct {
	name       string
	universe   *universe.Universe
	bridge     *physics.Bridge
	bus        *event.Bus
	camera     *entity.Camera
	clearColor string
	fog        *Fog

	sub     event.Subscription
	created bool

	log *zap.Logger
}

// Registry exposes u to the physics bridge.
func Registry(u *universe.Universe) physics.Registry {
	return physics.RegistryFunc(func(id string) (physics.Entity, bool) {
		e, ok := u.GetByUUID(id)
		if !ok {
			return nil, false
		}
		return e, true
	})
}

func New(name string, u *universe.Universe, bridge *physics.Bridge, bus *event.Bus, log *zap.Logger) *Scene {
	return &Scene{
		name:       name,
		universe:   u,
		bridge:     bridge,
		bus:        bus,
		clearColor: "#000000",
		log:        log.With(zap.String("scene", name)),
	}
}

func (s *Scene) Name() string                 { return s.name }
func (s *Scene) Universe() *universe.Universe { return s.universe }
func (s *Scene) Physics() *physics.Bridge     { return s.bridge }

// Create starts listening for physics steps. Calling it again has no effect.
func (s *Scene) Create() {
	if s.created {
		return
	}
	s.created = true
	s.sub = event.Subscribe(s.bus, func(ev event.PhysicsStepped) {
		s.universe.OnPhysicsUpdate(ev.Delta)
	})
	s.log.Debug("scene created")
}

// Dispose stops listening for physics steps. The bridge is owned by the
// session and is left alone.
func (s *Scene) Dispose() {
	if !s.created {
		return
	}
	s.created = false
	s.bus.Unsubscribe(s.sub)
	s.log.Debug("scene disposed")
}

// Add registers e in the universe. A camera added without one set becomes
// the scene camera.
func (s *Scene) Add(e universe.Element) {
	s.universe.Add(e)
	if c, ok := e.(*entity.Camera); ok && s.camera == nil {
		s.camera = c
	}
}

type bodied interface {
	Body() map[string]any
	SetBody(desc map[string]any)
}

// AddBody registers a physics body for e with the scene's bridge and records
// desc on e so snapshots carry it. A VEHICLE description goes through
// AddVehicle; any other kind is merged over the entity's current state.
func (s *Scene) AddBody(e universe.Element, desc map[string]any) {
	if len(desc) == 0 {
		return
	}
	if b, ok := e.(bodied); ok {
		b.SetBody(protocol.CloneMap(desc))
	}
	if s.bridge == nil {
		return
	}
	if physics.Description(desc).Kind() == protocol.KindVehicle {
		s.bridge.AddVehicle(e, desc)
		return
	}
	s.bridge.Add(e, protocol.Merge(physics.DescribeEntity(e), desc))
}

// Remove schedules e for removal at the end of the tick.
func (s *Scene) Remove(e universe.Element) {
	s.universe.MarkForRemoval(e.Name())
}

func (s *Scene) Get(name string) (universe.Element, bool) { return s.universe.Get(name) }

func (s *Scene) GetByUUID(uuid string) (universe.Element, bool) { return s.universe.GetByUUID(uuid) }

func (s *Scene) Camera() *entity.Camera { return s.camera }

func (s *Scene) SetCamera(c *entity.Camera) {
	if _, ok := s.universe.GetByUUID(c.UUID()); !ok {
		s.universe.Add(c)
	}
	s.camera = c
}

func (s *Scene) ClearColor() string             { return s.clearColor }
func (s *Scene) SetClearColor(hex string)       { s.clearColor = hex }
func (s *Scene) Fog() *Fog                      { return s.fog }
func (s *Scene) SetFog(color string, d float64) { s.fog = &Fog{Color: color, Density: d} }
func (s *Scene) RemoveFog()                     { s.fog = nil }

// SetSize updates the camera aspect ratio after a viewport resize.
func (s *Scene) SetSize(width, height float32) {
	if s.camera != nil {
		s.camera.SetAspect(width, height)
	}
}

// Update advances every element by dt seconds.
func (s *Scene) Update(dt float64) {
	s.universe.Update(dt)
}

// FlushRemovals drops elements scheduled by Remove and announces each one.
func (s *Scene) FlushRemovals() int {
	n := 0
	s.universe.FlushRemovals(func(e universe.Element) {
		n++
		if s.camera != nil && e.UUID() == s.camera.UUID() {
			s.camera = nil
		}
		event.Emit(s.bus, event.EntityRemoved{UUID: e.UUID(), Name: e.Name()})
	})
	return n
}

// Snapshot captures every serializable element.
func (s *Scene) Snapshot() []entity.Snapshot {
	var out []entity.Snapshot
	s.universe.Each(func(e universe.Element) {
		r, ok := e.(entity.Restorable)
		if !ok {
			return
		}
		if f, ok := e.(flagged); ok && (!f.IsSerializable() || f.IsHelper()) {
			return
		}
		out = append(out, r.Snapshot())
	})
	return out
}

// Restore rebuilds snapshotted elements into the universe and registers the
// bodies they were saved with. Snapshots of unknown types are skipped and
// reported together.
func (s *Scene) Restore(snaps []entity.Snapshot) error {
	var (
		errs     []error
		restored []universe.Element
	)
	for _, snap := range snaps {
		e, err := entity.FromSnapshot(snap)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		el, ok := e.(universe.Element)
		if !ok {
			errs = append(errs, fmt.Errorf("restore %q: not a scene element", snap.Name))
			continue
		}
		s.Add(el)
		restored = append(restored, el)
	}
	for _, el := range restored {
		if b, ok := el.(bodied); ok {
			s.AddBody(el, b.Body())
		}
	}
	return errors.Join(errs...)
}
