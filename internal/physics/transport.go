// Package physics bridges the engine loop and the simulation context. The
// context is reachable only through a Transport: commands go out, events come
// back, and the two sides share no memory.
package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mage-engine/mage/internal/core/event"
	"github.com/mage-engine/mage/internal/physics/protocol"
)

var (
	// ErrDisposed is returned by Init when the bridge was disposed first.
	ErrDisposed = errors.New("physics bridge disposed")
	// ErrNoIdentifier is returned by the encoders for entities without a uuid.
	ErrNoIdentifier = errors.New("entity has no identifier")
)

// Transport is a connection to a simulation context.
//
// Send must not block the caller; Events is read only by the bridge that owns
// the transport, and is closed once the context is gone. Close releases the
// context and is safe to call more than once.
type Transport interface {
	Send(cmd protocol.Command) error
	Events() <-chan protocol.Event
	Close() error
}

// Entity is any scene object a body can be mirrored to.
type Entity interface {
	UUID() string
	HandlePhysicsUpdate(position mgl32.Vec3, quaternion mgl32.Quat)
	DispatchEvent(ev event.Named)
}

// Registry resolves identifiers carried by inbound events.
type Registry interface {
	GetByUUID(uuid string) (Entity, bool)
}

// RegistryFunc adapts a lookup function to a Registry.
type RegistryFunc func(uuid string) (Entity, bool)

func (f RegistryFunc) GetByUUID(uuid string) (Entity, bool) { return f(uuid) }
