package physics

import (
	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/core/event"
	"github.com/mage-engine/mage/internal/physics/protocol"
)

// handle routes one inbound event. Events naming an unknown identifier are
// dropped without error.
func (b *Bridge) handle(ev protocol.Event) {
	switch ev := ev.(type) {
	case protocol.Ready:
		b.markReady()
	case protocol.BodyTransform:
		if e, ok := b.registry.GetByUUID(ev.UUID); ok {
			e.HandlePhysicsUpdate(ev.Position.Float32(), ev.Quaternion.Float32())
		}
	case protocol.CustomDispatch:
		if e, ok := b.registry.GetByUUID(ev.UUID); ok {
			e.DispatchEvent(event.Named{Type: ev.EventName, Data: ev.EventData})
		}
	case protocol.Stepped:
		if b.bus != nil {
			event.Emit(b.bus, event.PhysicsStepped{Delta: ev.Delta})
		}
	case protocol.Terminated:
		b.release()
	case protocol.Unknown:
		b.log.Debug("unknown simulation event ignored", zap.String("type", ev.Kind))
	default:
		b.log.Debug("unhandled simulation event", zap.String("type", ev.Type()))
	}
}
