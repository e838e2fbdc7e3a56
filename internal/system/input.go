package system

import (
	"time"

	coresys "github.com/mage-engine/mage/internal/core/system"
	"github.com/mage-engine/mage/internal/physics"
)

// PhysicsInputSystem drains simulation events into the scene. Phase 0 (Input).
type PhysicsInputSystem struct {
	bridge     *physics.Bridge
	maxPerTick int
}

func NewPhysicsInputSystem(bridge *physics.Bridge, maxPerTick int) *PhysicsInputSystem {
	return &PhysicsInputSystem{bridge: bridge, maxPerTick: maxPerTick}
}

func (s *PhysicsInputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *PhysicsInputSystem) Update(_ time.Duration) {
	s.bridge.Dispatch(s.maxPerTick)
}
