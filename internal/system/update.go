package system

import (
	"time"

	coresys "github.com/mage-engine/mage/internal/core/system"
	"github.com/mage-engine/mage/internal/scene"
)

// UpdateSystem advances every scene element. Phase 2 (Update).
type UpdateSystem struct {
	scene *scene.Scene
}

func NewUpdateSystem(s *scene.Scene) *UpdateSystem {
	return &UpdateSystem{scene: s}
}

func (s *UpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UpdateSystem) Update(dt time.Duration) {
	s.scene.Update(dt.Seconds())
}
