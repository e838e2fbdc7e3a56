package system

import (
	"time"

	coresys "github.com/mage-engine/mage/internal/core/system"
	"github.com/mage-engine/mage/internal/scene"
)

// CleanupSystem flushes the deferred removal queue at tick end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	scene *scene.Scene
}

func NewCleanupSystem(s *scene.Scene) *CleanupSystem {
	return &CleanupSystem{scene: s}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.scene.FlushRemovals()
}
