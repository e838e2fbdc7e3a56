package system

import (
	"time"

	coresys "github.com/mage-engine/mage/internal/core/system"
	"github.com/mage-engine/mage/internal/scene"
)

// RenderSystem hands the scene to the renderer once per tick. Phase 4 (Render).
type RenderSystem struct {
	scene    *scene.Scene
	renderer scene.Renderer
}

func NewRenderSystem(s *scene.Scene, r scene.Renderer) *RenderSystem {
	return &RenderSystem{scene: s, renderer: r}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

func (s *RenderSystem) Update(_ time.Duration) {
	if s.renderer != nil {
		s.renderer.Render(s.scene)
	}
}
