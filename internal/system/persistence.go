package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/mage-engine/mage/internal/core/system"
	"github.com/mage-engine/mage/internal/entity"
	"github.com/mage-engine/mage/internal/scene"
)

// SceneStore persists scene snapshots.
type SceneStore interface {
	SaveScene(ctx context.Context, scene string, snaps []entity.Snapshot) error
}

// PersistenceSystem periodically saves the scene's serializable entities.
// Phase 5 (Persist).
type PersistenceSystem struct {
	scene     *scene.Scene
	store     SceneStore
	log       *zap.Logger
	tickCount int
	interval  int // save every N ticks
}

func NewPersistenceSystem(s *scene.Scene, store SceneStore, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	return &PersistenceSystem{
		scene:    s,
		store:    store,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.save()
}

// SaveNow persists the scene immediately. Called for graceful shutdown.
func (s *PersistenceSystem) SaveNow() error {
	s.tickCount = 0
	return s.save()
}

func (s *PersistenceSystem) save() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snaps := s.scene.Snapshot()
	if err := s.store.SaveScene(ctx, s.scene.Name(), snaps); err != nil {
		s.log.Error("scene snapshot failed", zap.String("scene", s.scene.Name()), zap.Error(err))
		return err
	}
	s.log.Debug("scene snapshot saved", zap.String("scene", s.scene.Name()), zap.Int("entities", len(snaps)))
	return nil
}
