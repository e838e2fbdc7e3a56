package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/config"
	"github.com/mage-engine/mage/internal/core/event"
	"github.com/mage-engine/mage/internal/entity"
	"github.com/mage-engine/mage/internal/physics"
	"github.com/mage-engine/mage/internal/universe"
)

type stepCounter struct {
	*entity.Mesh
	steps []float64
}

func (c *stepCounter) OnPhysicsUpdate(dt float64) { c.steps = append(c.steps, dt) }

func newTestScene(t *testing.T) (*Scene, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	u := universe.New(zap.NewNop())
	bridge, err := physics.NewBridge(config.Defaults().Physics, nil, Registry(u), bus, zap.NewNop())
	require.NoError(t, err)
	return New("test", u, bridge, bus, zap.NewNop()), bus
}

func step(bus *event.Bus, dt float64) {
	event.Emit(bus, event.PhysicsStepped{Delta: dt})
	bus.SwapBuffers()
	bus.DispatchAll()
}

func TestCreateSubscribesOnce(t *testing.T) {
	s, bus := newTestScene(t)
	c := &stepCounter{Mesh: entity.NewCube("crate", 1)}
	s.Add(c)

	step(bus, 0.1)
	assert.Empty(t, c.steps)

	s.Create()
	s.Create()
	step(bus, 0.2)
	assert.Equal(t, []float64{0.2}, c.steps)

	s.Dispose()
	s.Dispose()
	step(bus, 0.3)
	assert.Equal(t, []float64{0.2}, c.steps)
}

func TestRegistryResolvesUniverseElements(t *testing.T) {
	s, _ := newTestScene(t)
	crate := entity.NewCube("crate", 1)
	s.Add(crate)

	reg := Registry(s.Universe())
	e, ok := reg.GetByUUID(crate.UUID())
	require.True(t, ok)
	e.HandlePhysicsUpdate(mgl32.Vec3{0, 2, 0}, mgl32.QuatIdent())
	assert.Equal(t, mgl32.Vec3{0, 2, 0}, crate.Position())

	_, ok = reg.GetByUUID("missing")
	assert.False(t, ok)
}

func TestHierarchy(t *testing.T) {
	s, _ := newTestScene(t)
	ground := entity.NewBox("ground", 10, 1, 10)
	crate := entity.NewCube("crate", 1)
	crate.SetParent(ground.UUID())
	lamp := entity.NewLight("lamp", "#fff", 1)
	gizmo := entity.NewCube("gizmo", 1)
	gizmo.SetHelper(true)
	cam := entity.NewCamera("cam", 60, 1, 0.1, 100)
	for _, e := range []universe.Element{ground, crate, lamp, gizmo, cam} {
		s.Add(e)
	}

	assert.Equal(t, []Node{
		{
			UUID: ground.UUID(), Name: "ground", Type: entity.TypeMesh,
			Children: []Node{{UUID: crate.UUID(), Name: "crate", Type: entity.TypeMesh}},
		},
		{UUID: lamp.UUID(), Name: "lamp", Type: entity.TypeLight},
	}, s.Hierarchy())
}

func TestFirstCameraBecomesSceneCamera(t *testing.T) {
	s, _ := newTestScene(t)
	first := entity.NewCamera("first", 60, 1, 0.1, 100)
	second := entity.NewCamera("second", 45, 1, 0.1, 100)
	s.Add(first)
	s.Add(second)
	assert.Same(t, first, s.Camera())

	s.SetCamera(second)
	s.SetSize(1600, 900)
	assert.Same(t, second, s.Camera())
	assert.InDelta(t, 16.0/9.0, second.Aspect(), 1e-6)
}

func TestRemoveIsDeferredAndAnnounced(t *testing.T) {
	s, bus := newTestScene(t)
	crate := entity.NewCube("crate", 1)
	cam := entity.NewCamera("cam", 60, 1, 0.1, 100)
	s.Add(crate)
	s.Add(cam)

	var removed []event.EntityRemoved
	event.Subscribe(bus, func(ev event.EntityRemoved) { removed = append(removed, ev) })

	s.Remove(crate)
	s.Remove(cam)
	_, ok := s.Get("crate")
	assert.True(t, ok)

	assert.Equal(t, 2, s.FlushRemovals())
	_, ok = s.Get("crate")
	assert.False(t, ok)
	assert.Nil(t, s.Camera())

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.ElementsMatch(t, []event.EntityRemoved{
		{UUID: crate.UUID(), Name: "crate"},
		{UUID: cam.UUID(), Name: "cam"},
	}, removed)
}

func TestSnapshotAndRestore(t *testing.T) {
	s, _ := newTestScene(t)
	crate := entity.NewCube("crate", 2)
	crate.SetPosition(mgl32.Vec3{1, 2, 3})
	lamp := entity.NewLight("lamp", "#ffcc00", 0.5)
	gizmo := entity.NewCube("gizmo", 1)
	gizmo.SetHelper(true)
	s.Add(crate)
	s.Add(lamp)
	s.Add(gizmo)
	s.Add(entity.NewCamera("cam", 60, 1, 0.1, 100))

	snaps := s.Snapshot()
	require.Len(t, snaps, 2)

	restored, _ := newTestScene(t)
	require.NoError(t, restored.Restore(snaps))

	e, ok := restored.GetByUUID(crate.UUID())
	require.True(t, ok)
	assert.Equal(t, "crate", e.Name())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, e.(*entity.Mesh).Position())
	_, ok = restored.Get("lamp")
	assert.True(t, ok)
}

func TestRestoreReportsUnknownTypes(t *testing.T) {
	s, _ := newTestScene(t)
	good := entity.NewCube("crate", 1).Snapshot()
	bad := entity.Snapshot{UUID: "x", Name: "speaker", Type: entity.TypeSound}

	err := s.Restore([]entity.Snapshot{bad, good})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrUnknownType)
	_, ok := s.Get("crate")
	assert.True(t, ok)
}

func TestSceneSettings(t *testing.T) {
	s, _ := newTestScene(t)
	assert.Equal(t, "#000000", s.ClearColor())
	assert.Nil(t, s.Fog())

	s.SetClearColor("#1d1f21")
	s.SetFog("#1d1f21", 0.02)
	assert.Equal(t, "#1d1f21", s.ClearColor())
	assert.Equal(t, &Fog{Color: "#1d1f21", Density: 0.02}, s.Fog())

	s.RemoveFog()
	assert.Nil(t, s.Fog())
}
