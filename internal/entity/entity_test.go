package entity

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mage-engine/mage/internal/core/event"
)

func TestNewEntityDefaults(t *testing.T) {
	m := NewCube("", 2)

	assert.NotEmpty(t, m.UUID())
	assert.True(t, strings.HasPrefix(m.Name(), "mesh_"))
	assert.Equal(t, TypeMesh, m.EntityType())
	assert.Equal(t, mgl32.QuatIdent(), m.Quaternion())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, m.Scale())
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, m.Dimensions())
	assert.True(t, m.IsSerializable())

	other := NewCube("", 2)
	assert.NotEqual(t, m.UUID(), other.UUID())
}

func TestHandlePhysicsUpdateAppliesPose(t *testing.T) {
	m := NewBox("crate", 1, 1, 1)
	var notified int
	m.AddListener(EventPhysicsUpdate, func(event.Named) { notified++ })

	q := mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0})
	m.HandlePhysicsUpdate(mgl32.Vec3{1, 2, 3}, q)

	assert.Equal(t, mgl32.Vec3{1, 2, 3}, m.Position())
	assert.Equal(t, q, m.Quaternion())
	assert.Equal(t, 1, notified)
}

func TestTags(t *testing.T) {
	l := NewLight("sun", "#ffffff", 1)
	l.AddTags("LIGHT_HOLDER", "sun", "sun")
	assert.Equal(t, []string{"LIGHT_HOLDER", "sun"}, l.Tags())
	assert.True(t, l.HasTag("sun"))
	assert.False(t, l.HasTag("moon"))
}

func TestLightSwitch(t *testing.T) {
	l := NewLight("lamp", "#f1c40f", 0.8)
	assert.Equal(t, 0.8, l.Intensity())
	l.TurnOff()
	assert.Zero(t, l.Intensity())
	l.TurnOn()
	assert.Equal(t, 0.8, l.Intensity())
}

func TestCameraFollowsTarget(t *testing.T) {
	target := NewCube("target", 1)
	target.SetPosition(mgl32.Vec3{10, 0, 0})

	cam := NewCamera("main", 45, 1, 0.1, 100)
	assert.False(t, cam.IsSerializable())
	cam.Follow(target)
	cam.Update(0.016)

	forward := cam.Quaternion().Rotate(mgl32.Vec3{0, 0, -1})
	assert.InDelta(t, 1, forward.X(), 1e-4)
	assert.InDelta(t, 0, forward.Z(), 1e-4)

	cam.SetAspect(1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, cam.Aspect(), 1e-6)
	cam.SetAspect(0, 1080)
	assert.InDelta(t, 1920.0/1080.0, cam.Aspect(), 1e-6)
}

func TestSnapshotRestoreKeepsIdentity(t *testing.T) {
	m := NewBox("crate", 1, 2, 3)
	m.SetMass(5)
	m.SetColor("#ff0000")
	m.SetPosition(mgl32.Vec3{4, 5, 6})
	m.AddTags("loot")

	restored, err := FromSnapshot(m.Snapshot())
	require.NoError(t, err)

	rm, ok := restored.(*Mesh)
	require.True(t, ok)
	assert.Equal(t, m.UUID(), rm.UUID())
	assert.Equal(t, "crate", rm.Name())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, rm.Dimensions())
	assert.Equal(t, 5.0, rm.Mass())
	assert.Equal(t, "#ff0000", rm.Color())
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, rm.Position())
	assert.Equal(t, []string{"loot"}, rm.Tags())

	l := NewLight("lamp", "#fff", 2)
	l.TurnOff()
	restored, err = FromSnapshot(l.Snapshot())
	require.NoError(t, err)
	assert.False(t, restored.(*Light).IsOn())

	_, err = FromSnapshot(Snapshot{Type: TypeSound, Name: "boom"})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestSnapshotCarriesBody(t *testing.T) {
	m := NewCube("crate", 1)
	snap := m.Snapshot()
	_, ok := snap.Properties[PropPhysics]
	assert.False(t, ok, "no body, no physics property")

	m.SetBody(map[string]any{"type": "BOX", "mass": 2.0})
	snap = m.Snapshot()
	assert.Equal(t, 1.0, snap.Properties["mass"])

	r, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "BOX", "mass": 2.0}, r.(*Mesh).Body())
}

func TestGenerateRandomName(t *testing.T) {
	name := GenerateRandomName("Light")
	assert.True(t, strings.HasPrefix(name, "light_"))
	assert.Len(t, name, len("light_")+8)
}
