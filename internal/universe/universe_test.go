package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/entity"
)

func TestAddAndLookup(t *testing.T) {
	u := New(zap.NewNop())
	crate := entity.NewCube("crate", 1)
	u.Add(crate)

	byName, ok := u.Get("crate")
	require.True(t, ok)
	assert.Same(t, crate, byName)

	byUUID, ok := u.GetByUUID(crate.UUID())
	require.True(t, ok)
	assert.Same(t, crate, byUUID)

	_, ok = u.GetByUUID("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, u.Len())
}

func TestNamesAreNormalised(t *testing.T) {
	u := New(zap.NewNop())
	// "é" precomposed vs. "e" + combining acute accent
	u.Add(entity.NewCube("cafe\u0301", 1))

	_, ok := u.Get("caf\u00e9")
	assert.True(t, ok)
}

func TestSetReplacesAndForgetsOldUUID(t *testing.T) {
	u := New(zap.NewNop())
	first := entity.NewCube("crate", 1)
	second := entity.NewCube("crate", 1)
	u.Add(first)
	u.Add(second)

	_, ok := u.GetByUUID(first.UUID())
	assert.False(t, ok, "replaced element must not resolve")
	got, ok := u.GetByUUID(second.UUID())
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestRemove(t *testing.T) {
	u := New(zap.NewNop())
	crate := entity.NewCube("crate", 1)
	u.Add(crate)

	removed, ok := u.Remove("crate")
	require.True(t, ok)
	assert.Same(t, crate, removed)

	_, ok = u.GetByUUID(crate.UUID())
	assert.False(t, ok)
	_, ok = u.Remove("crate")
	assert.False(t, ok)
}

func TestDeferredRemoval(t *testing.T) {
	u := New(zap.NewNop())
	a := entity.NewCube("a", 1)
	b := entity.NewCube("b", 1)
	u.Add(a)
	u.Add(b)

	u.MarkForRemoval("a")
	u.MarkForRemoval("a")
	_, ok := u.Get("a")
	assert.True(t, ok, "removal waits for the flush")

	var flushed []string
	u.FlushRemovals(func(e Element) { flushed = append(flushed, e.Name()) })
	assert.Equal(t, []string{"a"}, flushed)
	assert.Equal(t, 1, u.Len())
}

type countingElement struct {
	*entity.Mesh
	updates, physics int
}

func (c *countingElement) Update(float64)          { c.updates++ }
func (c *countingElement) OnPhysicsUpdate(float64) { c.physics++ }

func TestFanOut(t *testing.T) {
	u := New(zap.NewNop())
	a := &countingElement{Mesh: entity.NewCube("a", 1)}
	b := &countingElement{Mesh: entity.NewCube("b", 1)}
	u.Add(a)
	u.Add(b)

	u.Update(0.016)
	u.Update(0.016)
	u.OnPhysicsUpdate(0.016)

	assert.Equal(t, 2, a.updates)
	assert.Equal(t, 2, b.updates)
	assert.Equal(t, 1, a.physics)
	assert.Equal(t, 1, b.physics)
}

func TestEachAllowsRemoval(t *testing.T) {
	u := New(zap.NewNop())
	u.Add(entity.NewCube("a", 1))
	u.Add(entity.NewCube("b", 1))

	u.Each(func(e Element) { u.Remove(e.Name()) })
	assert.Zero(t, u.Len())
}
