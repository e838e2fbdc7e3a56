package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/mage-engine/mage/internal/physics"
	"github.com/mage-engine/mage/internal/physics/protocol"
)

func TestLuaValueConversion(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	in := map[string]any{
		"mass":   2.5,
		"name":   "crate",
		"static": false,
		"wheels": []any{map[string]any{"radius": 0.4}, map[string]any{"radius": 0.5}},
		"dims":   []float64{1, 2, 3},
		"empty":  map[string]any{},
	}
	out := fromLua(toLua(L, in))
	assert.Equal(t, map[string]any{
		"mass":   2.5,
		"name":   "crate",
		"static": false,
		"wheels": []any{map[string]any{"radius": 0.4}, map[string]any{"radius": 0.5}},
		"dims":   []any{1.0, 2.0, 3.0},
		"empty":  map[string]any{},
	}, out)
}

func TestTypedValuesKeepTheirShape(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	type offset struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	speed := 12.5
	in := map[string]any{
		"ints":    []int{1, 2},
		"gains":   map[string]float64{"x": 1},
		"gear":    int32(4),
		"flags":   uint8(200),
		"chassis": physics.Description{"type": "BOX", "mass": int64(800)},
		"offset":  offset{X: 1, Y: -2},
		"speed":   &speed,
		"axles":   [2]float32{0.5, 1.5},
		"nothing": (*float64)(nil),
	}
	out := fromLua(toLua(L, in))
	assert.Equal(t, map[string]any{
		"ints":    []any{1.0, 2.0},
		"gains":   map[string]any{"x": 1.0},
		"gear":    4.0,
		"flags":   200.0,
		"chassis": map[string]any{"type": "BOX", "mass": 800.0},
		"offset":  map[string]any{"x": 1.0, "y": -2.0},
		"speed":   12.5,
		"axles":   []any{0.5, 1.5},
	}, out)
}

func TestVectorsFromLua(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	require.NoError(t, L.DoString(`
named = { x = 1, y = 2, z = 3 }
positional = { 4, 5, 6 }
rot = { x = 0, y = 1, z = 0, w = 0 }
norot = { x = 0 }
`))
	table := func(name string) *lua.LTable { return L.GetGlobal(name).(*lua.LTable) }

	assert.Equal(t, protocol.Vec3{X: 1, Y: 2, Z: 3}, vec3From(table("named")))
	assert.Equal(t, protocol.Vec3{X: 4, Y: 5, Z: 6}, vec3From(table("positional")))
	assert.Equal(t, protocol.Quat{Y: 1}, quatFrom(table("rot")))
	assert.Equal(t, protocol.Quat{W: 1}, quatFrom(table("norot")))
	assert.Equal(t, protocol.Quat{W: 1}, quatFrom(nil))
}
