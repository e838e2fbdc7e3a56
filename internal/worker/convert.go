package worker

import (
	"encoding/json"
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"

	"github.com/mage-engine/mage/internal/physics/protocol"
)

// toLua converts decoded JSON-like values into Lua values.
func toLua(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case string:
		return lua.LString(v)
	case float64:
		return lua.LNumber(v)
	case float32:
		return lua.LNumber(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case map[string]any:
		t := L.CreateTable(0, len(v))
		for k, x := range v {
			t.RawSetString(k, toLua(L, x))
		}
		return t
	case []any:
		t := L.CreateTable(len(v), 0)
		for i, x := range v {
			t.RawSetInt(i+1, toLua(L, x))
		}
		return t
	case []float64:
		t := L.CreateTable(len(v), 0)
		for i, x := range v {
			t.RawSetInt(i+1, lua.LNumber(x))
		}
		return t
	case []string:
		t := L.CreateTable(len(v), 0)
		for i, x := range v {
			t.RawSetInt(i+1, lua.LString(x))
		}
		return t
	default:
		return reflectToLua(L, reflect.ValueOf(v))
	}
}

// reflectToLua covers the typed values callers put in descriptions and
// states: every numeric kind, named maps and slices, pointers. Structs and
// other shapes go through their JSON form, the way the websocket codec
// would carry them.
func reflectToLua(L *lua.LState, rv reflect.Value) lua.LValue {
	switch rv.Kind() {
	case reflect.Invalid:
		return lua.LNil
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
		return toLua(L, rv.Elem().Interface())
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			t := L.CreateTable(0, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				t.RawSetString(iter.Key().String(), toLua(L, iter.Value().Interface()))
			}
			return t
		}
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return lua.LNil
		}
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			t := L.CreateTable(rv.Len(), 0)
			for i := 0; i < rv.Len(); i++ {
				t.RawSetInt(i+1, toLua(L, rv.Index(i).Interface()))
			}
			return t
		}
	}
	return viaJSON(L, rv.Interface())
}

func viaJSON(L *lua.LState, v any) lua.LValue {
	data, err := json.Marshal(v)
	if err != nil {
		return lua.LString(fmt.Sprint(v))
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return lua.LString(fmt.Sprint(v))
	}
	return toLua(L, decoded)
}

// fromLua converts a Lua value back. Sequences become []any, other tables
// become map[string]any; functions and userdata become nil.
func fromLua(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if isSequence(v) {
			out := make([]any, 0, v.MaxN())
			for i := 1; i <= v.MaxN(); i++ {
				out = append(out, fromLua(v.RawGetInt(i)))
			}
			return out
		}
		return tableToMap(v)
	default:
		return nil
	}
}

func tableToMap(t *lua.LTable) map[string]any {
	out := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		out[lua.LVAsString(k)] = fromLua(v)
	})
	return out
}

func isSequence(t *lua.LTable) bool {
	n := t.MaxN()
	if n == 0 {
		return false
	}
	count := 0
	t.ForEach(func(lua.LValue, lua.LValue) { count++ })
	return count == n
}

func vec3From(t *lua.LTable) protocol.Vec3 {
	if t == nil {
		return protocol.Vec3{}
	}
	return protocol.Vec3{
		X: component(t, "x", 1),
		Y: component(t, "y", 2),
		Z: component(t, "z", 3),
	}
}

// quatFrom defaults to the identity rotation.
func quatFrom(t *lua.LTable) protocol.Quat {
	if t == nil {
		return protocol.Quat{W: 1}
	}
	q := protocol.Quat{
		X: component(t, "x", 1),
		Y: component(t, "y", 2),
		Z: component(t, "z", 3),
		W: 1,
	}
	if w := field(t, "w", 4); w != lua.LNil {
		q.W = float64(lua.LVAsNumber(w))
	}
	return q
}

// component reads t.key, falling back to t[idx].
func component(t *lua.LTable, key string, idx int) float64 {
	return float64(lua.LVAsNumber(field(t, key, idx)))
}

func field(t *lua.LTable, key string, idx int) lua.LValue {
	if v := t.RawGetString(key); v != lua.LNil {
		return v
	}
	return t.RawGetInt(idx)
}
