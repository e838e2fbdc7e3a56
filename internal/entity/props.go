package entity

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownType is returned when a snapshot names an entity type that cannot
// be rebuilt.
var ErrUnknownType = errors.New("unknown entity type")

// Restorable is implemented by every entity kind that can be persisted.
type Restorable interface {
	UUID() string
	Name() string
	Snapshot() Snapshot
}

// FromSnapshot rebuilds an entity, keeping the persisted identifier.
func FromSnapshot(s Snapshot) (Restorable, error) {
	switch s.Type {
	case TypeMesh:
		m := &Mesh{Base: newBase(s.Name, TypeMesh), mass: 1}
		m.restore(s)
		return m, nil
	case TypeLight:
		l := &Light{Base: newBase(s.Name, TypeLight), on: true}
		l.restore(s)
		return l, nil
	default:
		return nil, fmt.Errorf("restore %q (%s): %w", s.Name, s.Type, ErrUnknownType)
	}
}

func floatProp(props map[string]any, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func vec3Prop(props map[string]any, key string) (mgl32.Vec3, bool) {
	raw, ok := props[key].([]any)
	if !ok || len(raw) != 3 {
		return mgl32.Vec3{}, false
	}
	var out mgl32.Vec3
	for i, e := range raw {
		f, ok := floatProp(map[string]any{"v": e}, "v")
		if !ok {
			return mgl32.Vec3{}, false
		}
		out[i] = float32(f)
	}
	return out, true
}
