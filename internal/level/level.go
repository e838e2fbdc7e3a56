// Package level loads YAML level files into a scene.
package level

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/mage-engine/mage/internal/entity"
	"github.com/mage-engine/mage/internal/scene"
	"github.com/mage-engine/mage/internal/universe"
)

var ErrUnknownEntityType = errors.New("unknown entity type")

// Level is one YAML level file.
type Level struct {
	Name       string       `yaml:"name"`
	ClearColor string       `yaml:"clear_color"`
	Fog        *Fog         `yaml:"fog"`
	Camera     *Camera      `yaml:"camera"`
	Entities   []EntitySpec `yaml:"entities"`
}

type Fog struct {
	Color   string  `yaml:"color"`
	Density float64 `yaml:"density"`
}

type Camera struct {
	Name     string    `yaml:"name"`
	Fov      float32   `yaml:"fov"`
	Near     float32   `yaml:"near"`
	Far      float32   `yaml:"far"`
	Position []float32 `yaml:"position"`
	Follow   string    `yaml:"follow"` // entity name
}

// EntitySpec describes one entity. Type is "mesh" or "light"; the
// type-specific fields of the other kind are ignored.
type EntitySpec struct {
	Type         string    `yaml:"type"`
	Name         string    `yaml:"name"`
	Position     []float32 `yaml:"position"`
	Rotation     []float32 `yaml:"rotation"` // euler XYZ, radians
	Scale        []float32 `yaml:"scale"`
	Tags         []string  `yaml:"tags"`
	Parent       string    `yaml:"parent"` // entity name
	Helper       bool      `yaml:"helper"`
	Serializable *bool     `yaml:"serializable"`

	// mesh
	Dimensions []float32 `yaml:"dimensions"`
	Mass       *float64  `yaml:"mass"`
	Color      string    `yaml:"color"`

	// light
	Intensity *float64 `yaml:"intensity"`
	Off       bool     `yaml:"off"`

	// Physics is a body description; its "type" selects BOX or VEHICLE.
	Physics map[string]any `yaml:"physics"`
}

// Load reads and validates a level file.
func Load(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: read %s: %w", path, err)
	}
	return Parse(raw, path)
}

// Parse decodes and validates a level. name is only used in error messages.
func Parse(raw []byte, name string) (*Level, error) {
	var l Level
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("level: parse %s: %w", name, err)
	}
	if err := l.validate(); err != nil {
		return nil, fmt.Errorf("level: %s: %w", name, err)
	}
	return &l, nil
}

func (l *Level) validate() error {
	for i, spec := range l.Entities {
		switch spec.Type {
		case "mesh", "light":
		default:
			return fmt.Errorf("entity %d %q: %w: %q", i, spec.Name, ErrUnknownEntityType, spec.Type)
		}
		for field, v := range map[string][]float32{
			"position":   spec.Position,
			"rotation":   spec.Rotation,
			"scale":      spec.Scale,
			"dimensions": spec.Dimensions,
		} {
			if len(v) != 0 && len(v) != 3 {
				return fmt.Errorf("entity %d %q: %s needs 3 components, got %d", i, spec.Name, field, len(v))
			}
		}
	}
	if l.Camera != nil && len(l.Camera.Position) != 0 && len(l.Camera.Position) != 3 {
		return fmt.Errorf("camera: position needs 3 components, got %d", len(l.Camera.Position))
	}
	return nil
}

// Spawn builds the level into s and registers physics bodies with the
// scene's bridge. It returns the number of entities added.
func (l *Level) Spawn(s *scene.Scene) (int, error) {
	if l.ClearColor != "" {
		s.SetClearColor(l.ClearColor)
	}
	if l.Fog != nil {
		s.SetFog(l.Fog.Color, l.Fog.Density)
	}

	built := make([]universe.Element, len(l.Entities))
	byName := make(map[string]universe.Element, len(l.Entities))
	for i, spec := range l.Entities {
		e := build(spec)
		built[i] = e
		byName[e.Name()] = e
		s.Add(e)
	}

	for i, spec := range l.Entities {
		if spec.Parent == "" {
			continue
		}
		parent, ok := byName[spec.Parent]
		if !ok {
			return i, fmt.Errorf("level: entity %q: unknown parent %q", spec.Name, spec.Parent)
		}
		if p, ok := built[i].(interface{ SetParent(string) }); ok {
			p.SetParent(parent.UUID())
		}
	}

	if l.Camera != nil {
		cam, err := l.Camera.build(byName)
		if err != nil {
			return len(built), err
		}
		s.SetCamera(cam)
	}

	for i, spec := range l.Entities {
		if len(spec.Physics) == 0 {
			continue
		}
		s.AddBody(built[i], normalize(spec.Physics).(map[string]any))
	}
	return len(built), nil
}

func build(spec EntitySpec) universe.Element {
	var (
		e    universe.Element
		base interface {
			SetPosition(mgl32.Vec3)
			SetRotation(x, y, z float32)
			SetScale(mgl32.Vec3)
			AddTags(...string)
			SetHelper(bool)
			SetSerializable(bool)
		}
	)
	switch spec.Type {
	case "light":
		color := spec.Color
		if color == "" {
			color = "#ffffff"
		}
		intensity := 1.0
		if spec.Intensity != nil {
			intensity = *spec.Intensity
		}
		l := entity.NewLight(spec.Name, color, intensity)
		if spec.Off {
			l.TurnOff()
		}
		e, base = l, l
	default:
		d := vec3(spec.Dimensions, mgl32.Vec3{1, 1, 1})
		m := entity.NewBox(spec.Name, d[0], d[1], d[2])
		if spec.Mass != nil {
			m.SetMass(*spec.Mass)
		}
		m.SetColor(spec.Color)
		e, base = m, m
	}

	base.SetPosition(vec3(spec.Position, mgl32.Vec3{}))
	if r := spec.Rotation; len(r) == 3 {
		base.SetRotation(r[0], r[1], r[2])
	}
	base.SetScale(vec3(spec.Scale, mgl32.Vec3{1, 1, 1}))
	base.AddTags(spec.Tags...)
	base.SetHelper(spec.Helper)
	if spec.Serializable != nil {
		base.SetSerializable(*spec.Serializable)
	}
	return e
}

func (c *Camera) build(byName map[string]universe.Element) (*entity.Camera, error) {
	name := c.Name
	if name == "" {
		name = "camera"
	}
	fov, near, far := c.Fov, c.Near, c.Far
	if fov == 0 {
		fov = 60
	}
	if near == 0 {
		near = 0.1
	}
	if far == 0 {
		far = 1000
	}
	cam := entity.NewCamera(name, fov, 1, near, far)
	cam.SetPosition(vec3(c.Position, mgl32.Vec3{0, 0, 10}))
	if c.Follow != "" {
		target, ok := byName[c.Follow].(interface{ Position() mgl32.Vec3 })
		if !ok {
			return nil, fmt.Errorf("level: camera follows unknown entity %q", c.Follow)
		}
		cam.Follow(target)
		cam.Update(0)
	}
	return cam, nil
}

func vec3(v []float32, def mgl32.Vec3) mgl32.Vec3 {
	if len(v) != 3 {
		return def
	}
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// normalize turns YAML integers into float64 so descriptions look the same
// as ones decoded from JSON.
func normalize(v any) any {
	switch v := v.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, x := range v {
			out[k] = normalize(x)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = normalize(x)
		}
		return out
	default:
		return v
	}
}
