package entity

import "github.com/go-gl/mathgl/mgl32"

// Mesh is a renderable body described by its geometry's bounding box.
type Mesh struct {
	Base

	dimensions mgl32.Vec3
	mass       float64
	color      string
}

// NewBox creates a box mesh with the given side lengths.
func NewBox(name string, width, height, depth float32) *Mesh {
	return &Mesh{
		Base:       newBase(name, TypeMesh),
		dimensions: mgl32.Vec3{width, height, depth},
		mass:       1,
	}
}

// NewCube creates a box mesh with equal sides.
func NewCube(name string, side float32) *Mesh {
	return NewBox(name, side, side, side)
}

// Dimensions returns the unscaled bounding box of the geometry.
func (m *Mesh) Dimensions() mgl32.Vec3 { return m.dimensions }

func (m *Mesh) Mass() float64       { return m.mass }
func (m *Mesh) SetMass(v float64)   { m.mass = v }
func (m *Mesh) Color() string       { return m.color }
func (m *Mesh) SetColor(hex string) { m.color = hex }

func (m *Mesh) Snapshot() Snapshot {
	s := m.snapshot()
	s.Properties["dimensions"] = []any{float64(m.dimensions[0]), float64(m.dimensions[1]), float64(m.dimensions[2])}
	s.Properties["mass"] = m.mass
	s.Properties["color"] = m.color
	return s
}

func (m *Mesh) restore(s Snapshot) {
	m.Base.restore(s)
	if d, ok := vec3Prop(s.Properties, "dimensions"); ok {
		m.dimensions = d
	}
	if v, ok := floatProp(s.Properties, "mass"); ok {
		m.mass = v
	}
	if v, ok := s.Properties["color"].(string); ok {
		m.color = v
	}
}
