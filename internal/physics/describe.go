package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mage-engine/mage/internal/physics/protocol"
)

// Description is the serializable form of a body. Keys follow the simulation
// module's schema; "type" selects the body kind and "uuid" is always the
// owning entity's identifier once encoded.
type Description map[string]any

// Kind parses the "type" key; unknown or missing kinds are boxes.
func (d Description) Kind() protocol.BodyKind {
	s, _ := d["type"].(string)
	return protocol.ParseKind(s)
}

// Spatial is implemented by entities that expose their transform.
type Spatial interface {
	Position() mgl32.Vec3
	Quaternion() mgl32.Quat
	Scale() mgl32.Vec3
}

// Sized is implemented by entities with a geometry bounding box.
type Sized interface {
	Dimensions() mgl32.Vec3
}

// Massive is implemented by entities that carry their own mass.
type Massive interface {
	Mass() float64
}

// DescribeEntity extracts a base description from e's current state. It
// reads nothing but e and has no side effects.
func DescribeEntity(e Entity) Description {
	d := Description{"uuid": e.UUID()}
	scale := mgl32.Vec3{1, 1, 1}
	if s, ok := e.(Spatial); ok {
		scale = s.Scale()
		d["position"] = protocol.FromVec3(s.Position()).Map()
		d["quaternion"] = protocol.FromQuat(s.Quaternion()).Map()
		d["scale"] = protocol.FromVec3(scale).Map()
	}
	if s, ok := e.(Sized); ok {
		dims := s.Dimensions()
		d["dimensions"] = protocol.FromVec3(mgl32.Vec3{
			dims[0] * scale[0],
			dims[1] * scale[1],
			dims[2] * scale[2],
		}).Map()
	}
	if m, ok := e.(Massive); ok {
		d["mass"] = m.Mass()
	}
	return d
}

// Box describes a rigid box body.
type Box struct {
	Dimensions  mgl32.Vec3
	Mass        float64
	Friction    float64
	Restitution float64
	Position    mgl32.Vec3
	Quaternion  mgl32.Quat
}

func (b Box) Description() Description {
	d := b.fields()
	d["type"] = string(protocol.KindBox)
	return d
}

func (b Box) fields() Description {
	q := b.Quaternion
	if q == (mgl32.Quat{}) {
		q = mgl32.QuatIdent()
	}
	return Description{
		"dimensions":  protocol.FromVec3(b.Dimensions).Map(),
		"mass":        b.Mass,
		"friction":    b.Friction,
		"restitution": b.Restitution,
		"position":    protocol.FromVec3(b.Position).Map(),
		"quaternion":  protocol.FromQuat(q).Map(),
	}
}

// Wheel describes one wheel of a Vehicle, relative to the chassis.
type Wheel struct {
	Connection      mgl32.Vec3
	Radius          float64
	SuspensionRest  float64
	SuspensionStiff float64
	Front           bool
}

// Vehicle describes a raycast vehicle: a box chassis plus wheels.
type Vehicle struct {
	Chassis        Box
	Wheels         []Wheel
	MaxEngineForce float64
	MaxBrakeForce  float64
	MaxSteering    float64
}

func (v Vehicle) Description() Description {
	d := v.Options()
	d["type"] = string(protocol.KindVehicle)
	return d
}

// Options renders v without a type, ready to be layered over an entity's
// extracted description by Bridge.AddVehicle.
func (v Vehicle) Options() Description {
	wheels := make([]any, 0, len(v.Wheels))
	for _, w := range v.Wheels {
		wheels = append(wheels, map[string]any{
			"connection":      protocol.FromVec3(w.Connection).Map(),
			"radius":          w.Radius,
			"suspensionRest":  w.SuspensionRest,
			"suspensionStiff": w.SuspensionStiff,
			"front":           w.Front,
		})
	}
	return Description{
		"chassis":        map[string]any(v.Chassis.fields()),
		"wheels":         wheels,
		"maxEngineForce": v.MaxEngineForce,
		"maxBrakeForce":  v.MaxBrakeForce,
		"maxSteering":    v.MaxSteering,
	}
}
