// Package protocol defines the messages exchanged between the engine and the
// simulation context. Both directions are closed sets: every Command and
// Event is one of the types declared here.
package protocol

import "github.com/go-gl/mathgl/mgl32"

// Wire type identifiers. The simulation context reuses UPDATE_BODY and
// TERMINATE for its replies; direction disambiguates them.
const (
	TypeLoad       = "LOAD"
	TypeAddBox     = "ADD_BOX"
	TypeAddVehicle = "ADD_VEHICLE"
	TypeUpdateBody = "UPDATE_BODY"
	TypeTerminate  = "TERMINATE"
	TypeReady      = "READY"
	TypeDispatch   = "DISPATCH"
	TypeStep       = "STEP"
)

// BodyKind selects how the simulation context builds a body.
type BodyKind string

const (
	KindBox     BodyKind = "BOX"
	KindVehicle BodyKind = "VEHICLE"
)

// ParseKind maps a description type to a known kind. Anything unrecognised,
// including the empty string, is a box.
func ParseKind(s string) BodyKind {
	switch BodyKind(s) {
	case KindVehicle:
		return KindVehicle
	default:
		return KindBox
	}
}

// Vec3 is a serializable position.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quat is a serializable rotation.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

func FromVec3(v mgl32.Vec3) Vec3 {
	return Vec3{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

func FromQuat(q mgl32.Quat) Quat {
	return Quat{X: float64(q.V[0]), Y: float64(q.V[1]), Z: float64(q.V[2]), W: float64(q.W)}
}

func (v Vec3) Float32() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func (q Quat) Float32() mgl32.Quat {
	return mgl32.Quat{W: float32(q.W), V: mgl32.Vec3{float32(q.X), float32(q.Y), float32(q.Z)}}
}

// Map renders v in the {x,y,z} shape used inside descriptions.
func (v Vec3) Map() map[string]any {
	return map[string]any{"x": v.X, "y": v.Y, "z": v.Z}
}

func (q Quat) Map() map[string]any {
	return map[string]any{"x": q.X, "y": q.Y, "z": q.Z, "w": q.W}
}

// ── Outbound ──

// Command is a message sent to the simulation context.
type Command interface {
	Type() string
	isCommand()
}

// Init asks the simulation context to load its physics module.
type Init struct {
	Path string
}

// AddBody creates a body mirrored to the entity with the same UUID.
type AddBody struct {
	UUID        string
	Kind        BodyKind
	Description map[string]any
}

// UpdateBodyState forwards an opaque state payload to an existing body.
type UpdateBodyState struct {
	UUID  string
	State map[string]any
}

// Terminate asks the simulation context to shut down.
type Terminate struct{}

func (Init) Type() string { return TypeLoad }
func (c AddBody) Type() string {
	if c.Kind == KindVehicle {
		return TypeAddVehicle
	}
	return TypeAddBox
}
func (UpdateBodyState) Type() string { return TypeUpdateBody }
func (Terminate) Type() string       { return TypeTerminate }

func (Init) isCommand()            {}
func (AddBody) isCommand()         {}
func (UpdateBodyState) isCommand() {}
func (Terminate) isCommand()       {}

// ── Inbound ──

// Event is a message received from the simulation context.
type Event interface {
	Type() string
	isEvent()
}

// Ready reports that the physics module is loaded.
type Ready struct{}

// BodyTransform carries a body's new pose in simulation space.
type BodyTransform struct {
	UUID       string
	Position   Vec3
	Quaternion Quat
}

// CustomDispatch asks the engine to re-dispatch a named event on an entity.
type CustomDispatch struct {
	UUID      string
	EventName string
	EventData map[string]any
}

// Stepped reports one finished simulation step of Delta seconds.
type Stepped struct {
	Delta float64
}

// Terminated is the reply to Terminate.
type Terminated struct{}

// Unknown is what the decoder yields for a type it does not recognise.
type Unknown struct {
	Kind string
}

func (Ready) Type() string          { return TypeReady }
func (BodyTransform) Type() string  { return TypeUpdateBody }
func (CustomDispatch) Type() string { return TypeDispatch }
func (Stepped) Type() string        { return TypeStep }
func (Terminated) Type() string     { return TypeTerminate }
func (u Unknown) Type() string      { return u.Kind }

func (Ready) isEvent()          {}
func (BodyTransform) isEvent()  {}
func (CustomDispatch) isEvent() {}
func (Stepped) isEvent()        {}
func (Terminated) isEvent()     {}
func (Unknown) isEvent()        {}
