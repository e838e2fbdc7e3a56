// Package entity holds the scene objects the engine registers in its
// universe: meshes, lights and cameras share the Base defined here.
package entity

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/mage-engine/mage/internal/core/event"
)

// Type tags what kind of scene object an entity is.
type Type string

const (
	TypeMesh   Type = "MESH"
	TypeLight  Type = "LIGHT"
	TypeCamera Type = "CAMERA"
	TypeSound  Type = "SOUND"
)

// Named event types dispatched by entities themselves.
const (
	EventPhysicsUpdate = "physicsUpdate"
)

// PropPhysics is the snapshot property holding an entity's body description.
const PropPhysics = "physics"

// Base is the state every entity shares. Embed it by value; the pointer
// methods are promoted.
type Base struct {
	event.Dispatcher

	uuid         string
	name         string
	typ          Type
	tags         []string
	parent       string // parent uuid, empty for roots
	serializable bool
	helper       bool
	body         map[string]any // physics description the entity was registered with

	position   mgl32.Vec3
	quaternion mgl32.Quat
	scale      mgl32.Vec3
}

func newBase(name string, typ Type) Base {
	if name == "" {
		name = GenerateRandomName(string(typ))
	}
	return Base{
		uuid:         uuid.NewString(),
		name:         name,
		typ:          typ,
		serializable: true,
		quaternion:   mgl32.QuatIdent(),
		scale:        mgl32.Vec3{1, 1, 1},
	}
}

// GenerateRandomName builds "<prefix>_<8 hex chars>".
func GenerateRandomName(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s", strings.ToLower(prefix), id[:8])
}

func (b *Base) UUID() string     { return b.uuid }
func (b *Base) Name() string     { return b.name }
func (b *Base) EntityType() Type { return b.typ }

// restoreUUID reattaches a persisted identifier. Only loaders call it,
// before the entity is registered anywhere.
func (b *Base) restoreUUID(id string) {
	if id != "" {
		b.uuid = id
	}
}

func (b *Base) Position() mgl32.Vec3   { return b.position }
func (b *Base) Quaternion() mgl32.Quat { return b.quaternion }
func (b *Base) Scale() mgl32.Vec3      { return b.scale }

func (b *Base) SetPosition(p mgl32.Vec3) { b.position = p }

func (b *Base) SetQuaternion(q mgl32.Quat) { b.quaternion = q.Normalize() }

// SetRotation sets the orientation from Euler angles in radians, XYZ order.
func (b *Base) SetRotation(x, y, z float32) {
	b.quaternion = mgl32.AnglesToQuat(x, y, z, mgl32.XYZ)
}

func (b *Base) SetScale(s mgl32.Vec3) { b.scale = s }

// HandlePhysicsUpdate applies a pose computed by the simulation context.
// The values are taken as-is: entities share the simulation's coordinates.
func (b *Base) HandlePhysicsUpdate(position mgl32.Vec3, quaternion mgl32.Quat) {
	b.position = position
	b.quaternion = quaternion
	if b.HasListener(EventPhysicsUpdate) {
		b.DispatchEvent(event.Named{Type: EventPhysicsUpdate})
	}
}

// Update and OnPhysicsUpdate are per-frame hooks; the base does nothing.
func (b *Base) Update(dt float64)          {}
func (b *Base) OnPhysicsUpdate(dt float64) {}

func (b *Base) Tags() []string { return append([]string(nil), b.tags...) }

func (b *Base) AddTags(tags ...string) {
	for _, t := range tags {
		if !b.HasTag(t) {
			b.tags = append(b.tags, t)
		}
	}
}

func (b *Base) HasTag(tag string) bool {
	for _, t := range b.tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (b *Base) Parent() string         { return b.parent }
func (b *Base) SetParent(uuid string)  { b.parent = uuid }
func (b *Base) HasParent() bool        { return b.parent != "" }
func (b *Base) IsHelper() bool         { return b.helper }
func (b *Base) SetHelper(v bool)       { b.helper = v }
func (b *Base) IsSerializable() bool   { return b.serializable }
func (b *Base) SetSerializable(v bool) { b.serializable = v }

// Body returns the physics description the entity was registered with, nil
// when it has no body.
func (b *Base) Body() map[string]any { return b.body }

// SetBody records the physics description so a restored entity can register
// the same body again. The map is kept as given.
func (b *Base) SetBody(desc map[string]any) { b.body = desc }

// Snapshot is the persisted form of an entity.
type Snapshot struct {
	UUID       string
	Name       string
	Type       Type
	Parent     string
	Tags       []string
	Position   mgl32.Vec3
	Quaternion mgl32.Quat
	Scale      mgl32.Vec3
	Properties map[string]any
}

func (b *Base) snapshot() Snapshot {
	return Snapshot{
		UUID:       b.uuid,
		Name:       b.name,
		Type:       b.typ,
		Parent:     b.parent,
		Tags:       b.Tags(),
		Position:   b.position,
		Quaternion: b.quaternion,
		Scale:      b.scale,
		Properties: b.properties(),
	}
}

// properties starts the kind-specific property map with what Base persists.
func (b *Base) properties() map[string]any {
	props := make(map[string]any)
	if len(b.body) > 0 {
		props[PropPhysics] = b.body
	}
	return props
}

func (b *Base) restore(s Snapshot) {
	b.restoreUUID(s.UUID)
	b.parent = s.Parent
	b.tags = append([]string(nil), s.Tags...)
	b.position = s.Position
	b.quaternion = s.Quaternion
	b.scale = s.Scale
	if body, ok := s.Properties[PropPhysics].(map[string]any); ok && len(body) > 0 {
		b.body = body
	}
}
