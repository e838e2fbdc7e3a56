// Package universe is the engine's entity directory: every live entity is
// reachable by name and by uuid.
package universe

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/mage-engine/mage/internal/core/event"
	"github.com/mage-engine/mage/internal/core/store"
)

// Element is what the universe stores.
type Element interface {
	UUID() string
	Name() string
	Update(dt float64)
	OnPhysicsUpdate(dt float64)
	HandlePhysicsUpdate(position mgl32.Vec3, quaternion mgl32.Quat)
	DispatchEvent(ev event.Named)
}

// Universe maps names to elements and uuids to names. Owned by the engine
// loop; not safe for concurrent use.
type Universe struct {
	elements *store.Store[string, Element]
	uuids    *store.Store[string, string]
	removals *store.Queue[string]
	log      *zap.Logger
}

func New(log *zap.Logger) *Universe {
	return &Universe{
		elements: store.New[string, Element](256),
		uuids:    store.New[string, string](256),
		removals: store.NewQueue[string](64),
		log:      log,
	}
}

// key normalises names so that canonically equivalent spellings collide.
func key(name string) string {
	return norm.NFC.String(name)
}

// Add registers e under its own name and uuid.
func (u *Universe) Add(e Element) {
	u.Set(e.Name(), e)
	u.StoreUUIDToName(e.UUID(), e.Name())
}

// Set stores e under name, replacing whatever had that name before.
func (u *Universe) Set(name string, e Element) {
	k := key(name)
	if prev, ok := u.elements.Get(k); ok && prev.UUID() != e.UUID() {
		u.log.Debug("replacing element", zap.String("name", name), zap.String("uuid", prev.UUID()))
		u.uuids.Remove(prev.UUID())
	}
	u.elements.Set(k, e)
}

// StoreUUIDToName records which name an identifier resolves to.
func (u *Universe) StoreUUIDToName(uuid, name string) {
	u.uuids.Set(uuid, key(name))
}

func (u *Universe) Get(name string) (Element, bool) {
	return u.elements.Get(key(name))
}

// GetByUUID resolves an identifier through the uuid→name table.
func (u *Universe) GetByUUID(uuid string) (Element, bool) {
	name, ok := u.uuids.Get(uuid)
	if !ok {
		return nil, false
	}
	e, ok := u.elements.Get(name)
	if !ok || e.UUID() != uuid {
		return nil, false
	}
	return e, true
}

// Remove drops the element stored under name immediately.
func (u *Universe) Remove(name string) (Element, bool) {
	k := key(name)
	e, ok := u.elements.Get(k)
	if !ok {
		return nil, false
	}
	u.elements.Remove(k)
	if n, ok := u.uuids.Get(e.UUID()); ok && n == k {
		u.uuids.Remove(e.UUID())
	}
	return e, true
}

// MarkForRemoval queues name for removal at the end of the tick.
func (u *Universe) MarkForRemoval(name string) {
	u.removals.Push(key(name))
}

// FlushRemovals removes every queued element and reports each one to fn.
// Called by CleanupSystem at the end of each tick.
func (u *Universe) FlushRemovals(fn func(Element)) {
	u.removals.Flush(func(name string) {
		if e, ok := u.Remove(name); ok && fn != nil {
			fn(e)
		}
	})
}

func (u *Universe) Len() int { return u.elements.Len() }

// Each visits every element. fn may remove elements.
func (u *Universe) Each(fn func(Element)) {
	for _, k := range u.elements.Keys() {
		if e, ok := u.elements.Get(k); ok {
			fn(e)
		}
	}
}

// Update fans the frame delta out to every element.
func (u *Universe) Update(dt float64) {
	u.Each(func(e Element) { e.Update(dt) })
}

// OnPhysicsUpdate fans a finished simulation step out to every element.
func (u *Universe) OnPhysicsUpdate(dt float64) {
	u.Each(func(e Element) { e.OnPhysicsUpdate(dt) })
}
