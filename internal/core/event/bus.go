package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted in tick N are readable
// in tick N+1. SwapBuffers() is called at tick start by EventDispatchSystem.
type Bus struct {
	mu       sync.Mutex // protects handler registration
	nextID   uint64
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]handler
}

type handler struct {
	id uint64
	fn func(any)
}

// Subscription identifies a registered handler so it can be removed again.
type Subscription struct {
	typ reflect.Type
	id  uint64
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]handler),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (will be readable next tick).
func Emit[T any](b *Bus, event T) {
	t := typeOf[T]()
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.nextID++
	b.handlers[t] = append(b.handlers[t], handler{
		id: b.nextID,
		fn: func(ev any) { fn(ev.(T)) },
	})
	return Subscription{typ: t, id: b.nextID}
}

// Unsubscribe removes a handler. Unknown or already removed subscriptions are ignored.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	hs := b.handlers[s.typ]
	for i, h := range hs {
		if h.id == s.id {
			b.handlers[s.typ] = append(hs[:i:i], hs[i+1:]...)
			return
		}
	}
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	b.mu.Lock()
	snapshot := make(map[reflect.Type][]handler, len(b.handlers))
	for t, hs := range b.handlers {
		snapshot[t] = hs
	}
	b.mu.Unlock()

	for t, events := range b.front {
		hs := snapshot[t]
		for _, ev := range events {
			for _, h := range hs {
				h.fn(ev)
			}
		}
	}
}
