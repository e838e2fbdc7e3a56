package event

// Named is an event addressed by a string type, carried to entity listeners.
// Data is whatever payload the emitter attached; it may be nil.
type Named struct {
	Type string
	Data map[string]any
}

// ListenerID identifies a listener registered on a Dispatcher.
type ListenerID uint64

type listener struct {
	id ListenerID
	fn func(Named)
}

// Dispatcher delivers Named events synchronously to listeners registered for
// their type. The zero value is ready to use. Not safe for concurrent use;
// entities are only touched from the engine loop.
type Dispatcher struct {
	nextID    ListenerID
	listeners map[string][]listener
}

func (d *Dispatcher) AddListener(typ string, fn func(Named)) ListenerID {
	if d.listeners == nil {
		d.listeners = make(map[string][]listener)
	}
	d.nextID++
	d.listeners[typ] = append(d.listeners[typ], listener{id: d.nextID, fn: fn})
	return d.nextID
}

func (d *Dispatcher) RemoveListener(typ string, id ListenerID) {
	ls := d.listeners[typ]
	for i, l := range ls {
		if l.id == id {
			d.listeners[typ] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (d *Dispatcher) HasListener(typ string) bool {
	return len(d.listeners[typ]) > 0
}

// DispatchEvent calls every listener for ev.Type in registration order.
// Listeners added or removed during dispatch take effect on the next event.
func (d *Dispatcher) DispatchEvent(ev Named) {
	for _, l := range d.listeners[ev.Type] {
		l.fn(ev)
	}
}
