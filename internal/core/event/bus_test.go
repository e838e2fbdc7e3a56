package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []float64
	Subscribe(b, func(ev PhysicsStepped) { got = append(got, ev.Delta) })

	Emit(b, PhysicsStepped{Delta: 0.016})
	b.DispatchAll()
	assert.Empty(t, got, "events are not visible in the tick they were emitted")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []float64{0.016}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 1, "front buffer is cleared on swap")
}

func TestBusRoutesByType(t *testing.T) {
	b := NewBus()
	var steps, removals int
	Subscribe(b, func(PhysicsStepped) { steps++ })
	Subscribe(b, func(EntityRemoved) { removals++ })

	Emit(b, EntityRemoved{UUID: "a"})
	Emit(b, EntityRemoved{UUID: "b"})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 0, steps)
	assert.Equal(t, 2, removals)
}

func TestBusUnsubscribe(t *testing.T) {
	b := NewBus()
	var calls int
	sub := Subscribe(b, func(PhysicsStepped) { calls++ })
	b.Unsubscribe(sub)
	b.Unsubscribe(sub)

	Emit(b, PhysicsStepped{})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Zero(t, calls)
}

func TestDispatcher(t *testing.T) {
	var d Dispatcher
	var seen []string
	id := d.AddListener("collision", func(ev Named) { seen = append(seen, ev.Data["with"].(string)) })
	d.AddListener("collision", func(ev Named) { seen = append(seen, "second") })

	assert.True(t, d.HasListener("collision"))
	assert.False(t, d.HasListener("jump"))

	d.DispatchEvent(Named{Type: "collision", Data: map[string]any{"with": "ground"}})
	assert.Equal(t, []string{"ground", "second"}, seen)

	d.RemoveListener("collision", id)
	d.DispatchEvent(Named{Type: "collision"})
	assert.Equal(t, []string{"ground", "second", "second"}, seen)

	d.DispatchEvent(Named{Type: "jump"})
}
