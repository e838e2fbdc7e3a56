package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunnerOrdersByPhase(t *testing.T) {
	var order []string
	r := NewRunner()
	r.Register(Func(PhaseCleanup, func(time.Duration) { order = append(order, "cleanup") }))
	r.Register(Func(PhaseUpdate, func(time.Duration) { order = append(order, "update-a") }))
	r.Register(Func(PhaseInput, func(time.Duration) { order = append(order, "input") }))
	r.Register(Func(PhaseUpdate, func(time.Duration) { order = append(order, "update-b") }))

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"input", "update-a", "update-b", "cleanup"}, order)
	assert.Equal(t, 4, r.Len())
}

func TestRunnerTickPhase(t *testing.T) {
	var got []time.Duration
	r := NewRunner()
	r.Register(Func(PhaseInput, func(dt time.Duration) { got = append(got, dt) }))
	r.Register(Func(PhaseRender, func(time.Duration) { t.Fatal("render must not run") }))

	r.TickPhase(PhaseInput, 5*time.Millisecond)
	assert.Equal(t, []time.Duration{5 * time.Millisecond}, got)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "render", PhaseRender.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
