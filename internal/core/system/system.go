package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain simulation events
	PhasePreUpdate               // 1: dispatch last tick's bus events
	PhaseUpdate                  // 2: entity update fan-out
	PhasePostUpdate              // 3: camera follow, late transforms
	PhaseRender                  // 4: hand the scene to the renderer
	PhasePersist                 // 5: scene snapshots
	PhaseCleanup                 // 6: flush deferred removals
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseRender:
		return "render"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// System is the interface every engine system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Func adapts a plain function to a System running in the given phase.
func Func(phase Phase, fn func(dt time.Duration)) System {
	return funcSystem{phase: phase, fn: fn}
}

type funcSystem struct {
	phase Phase
	fn    func(dt time.Duration)
}

func (s funcSystem) Phase() Phase            { return s.phase }
func (s funcSystem) Update(dt time.Duration) { s.fn(dt) }
