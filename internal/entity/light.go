package entity

// Light is a light source. Turning it off keeps the configured intensity so
// it can be switched back on.
type Light struct {
	Base

	color     string
	intensity float64
	on        bool
}

func NewLight(name, color string, intensity float64) *Light {
	return &Light{
		Base:      newBase(name, TypeLight),
		color:     color,
		intensity: intensity,
		on:        true,
	}
}

func (l *Light) Color() string { return l.color }

// Intensity is the effective intensity: zero while the light is off.
func (l *Light) Intensity() float64 {
	if !l.on {
		return 0
	}
	return l.intensity
}

func (l *Light) SetIntensity(v float64) { l.intensity = v }
func (l *Light) IsOn() bool             { return l.on }
func (l *Light) TurnOn()                { l.on = true }
func (l *Light) TurnOff()               { l.on = false }

func (l *Light) Snapshot() Snapshot {
	s := l.snapshot()
	s.Properties["color"] = l.color
	s.Properties["intensity"] = l.intensity
	s.Properties["on"] = l.on
	return s
}

func (l *Light) restore(s Snapshot) {
	l.Base.restore(s)
	if v, ok := s.Properties["color"].(string); ok {
		l.color = v
	}
	if v, ok := floatProp(s.Properties, "intensity"); ok {
		l.intensity = v
	}
	if v, ok := s.Properties["on"].(bool); ok {
		l.on = v
	}
}
