package event

// PhysicsStepped is emitted after the simulation context reports a finished
// step. Delta is the simulated time in seconds.
type PhysicsStepped struct {
	Delta float64
}

// EntityRemoved is emitted when the scene drops an entity from the universe.
type EntityRemoved struct {
	UUID string
	Name string
}
