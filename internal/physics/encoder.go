package physics

import (
	"fmt"

	"github.com/mage-engine/mage/internal/physics/protocol"
)

// BuildAddCommand turns a description into an AddBody command for e. The
// description is deep-copied; its "type" is rewritten to the resolved kind
// and its "uuid" to e's identifier.
func BuildAddCommand(e Entity, d Description) (protocol.AddBody, error) {
	id := e.UUID()
	if id == "" {
		return protocol.AddBody{}, fmt.Errorf("add body: %w", ErrNoIdentifier)
	}
	kind := d.Kind()
	desc := protocol.CloneMap(d)
	if desc == nil {
		desc = make(map[string]any, 2)
	}
	desc["type"] = string(kind)
	desc["uuid"] = id
	return protocol.AddBody{UUID: id, Kind: kind, Description: desc}, nil
}

// BuildVehicleCommand layers options over the description extracted from e.
// Options win on conflicting keys, except "type" and "uuid".
func BuildVehicleCommand(e Entity, options map[string]any) (protocol.AddBody, error) {
	id := e.UUID()
	if id == "" {
		return protocol.AddBody{}, fmt.Errorf("add vehicle: %w", ErrNoIdentifier)
	}
	desc := protocol.Merge(DescribeEntity(e), options)
	desc["type"] = string(protocol.KindVehicle)
	desc["uuid"] = id
	return protocol.AddBody{UUID: id, Kind: protocol.KindVehicle, Description: desc}, nil
}

// BuildUpdateCommand wraps an opaque state payload. The shape is owned by
// the simulation module and is not checked.
func BuildUpdateCommand(e Entity, state map[string]any) (protocol.UpdateBodyState, error) {
	id := e.UUID()
	if id == "" {
		return protocol.UpdateBodyState{}, fmt.Errorf("update body: %w", ErrNoIdentifier)
	}
	return protocol.UpdateBodyState{UUID: id, State: protocol.CloneMap(state)}, nil
}
