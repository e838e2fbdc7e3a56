package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownCommand is returned by DecodeCommand for an unrecognised type.
var ErrUnknownCommand = errors.New("unknown command type")

// envelope is the single JSON object shape used for every message.
type envelope struct {
	Type        string         `json:"type"`
	Path        string         `json:"path,omitempty"`
	UUID        string         `json:"uuid,omitempty"`
	Description map[string]any `json:"description,omitempty"`
	State       map[string]any `json:"state,omitempty"`
	Position    *Vec3          `json:"position,omitempty"`
	Quaternion  *Quat          `json:"quaternion,omitempty"`
	EventName   string         `json:"eventName,omitempty"`
	EventData   map[string]any `json:"eventData,omitempty"`
	DT          float64        `json:"dt,omitempty"`
}

func EncodeCommand(cmd Command) ([]byte, error) {
	env := envelope{Type: cmd.Type()}
	switch c := cmd.(type) {
	case Init:
		env.Path = c.Path
	case AddBody:
		env.UUID = c.UUID
		env.Description = c.Description
	case UpdateBodyState:
		env.UUID = c.UUID
		env.State = c.State
	case Terminate:
	default:
		return nil, fmt.Errorf("encode command %T: %w", cmd, ErrUnknownCommand)
	}
	return json.Marshal(env)
}

func DecodeCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	switch env.Type {
	case TypeLoad:
		return Init{Path: env.Path}, nil
	case TypeAddBox:
		return AddBody{UUID: env.UUID, Kind: KindBox, Description: env.Description}, nil
	case TypeAddVehicle:
		return AddBody{UUID: env.UUID, Kind: KindVehicle, Description: env.Description}, nil
	case TypeUpdateBody:
		return UpdateBodyState{UUID: env.UUID, State: env.State}, nil
	case TypeTerminate:
		return Terminate{}, nil
	default:
		return nil, fmt.Errorf("decode command %q: %w", env.Type, ErrUnknownCommand)
	}
}

func EncodeEvent(ev Event) ([]byte, error) {
	env := envelope{Type: ev.Type()}
	switch e := ev.(type) {
	case Ready, Terminated:
	case BodyTransform:
		env.UUID = e.UUID
		env.Position = &e.Position
		env.Quaternion = &e.Quaternion
	case CustomDispatch:
		env.UUID = e.UUID
		env.EventName = e.EventName
		env.EventData = e.EventData
	case Stepped:
		env.DT = e.Delta
	case Unknown:
	}
	return json.Marshal(env)
}

// DecodeEvent never fails on an unrecognised type: it yields Unknown so newer
// simulation modules can talk to older engines.
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	switch env.Type {
	case TypeReady:
		return Ready{}, nil
	case TypeUpdateBody:
		ev := BodyTransform{UUID: env.UUID, Quaternion: Quat{W: 1}}
		if env.Position != nil {
			ev.Position = *env.Position
		}
		if env.Quaternion != nil {
			ev.Quaternion = *env.Quaternion
		}
		return ev, nil
	case TypeDispatch:
		return CustomDispatch{UUID: env.UUID, EventName: env.EventName, EventData: env.EventData}, nil
	case TypeStep:
		return Stepped{Delta: env.DT}, nil
	case TypeTerminate:
		return Terminated{}, nil
	default:
		return Unknown{Kind: env.Type}, nil
	}
}
