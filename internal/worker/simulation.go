package worker

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/physics/protocol"
)

// simulation wraps the Lua VM running a simulation module. The module is a
// chunk returning a table of optional handlers:
//
//	add_box(uuid, desc)  add_vehicle(uuid, desc)
//	update_body(uuid, state)  step(dt)
//
// Handlers report back through require("mage"): mage.transform(uuid, pos,
// quat) and mage.dispatch(uuid, name, data).
//
// Worker goroutine only.
type simulation struct {
	vm     *lua.LState
	module *lua.LTable
	emit   func(protocol.Event) bool
	log    *zap.Logger
}

func newSimulation(emit func(protocol.Event) bool, log *zap.Logger) *simulation {
	s := &simulation{
		vm:   lua.NewState(),
		emit: emit,
		log:  log,
	}
	s.vm.PreloadModule("mage", s.loader)
	return s
}

func (s *simulation) loaded() bool { return s.module != nil }

func (s *simulation) load(path string) error {
	top := s.vm.GetTop()
	defer s.vm.SetTop(top)
	if err := s.vm.DoFile(path); err != nil {
		return fmt.Errorf("run %s: %w", path, err)
	}
	if s.vm.GetTop() == top {
		return errors.New("module returned nothing")
	}
	mod, ok := s.vm.Get(-1).(*lua.LTable)
	if !ok {
		return fmt.Errorf("module returned %s, want table", s.vm.Get(-1).Type())
	}
	s.module = mod
	return nil
}

func (s *simulation) addBody(cmd protocol.AddBody) {
	handler := "add_box"
	if cmd.Kind == protocol.KindVehicle {
		handler = "add_vehicle"
	}
	s.call(handler, lua.LString(cmd.UUID), toLua(s.vm, cmd.Description))
}

func (s *simulation) updateBody(cmd protocol.UpdateBodyState) {
	s.call("update_body", lua.LString(cmd.UUID), toLua(s.vm, cmd.State))
}

func (s *simulation) step(dt float64) {
	s.call("step", lua.LNumber(dt))
}

func (s *simulation) call(name string, args ...lua.LValue) {
	if s.module == nil {
		s.log.Debug("no simulation module, command ignored", zap.String("handler", name))
		return
	}
	fn := s.module.RawGetString(name)
	if fn.Type() != lua.LTFunction {
		return
	}
	if err := s.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		s.log.Error("lua handler error", zap.String("handler", name), zap.Error(err))
	}
}

func (s *simulation) close() {
	s.vm.Close()
}

func (s *simulation) loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"transform": s.luaTransform,
		"dispatch":  s.luaDispatch,
	})
	L.Push(mod)
	return 1
}

// mage.transform(uuid, {x,y,z}, {x,y,z,w}?)
func (s *simulation) luaTransform(L *lua.LState) int {
	id := L.CheckString(1)
	pos := L.CheckTable(2)
	quat := L.OptTable(3, nil)
	s.emit(protocol.BodyTransform{
		UUID:       id,
		Position:   vec3From(pos),
		Quaternion: quatFrom(quat),
	})
	return 0
}

// mage.dispatch(uuid, name, data?)
func (s *simulation) luaDispatch(L *lua.LState) int {
	id := L.CheckString(1)
	name := L.CheckString(2)
	var data map[string]any
	if t, ok := L.Get(3).(*lua.LTable); ok {
		data = tableToMap(t)
	}
	s.emit(protocol.CustomDispatch{UUID: id, EventName: name, EventData: data})
	return 0
}
