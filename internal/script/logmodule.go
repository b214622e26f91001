package script

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

// LogModule exposes the daemon logger to Lua scripts.
type LogModule struct{}

// NewLogModule creates a new log module.
func NewLogModule() *LogModule {
	return &LogModule{}
}

// Loader is the module loader for Lua.
func (m *LogModule) Loader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "debug", L.NewFunction(m.level(log.Debug)))
	L.SetField(mod, "info", L.NewFunction(m.level(log.Info)))
	L.SetField(mod, "warn", L.NewFunction(m.level(log.Warn)))
	L.SetField(mod, "error", L.NewFunction(m.level(log.Error)))

	L.Push(mod)
	return 1
}

// level builds a Lua function emitting at the given zerolog level. Scripts
// call log.info("msg", {key = value}) with an optional fields table.
func (m *LogModule) level(emit func() *zerolog.Event) lua.LGFunction {
	return func(L *lua.LState) int {
		msg := L.CheckString(1)

		event := emit().Str("source", "lua")
		if tbl, ok := L.Get(2).(*lua.LTable); ok {
			tbl.ForEach(func(key, value lua.LValue) {
				event = event.Interface(lua.LVAsString(key), luaToGo(value))
			})
		}
		event.Msg(msg)

		return 0
	}
}

// luaToGo converts a Lua value to a Go value for structured log fields.
func luaToGo(value lua.LValue) interface{} {
	switch v := value.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		out := make(map[string]interface{})
		v.ForEach(func(key, val lua.LValue) {
			out[lua.LVAsString(key)] = luaToGo(val)
		})
		return out
	default:
		return value.String()
	}
}
