package script

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/ledd/internal/bus"
	"github.com/dokzlo13/ledd/internal/calib"
	"github.com/dokzlo13/ledd/internal/color"
	"github.com/dokzlo13/ledd/internal/engine"
)

// LedModule exposes fixture commands to Lua scripts. Every call goes through
// the command bus, so scripts interleave safely with HTTP commands.
//
// Mutating functions return (true) on success or (false, message) when the
// command is rejected, so a script can decide whether a failed step matters.
type LedModule struct {
	bus *bus.Bus
}

// NewLedModule creates a new led module.
func NewLedModule(b *bus.Bus) *LedModule {
	return &LedModule{bus: b}
}

// Loader is the module loader for Lua.
func (m *LedModule) Loader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "set_raw", L.NewFunction(m.setRaw))
	L.SetField(mod, "set_ucs", L.NewFunction(m.setUcs))
	L.SetField(mod, "set_temperature", L.NewFunction(m.setTemperature))
	L.SetField(mod, "set_power", L.NewFunction(m.setPower))
	L.SetField(mod, "calibrate", L.NewFunction(m.calibrate))
	L.SetField(mod, "state", L.NewFunction(m.state))

	L.Push(mod)
	return 1
}

// led.set_raw(r, g, b)
func (m *LedModule) setRaw(L *lua.LState) int {
	raw := color.RGB{
		R: float64(L.CheckNumber(1)),
		G: float64(L.CheckNumber(2)),
		B: float64(L.CheckNumber(3)),
	}
	return m.execute(L, "lua.set_raw", func(e *engine.Engine) error {
		return e.SetRaw(raw)
	})
}

// led.set_ucs(lightness, u, v)
func (m *LedModule) setUcs(L *lua.LState) int {
	target := color.Luv{
		L: float64(L.CheckNumber(1)),
		U: float64(L.CheckNumber(2)),
		V: float64(L.CheckNumber(3)),
	}
	return m.execute(L, "lua.set_ucs", func(e *engine.Engine) error {
		return e.SetCie1976Ucs(target)
	})
}

// led.set_temperature(lightness, kelvin)
func (m *LedModule) setTemperature(L *lua.LState) int {
	lightness := float64(L.CheckNumber(1))
	kelvin := uint16(L.CheckInt(2))
	return m.execute(L, "lua.set_temperature", func(e *engine.Engine) error {
		return e.SetColorTemperature(lightness, kelvin)
	})
}

// led.set_power(on)
func (m *LedModule) setPower(L *lua.LState) int {
	on := L.CheckBool(1)
	return m.execute(L, "lua.set_power", func(e *engine.Engine) error {
		return e.SetPower(on)
	})
}

// led.calibrate{max_lum = ..., red = {u = ..., v = ..., flux = ...}, ...}
// Omitted fields keep their current values.
func (m *LedModule) calibrate(L *lua.LState) int {
	tbl := L.CheckTable(1)
	return m.execute(L, "lua.calibrate", func(e *engine.Engine) error {
		cal := e.Calibration()
		if lv := tbl.RawGetString("max_lum"); lv != lua.LNil {
			cal.MaxLum = float64(lua.LVAsNumber(lv))
		}
		patchPrimary(tbl, "red", &cal.Red)
		patchPrimary(tbl, "green", &cal.Green)
		patchPrimary(tbl, "blue", &cal.Blue)
		return e.Calibrate(cal)
	})
}

func patchPrimary(tbl *lua.LTable, name string, p *calib.Primary) {
	sub, ok := tbl.RawGetString(name).(*lua.LTable)
	if !ok {
		return
	}
	if lv := sub.RawGetString("u"); lv != lua.LNil {
		p.UV.U = float64(lua.LVAsNumber(lv))
	}
	if lv := sub.RawGetString("v"); lv != lua.LNil {
		p.UV.V = float64(lua.LVAsNumber(lv))
	}
	if lv := sub.RawGetString("flux"); lv != lua.LNil {
		p.Flux = float64(lua.LVAsNumber(lv))
	}
}

// led.state() returns the current fixture state as a table.
func (m *LedModule) state(L *lua.LState) int {
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	snap, err := m.bus.State(ctx)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	tbl := L.NewTable()
	L.SetField(tbl, "source", lua.LString(snap.Source))
	L.SetField(tbl, "power", lua.LBool(snap.Power))
	L.SetField(tbl, "lightness", lua.LNumber(snap.Lightness))
	L.SetField(tbl, "kelvin", lua.LNumber(snap.Kelvin))

	raw := L.NewTable()
	L.SetField(raw, "r", lua.LNumber(snap.Raw.R))
	L.SetField(raw, "g", lua.LNumber(snap.Raw.G))
	L.SetField(raw, "b", lua.LNumber(snap.Raw.B))
	L.SetField(tbl, "raw", raw)

	chroma := L.NewTable()
	L.SetField(chroma, "u", lua.LNumber(snap.Chroma.U))
	L.SetField(chroma, "v", lua.LNumber(snap.Chroma.V))
	L.SetField(tbl, "chroma", chroma)

	L.Push(tbl)
	return 1
}

func (m *LedModule) execute(L *lua.LState, name string, fn bus.Mutation) int {
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := m.bus.Execute(ctx, name, fn); err != nil {
		L.Push(lua.LBool(false))
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LBool(true))
	return 1
}
