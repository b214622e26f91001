// Package script runs Lua scene scripts against the command bus. Scripts
// drive the fixture through the `led` module, so they serialize with HTTP
// commands like every other caller.
package script

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/ledd/internal/bus"
)

// Runtime manages the Lua VM. The VM is single-threaded; one runtime runs
// one script from start to finish.
type Runtime struct {
	state *lua.LState
	bus   *bus.Bus
}

// NewRuntime creates a new Lua runtime with the led and log modules
// preloaded and a context-aware sleep() global.
func NewRuntime(b *bus.Bus) *Runtime {
	L := lua.NewState()
	r := &Runtime{state: L, bus: b}

	L.PreloadModule("led", NewLedModule(b).Loader)
	L.PreloadModule("log", NewLogModule().Loader)
	L.SetGlobal("sleep", L.NewFunction(r.sleep))

	return r
}

// Run executes the script file. It blocks until the script finishes or the
// context is cancelled.
func (r *Runtime) Run(ctx context.Context, path string) error {
	r.state.SetContext(ctx)

	log.Info().Str("script", path).Msg("Running scene script")
	if err := r.state.DoFile(path); err != nil {
		// Context cancellation surfaces as a Lua error; not a failure.
		if ctx.Err() != nil {
			log.Debug().Str("script", path).Msg("Scene script cancelled")
			return nil
		}
		return err
	}
	return nil
}

// Close releases the Lua VM.
func (r *Runtime) Close() {
	r.state.Close()
}

// sleep(seconds) pauses the script, waking early on shutdown.
func (r *Runtime) sleep(L *lua.LState) int {
	seconds := float64(L.CheckNumber(1))
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
	case <-ctx.Done():
	}
	return 0
}
