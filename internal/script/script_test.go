package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dokzlo13/ledd/internal/bus"
	"github.com/dokzlo13/ledd/internal/engine"
	"github.com/dokzlo13/ledd/internal/pwm"
)

func newTestRuntime(t *testing.T) (*Runtime, *bus.Bus, *pwm.Memory) {
	t.Helper()

	sink := pwm.NewMemory()
	eng, err := engine.New(sink, 255)
	if err != nil {
		t.Fatalf("engine.New() error: %v", err)
	}

	b := bus.New(eng, nil, 0)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		b.Close(ctx)
	})

	r := NewRuntime(b)
	t.Cleanup(r.Close)
	return r, b, sink
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.lua")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func TestScriptDrivesEngine(t *testing.T) {
	r, b, sink := newTestRuntime(t)

	path := writeScript(t, `
		local led = require("led")
		local log = require("log")

		assert(led.set_power(true))
		assert(led.set_raw(0.5, 0.25, 1.0))
		assert(led.set_temperature(50, 2700))
		log.info("scene applied", {kelvin = 2700})
	`)

	if err := r.Run(context.Background(), path); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	snap, err := b.State(context.Background())
	if err != nil {
		t.Fatalf("State() error: %v", err)
	}
	if snap.Source != "temperature" {
		t.Errorf("source = %q, want temperature", snap.Source)
	}
	if snap.Kelvin != 2700 {
		t.Errorf("kelvin = %d, want 2700", snap.Kelvin)
	}
	if !snap.Power {
		t.Error("power = false, want true")
	}

	// set_power(true) replays the color, so channels carry real duties.
	if d := sink.Latest(pwm.Red); d == 0 {
		t.Errorf("red duty = %d, want nonzero", d)
	}
}

func TestScriptReadsState(t *testing.T) {
	r, _, _ := newTestRuntime(t)

	path := writeScript(t, `
		local led = require("led")

		assert(led.set_ucs(70, 0.21, 0.48))
		local s = led.state()
		assert(s.source == "ucs", "source: " .. tostring(s.source))
		assert(math.abs(s.lightness - 70) < 1e-9, "lightness: " .. tostring(s.lightness))
		assert(math.abs(s.chroma.u - 0.21) < 1e-9, "u: " .. tostring(s.chroma.u))
		assert(s.raw.r >= 0 and s.raw.r <= 1, "raw.r out of range")
	`)

	if err := r.Run(context.Background(), path); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestScriptSeesRejectedCommands(t *testing.T) {
	r, b, _ := newTestRuntime(t)

	// Coincident primaries make the solver degenerate; the script observes
	// the rejection instead of dying.
	path := writeScript(t, `
		local led = require("led")

		local ok, err = led.calibrate{
			red = {u = 0.3, v = 0.3},
			green = {u = 0.3, v = 0.3},
			blue = {u = 0.3, v = 0.3},
		}
		assert(not ok, "expected calibrate to fail")
		assert(err ~= nil and #err > 0, "expected an error message")
	`)

	if err := r.Run(context.Background(), path); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// The rejected calibration held the previous state.
	snap, err := b.State(context.Background())
	if err != nil {
		t.Fatalf("State() error: %v", err)
	}
	if snap.Source != "temperature" || snap.Kelvin != 1900 {
		t.Errorf("state = %s/%d, want temperature/1900", snap.Source, snap.Kelvin)
	}
}

func TestScriptCancelledDuringSleep(t *testing.T) {
	r, _, _ := newTestRuntime(t)

	path := writeScript(t, `
		local led = require("led")
		while true do
			led.set_power(true)
			sleep(0.01)
		end
	`)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, path) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("script did not stop after cancellation")
	}
}
