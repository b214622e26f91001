// Package engine implements the color engine for a three-primary LED
// fixture: it converts perceptual targets (CIE 1976 UCS + lightness, or a
// color temperature) into normalized drive intensities using the emitter
// calibration, and keeps the raw, perceptual and temperature representations
// mutually consistent.
//
// The engine is synchronous and not safe for concurrent use; callers are
// expected to serialize access (the daemon does this through the command
// bus).
package engine

import (
	"errors"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledd/internal/calib"
	"github.com/dokzlo13/ledd/internal/color"
	"github.com/dokzlo13/ledd/internal/pwm"
)

var (
	// ErrDegenerateCalibration is returned when the calibration geometry
	// (collinear primaries, a target on a gamut edge) makes the solver's
	// closed form blow up. The previous color is held.
	ErrDegenerateCalibration = errors.New("degenerate calibration geometry")

	// ErrUnachievableLuma is returned when the solved contributions carry
	// no positive luminance, so no scale factor can reach the requested
	// lightness. The previous color is held.
	ErrUnachievableLuma = errors.New("unachievable luma for current calibration")
)

// source tags which representation most recently derived the raw state.
// Exactly one of the perceptual/temperature caches is valid at a time.
type source int

const (
	sourceRaw source = iota
	sourceUCS
	sourceTemperature
)

func (s source) String() string {
	switch s {
	case sourceUCS:
		return "ucs"
	case sourceTemperature:
		return "temperature"
	}
	return "raw"
}

// Engine owns the drive state of one fixture for its entire lifetime.
type Engine struct {
	sink    pwm.Sink
	maxDuty uint32
	cal     calib.Calibration

	on  bool
	raw color.RGB

	// Last-writer caches. lightness is always maintained so the
	// temperature path can reuse it; chroma and kelvin are only valid
	// when src says so.
	src       source
	lightness float64
	chroma    color.UV
	kelvin    uint16
}

// New configures the sink at the given duty cycle resolution, zeroes all
// five channels and applies the default target: powered off, lightness 50
// at 1900 K.
func New(sink pwm.Sink, maxDuty uint32) (*Engine, error) {
	if err := sink.Configure(maxDuty); err != nil {
		return nil, err
	}
	for _, ch := range pwm.Channels {
		if err := sink.Write(ch, 0); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		sink:    sink,
		maxDuty: maxDuty,
		cal:     calib.Default(),
	}
	if err := e.SetColorTemperature(50, 1900); err != nil {
		return nil, err
	}
	return e, nil
}

// Power reports whether the fixture is on.
func (e *Engine) Power() bool {
	return e.on
}

// SetPower turns the fixture on or off. Turning off writes zero duty to the
// color channels but keeps the raw state, so turning back on re-projects the
// exact same quantized duty cycles without re-solving. The flag is committed
// only after the sink writes succeed.
func (e *Engine) SetPower(on bool) error {
	if on {
		prev := e.on
		e.on = true
		if _, err := e.project(e.raw); err != nil {
			e.on = prev
			return err
		}
		return nil
	}
	for _, ch := range []pwm.Channel{pwm.Red, pwm.Green, pwm.Blue} {
		if err := e.sink.Write(ch, 0); err != nil {
			return err
		}
	}
	e.on = false
	return nil
}

// Raw returns the authoritative raw drive state.
func (e *Engine) Raw() color.RGB {
	return e.raw
}

// SetRaw sets the drive intensities directly, bypassing the solver. Each
// component is clamped into 0..1 and quantized to the duty cycle resolution;
// the stored state reflects the actually achievable level, not the request.
// The perceptual and temperature caches are invalidated.
func (e *Engine) SetRaw(raw color.RGB) error {
	applied, err := e.project(raw)
	if err != nil {
		return err
	}
	e.raw = applied
	e.src = sourceRaw
	return nil
}

// Cie1976Ucs returns the cached perceptual target. It is only valid when the
// UCS setter was the most recent path used to derive the raw state.
func (e *Engine) Cie1976Ucs() (color.Luv, bool) {
	if e.src != sourceUCS {
		return color.Luv{}, false
	}
	return color.Luv{L: e.lightness, U: e.chroma.U, V: e.chroma.V}, true
}

// SetCie1976Ucs derives drive intensities for a perceptual target. Lightness
// is floor-clamped at zero. On a solver or normalization error nothing
// changes and the previous color is held.
func (e *Engine) SetCie1976Ucs(target color.Luv) error {
	if err := e.applyUCS(target.L, color.UV{U: target.U, V: target.V}); err != nil {
		return err
	}
	e.src = sourceUCS
	return nil
}

// ColorTemperature returns the cached Kelvin value. It is only valid when
// the temperature setter was the most recent path used to derive the raw
// state.
func (e *Engine) ColorTemperature() (uint16, bool) {
	if e.src != sourceTemperature {
		return 0, false
	}
	return e.kelvin, true
}

// SetColorTemperature maps the Kelvin value to a UCS chromaticity near the
// Planckian locus and runs the UCS path. A positive l overrides the cached
// lightness, otherwise the cached lightness is reused. T is cached verbatim
// only after the solve succeeds.
func (e *Engine) SetColorTemperature(l float64, t uint16) error {
	uv := color.KelvinToUCS(t)

	lightness := e.lightness
	if l > 0 {
		lightness = l
	}

	if err := e.applyUCS(lightness, uv); err != nil {
		return err
	}
	e.kelvin = t
	e.src = sourceTemperature
	return nil
}

// Calibrate replaces the calibration record wholesale, without validation,
// and re-solves the active perceptual target against the new record so the
// visible color intent survives recalibration. With no valid perceptual or
// temperature cache the raw state is left untouched.
func (e *Engine) Calibrate(cal calib.Calibration) error {
	e.cal = cal

	switch e.src {
	case sourceTemperature:
		return e.SetColorTemperature(e.lightness, e.kelvin)
	case sourceUCS:
		return e.SetCie1976Ucs(color.Luv{L: e.lightness, U: e.chroma.U, V: e.chroma.V})
	}
	return nil
}

// Calibration returns the active calibration record.
func (e *Engine) Calibration() calib.Calibration {
	return e.cal
}

// applyUCS runs the solver and luminance normalization for a chromaticity
// target and projects the result. On success it updates the raw state and
// the perceptual cache; the caller sets the source tag.
func (e *Engine) applyUCS(l float64, uv color.UV) error {
	if l < 0 {
		l = 0
	}

	raw, err := solve(uv, e.cal)
	if err != nil {
		return err
	}

	// Luma produced by the unscaled contributions vs. the luma needed for
	// the requested lightness.
	y := (raw.R*e.cal.Red.Flux + raw.G*e.cal.Green.Flux + raw.B*e.cal.Blue.Flux) / e.cal.MaxLum
	if math.IsNaN(y) || math.IsInf(y, 0) || y <= 0 {
		return ErrUnachievableLuma
	}
	raw = raw.Scale(color.LightnessToLuma(l) / y)

	// Nothing can run past full power; rescale uniformly so the largest
	// channel lands exactly on 1 (hue-preserving desaturation). Negative
	// contributions are left alone here and clamped by the projector.
	if max := raw.Max(); max > 1 {
		raw = raw.Scale(1 / max)
	}

	applied, err := e.project(raw)
	if err != nil {
		return err
	}

	e.raw = applied
	e.lightness = l
	e.chroma = uv

	log.Debug().
		Float64("l", l).Float64("u", uv.U).Float64("v", uv.V).
		Float64("r", applied.R).Float64("g", applied.G).Float64("b", applied.B).
		Msg("Color target applied")
	return nil
}

// project clamps, quantizes and (when powered) writes the color channels,
// returning the de-quantized values that the device will actually produce.
func (e *Engine) project(raw color.RGB) (color.RGB, error) {
	raw = raw.Clamp()

	// Round half up to the device resolution.
	dutyR := uint32(raw.R*float64(e.maxDuty) + 0.5)
	dutyG := uint32(raw.G*float64(e.maxDuty) + 0.5)
	dutyB := uint32(raw.B*float64(e.maxDuty) + 0.5)

	if e.on {
		if err := e.sink.Write(pwm.Red, dutyR); err != nil {
			return color.RGB{}, err
		}
		if err := e.sink.Write(pwm.Green, dutyG); err != nil {
			return color.RGB{}, err
		}
		if err := e.sink.Write(pwm.Blue, dutyB); err != nil {
			return color.RGB{}, err
		}
	}

	return color.RGB{
		R: float64(dutyR) / float64(e.maxDuty),
		G: float64(dutyG) / float64(e.maxDuty),
		B: float64(dutyB) / float64(e.maxDuty),
	}, nil
}
