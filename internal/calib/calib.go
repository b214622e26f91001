// Package calib holds the emitter calibration model: measured primary
// chromaticities, luminous fluxes and the rational fits that map a
// normalized chromaticity-plane distance to an achievable drive level.
package calib

import "github.com/dokzlo13/ledd/internal/color"

// Fit parameterizes a Möbius-style transform level = (P1*x + P2) / (x + Q1).
// Each fit is calibrated for one ordered primary pair; the sign of P1
// selects which branch of the transform is geometrically valid.
type Fit struct {
	P1 float64 `json:"p1" yaml:"p1"`
	P2 float64 `json:"p2" yaml:"p2"`
	Q1 float64 `json:"q1" yaml:"q1"`
}

// Eval evaluates the transform at x.
func (f Fit) Eval(x float64) float64 {
	return (f.P1*x + f.P2) / (x + f.Q1)
}

// Primary describes one physical emitter at full drive: its UCS chromaticity
// (measured at reference lightness 100) and its luminous flux.
type Primary struct {
	UV   color.UV `json:"uv" yaml:"uv"`
	Flux float64  `json:"flux" yaml:"flux"`
}

// Calibration is the full characterization of a three-primary emitter.
// Fields are accepted as-is; no range validation is performed.
type Calibration struct {
	Red   Primary `json:"red" yaml:"red"`
	Green Primary `json:"green" yaml:"green"`
	Blue  Primary `json:"blue" yaml:"blue"`

	// MaxLum is the luminous flux which yields CIE 1976 lightness of 100.
	MaxLum float64 `json:"max_lum" yaml:"max_lum"`

	// Rational fits for the ordered edges of the gamut triangle.
	RedToGreen  Fit `json:"red_to_green" yaml:"red_to_green"`
	GreenToBlue Fit `json:"green_to_blue" yaml:"green_to_blue"`
	BlueToRed   Fit `json:"blue_to_red" yaml:"blue_to_red"`
}

// Default returns the built-in calibration from the reference fixture
// characterization. It is replaced wholesale by Engine.Calibrate.
func Default() Calibration {
	return Calibration{
		Red:    Primary{UV: color.UV{U: 0.5535, V: 0.5170}, Flux: 0.5},
		Green:  Primary{UV: color.UV{U: 0.0373, V: 0.5856}, Flux: 1.0},
		Blue:   Primary{UV: color.UV{U: 0.1679, V: 0.1153}, Flux: 0.75},
		MaxLum: 2.25,

		RedToGreen:  Fit{P1: 2.9658, P2: 0.0, Q1: 1.9658},
		GreenToBlue: Fit{P1: 1.3587, P2: 0.0, Q1: 0.3587},
		BlueToRed:   Fit{P1: -0.2121, P2: 0.2121, Q1: 0.2121},
	}
}
