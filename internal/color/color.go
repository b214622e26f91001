// Package color provides the CIE 1976 UCS value types and the color
// temperature mapping used by the LED engine.
package color

import "math"

// Luv holds CIE 1976 lightness and UCS chromaticity coordinates.
type Luv struct {
	L float64 `json:"l"`
	U float64 `json:"u"`
	V float64 `json:"v"`
}

// UV is a bare UCS chromaticity point.
type UV struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
}

// RGB holds normalized drive intensities for the three color primaries,
// each in the range 0..1.
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Clamp limits every component to the range 0..1.
func (c RGB) Clamp() RGB {
	return RGB{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// Max returns the largest of the three components.
func (c RGB) Max() float64 {
	m := c.R
	if c.G > m {
		m = c.G
	}
	if c.B > m {
		m = c.B
	}
	return m
}

// Scale multiplies every component by f.
func (c RGB) Scale(f float64) RGB {
	return RGB{c.R * f, c.G * f, c.B * f}
}

func clamp01(v float64) float64 {
	// A NaN component drives nothing; it must not reach the integer
	// conversion in the projector.
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// KelvinToUCS approximates the UCS chromaticity of a blackbody radiator at
// temperature T (Kelvin). The rational polynomial coefficients come from a
// least squares fit of CIE 1976 UCS coordinates against color temperature;
// the fit variable is transformed to a z-score to avoid floating point
// precision problems. The fit was characterized around 5500 K and is usable
// roughly between 1000 K and 40000 K; no bounds are enforced, extrapolation
// just degrades accuracy.
func KelvinToUCS(t uint16) UV {
	x := (float64(t) - 5500.0) / 2599.0
	x2 := x * x
	x3 := x2 * x
	x4 := x3 * x
	u := (-0.0001747*x3 + 0.1833*x2 + 0.872*x + 1.227) / (x2 + 4.813*x + 5.933)
	v := (0.000311*x4 + 0.0009124*x3 + 0.3856*x2 + 1.873*x + 2.619) / (x2 + 4.323*x + 5.485)
	return UV{U: u, V: v}
}

// LightnessToLuma converts CIE 1976 lightness to relative luminance using
// the standard CIE relation Y = ((L+16)/116)^3.
func LightnessToLuma(l float64) float64 {
	y := (l + 16.0) / 116.0
	return y * y * y
}
