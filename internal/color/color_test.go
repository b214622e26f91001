package color

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestKelvinToUCS(t *testing.T) {
	tests := []struct {
		name  string
		t     uint16
		wantU float64
		wantV float64
	}{
		// Reference values evaluated from the fit polynomials directly.
		{name: "fit_center_5500K", t: 5500, wantU: 0.20680937131299512, wantV: 0.47748404740200551},
		{name: "warm_1900K", t: 1900, wantU: 0.31335599765106287, wantV: 0.53909426532998062},
		{name: "daylight_6500K", t: 6500, wantU: 0.20038550446793521, wantV: 0.46554706272254381},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KelvinToUCS(tt.t)
			if !almostEqual(got.U, tt.wantU, 1e-15) || !almostEqual(got.V, tt.wantV, 1e-15) {
				t.Errorf("KelvinToUCS(%d) = (%v, %v), want (%v, %v)", tt.t, got.U, got.V, tt.wantU, tt.wantV)
			}
		})
	}
}

func TestKelvinToUCS_WarmerIsRedder(t *testing.T) {
	// Along the Planckian locus u' decreases monotonically as the
	// temperature rises through the usable range.
	prevU := math.Inf(1)
	for _, k := range []uint16{1000, 1900, 2700, 4000, 5500, 6500, 10000, 20000, 40000} {
		uv := KelvinToUCS(k)
		if math.IsNaN(uv.U) || math.IsNaN(uv.V) {
			t.Fatalf("KelvinToUCS(%d) produced NaN", k)
		}
		if uv.U >= prevU {
			t.Errorf("u' did not decrease at %d K: %v >= %v", k, uv.U, prevU)
		}
		prevU = uv.U
	}
}

func TestLightnessToLuma(t *testing.T) {
	tests := []struct {
		l    float64
		want float64
	}{
		{l: 100, want: 1.0},
		{l: 50, want: 0.18418651851244416},
		{l: 0, want: 0.0026241338308253719}, // (16/116)^3
	}

	for _, tt := range tests {
		if got := LightnessToLuma(tt.l); !almostEqual(got, tt.want, 1e-15) {
			t.Errorf("LightnessToLuma(%v) = %v, want %v", tt.l, got, tt.want)
		}
	}
}

func TestRGBClamp(t *testing.T) {
	tests := []struct {
		name string
		in   RGB
		want RGB
	}{
		{name: "in_range", in: RGB{0.2, 0.5, 0.9}, want: RGB{0.2, 0.5, 0.9}},
		{name: "below", in: RGB{-0.5, -1, 0.3}, want: RGB{0, 0, 0.3}},
		{name: "above", in: RGB{1.7, 0.4, 2}, want: RGB{1, 0.4, 1}},
		{name: "nan_drives_nothing", in: RGB{math.NaN(), 0.5, math.NaN()}, want: RGB{0, 0.5, 0}},
		{name: "infinities", in: RGB{math.Inf(1), math.Inf(-1), 0.5}, want: RGB{1, 0, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(); got != tt.want {
				t.Errorf("Clamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRGBMaxScale(t *testing.T) {
	c := RGB{0.2, 0.8, 0.4}
	if got := c.Max(); got != 0.8 {
		t.Errorf("Max() = %v, want 0.8", got)
	}
	if got := c.Scale(0.5); got != (RGB{0.1, 0.4, 0.2}) {
		t.Errorf("Scale(0.5) = %v", got)
	}
}
