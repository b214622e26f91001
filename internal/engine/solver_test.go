package engine

import (
	"math"
	"testing"

	"github.com/dokzlo13/ledd/internal/calib"
	"github.com/dokzlo13/ledd/internal/color"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSolveDefaultCalibration(t *testing.T) {
	cal := calib.Default()

	tests := []struct {
		name   string
		target color.UV
		want   color.RGB
	}{
		{
			// Chromaticity of a 1900 K blackbody; exercises both root
			// branches (blue-to-red fit is the only one with negative p1).
			name:   "warm_white",
			target: color.UV{U: 0.31335599765106287, V: 0.53909426532998062},
			want:   color.RGB{R: 0.63716217107155826, G: 0.35826957551211319, B: 0.00456661625452311},
		},
		{
			name:   "mid_gamut",
			target: color.UV{U: 0.21, V: 0.48},
			want:   color.RGB{R: 0.42976810544751992, G: 0.52264791802462462, B: 0.047582078387890685},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := solve(tt.target, cal)
			if err != nil {
				t.Fatalf("solve() error: %v", err)
			}
			if !almostEqual(got.R, tt.want.R, 1e-12) ||
				!almostEqual(got.G, tt.want.G, 1e-12) ||
				!almostEqual(got.B, tt.want.B, 1e-12) {
				t.Errorf("solve(%v) = %+v, want %+v", tt.target, got, tt.want)
			}
		})
	}
}

func TestSolveDeterministic(t *testing.T) {
	cal := calib.Default()
	target := color.UV{U: 0.25, V: 0.5}

	first, err := solve(target, cal)
	if err != nil {
		t.Fatalf("solve() error: %v", err)
	}
	second, err := solve(target, cal)
	if err != nil {
		t.Fatalf("solve() error: %v", err)
	}
	if first != second {
		t.Errorf("solve is not deterministic: %+v != %+v", first, second)
	}
}

func TestSolveDegenerateGeometry(t *testing.T) {
	// All three primaries on the same point collapses the gamut triangle;
	// the closed form divides zero by zero.
	p := calib.Primary{UV: color.UV{U: 0.3, V: 0.3}, Flux: 1}
	cal := calib.Default()
	cal.Red, cal.Green, cal.Blue = p, p, p

	if _, err := solve(color.UV{U: 0.25, V: 0.25}, cal); err != ErrDegenerateCalibration {
		t.Errorf("solve() error = %v, want ErrDegenerateCalibration", err)
	}
}
