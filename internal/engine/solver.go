package engine

import (
	"math"

	"github.com/dokzlo13/ledd/internal/calib"
	"github.com/dokzlo13/ledd/internal/color"
)

// rotation fixes one turn of the counter-clockwise neighbor order
// red -> green -> blue -> red used by the solver. For each primary the
// right-hand fit covers the primary->neighbor edge and the left-hand fit
// covers the neighbor->opposite edge.
type rotation struct {
	primary  int
	neighbor int
	opposite int
	right    int
	left     int
}

var rotations = [3]rotation{
	{primary: 0, neighbor: 1, opposite: 2, right: 0, left: 1},
	{primary: 1, neighbor: 2, opposite: 0, right: 1, left: 2},
	{primary: 2, neighbor: 0, opposite: 1, right: 2, left: 0},
}

// solve derives the raw contribution of every primary for a target UCS
// chromaticity. The result is not yet luma-normalized.
func solve(target color.UV, cal calib.Calibration) (color.RGB, error) {
	primaries := [3]color.UV{cal.Red.UV, cal.Green.UV, cal.Blue.UV}
	fits := [3]calib.Fit{cal.RedToGreen, cal.GreenToBlue, cal.BlueToRed}

	var levels [3]float64
	for i, rot := range rotations {
		level, err := solveChannel(target,
			primaries[rot.primary], primaries[rot.neighbor], primaries[rot.opposite],
			fits[rot.right], fits[rot.left])
		if err != nil {
			return color.RGB{}, err
		}
		levels[i] = level
	}

	return color.RGB{R: levels[0], G: levels[1], B: levels[2]}, nil
}

// solveChannel computes one primary's raw contribution. Geometrically: a ray
// from p0 through the target point is extended to the opposite edge p1-p2;
// the intersection, expressed in the left-hand fit's normalized coordinate,
// is the exact root of the quadratic obtained by substituting the rational
// fit into the line intersection constraint. The expressions below are the
// symbolic expansion of that root and are kept verbatim so results stay
// bit-for-bit reproducible against the fixture characterization. The sign of
// each fit's leading coefficient selects the geometrically valid branch over
// the fit's monotonic domain.
//
// Collinear primaries or a target coincident with an edge make the
// denominators vanish; that surfaces as ErrDegenerateCalibration instead of
// propagating non-finite levels downstream.
func solveChannel(target, p0, p1, p2 color.UV, right, left calib.Fit) (float64, error) {
	PTu, PTv := target.U, target.V
	P0u, P0v := p0.U, p0.V
	P1u, P1v := p1.U, p1.V
	P2u, P2v := p2.U, p2.V
	Lp1, Lp2, Lq1 := left.P1, left.P2, left.Q1

	var dR float64
	if Lp1 < 0 {
		dR = (math.Sqrt((P0u*P0u)*(P1v*P1v) + (P1u*P1u)*(P0v*P0v) + (P0u*P0u)*(PTv*PTv) + (P0v*P0v)*(PTu*PTu) +
			(P1u*P1u)*(PTv*PTv) + (P1v*P1v)*(PTu*PTu) - Lp1*(P0u*P0u)*(P1v*P1v)*2.0 - Lp1*(P1u*P1u)*(P0v*P0v)*2.0 -
			Lp2*(P0u*P0u)*(P1v*P1v)*2.0 - Lp2*(P1u*P1u)*(P0v*P0v)*2.0 + Lq1*(P0u*P0u)*(P1v*P1v)*2.0 +
			Lq1*(P1u*P1u)*(P0v*P0v)*2.0 - Lp1*(P0u*P0u)*(PTv*PTv)*2.0 - Lp1*(P0v*P0v)*(PTu*PTu)*2.0 -
			Lp2*(P0u*P0u)*(PTv*PTv)*4.0 - Lp2*(P0v*P0v)*(PTu*PTu)*4.0 + Lq1*(P0u*P0u)*(PTv*PTv)*2.0 +
			Lq1*(P0v*P0v)*(PTu*PTu)*2.0 + Lq1*(P1u*P1u)*(PTv*PTv)*2.0 + Lq1*(P1v*P1v)*(PTu*PTu)*2.0 +
			(Lp1*Lp1)*(P0u*P0u)*(P1v*P1v) + (Lp1*Lp1)*(P1u*P1u)*(P0v*P0v) + (Lp2*Lp2)*(P0u*P0u)*(P1v*P1v) +
			(Lp2*Lp2)*(P1u*P1u)*(P0v*P0v) + (Lp1*Lp1)*(P1u*P1u)*(P2v*P2v) + (Lp1*Lp1)*(P2u*P2u)*(P1v*P1v) +
			(Lp2*Lp2)*(P0u*P0u)*(P2v*P2v) + (Lp2*Lp2)*(P2u*P2u)*(P0v*P0v) + (Lp2*Lp2)*(P1u*P1u)*(P2v*P2v) +
			(Lp2*Lp2)*(P2u*P2u)*(P1v*P1v) + (Lq1*Lq1)*(P0u*P0u)*(P1v*P1v) + (Lq1*Lq1)*(P1u*P1u)*(P0v*P0v) +
			(Lp1*Lp1)*(P0u*P0u)*(PTv*PTv) + (Lp1*Lp1)*(P0v*P0v)*(PTu*PTu) + (Lp1*Lp1)*(P2u*P2u)*(PTv*PTv) +
			(Lp1*Lp1)*(P2v*P2v)*(PTu*PTu) + (Lq1*Lq1)*(P0u*P0u)*(PTv*PTv) + (Lq1*Lq1)*(P0v*P0v)*(PTu*PTu) +
			(Lq1*Lq1)*(P1u*P1u)*(PTv*PTv) + (Lq1*Lq1)*(P1v*P1v)*(PTu*PTu) - P0u*P1u*(PTv*PTv)*2.0 - P0u*(P1v*P1v)*PTu*2.0 -
			P1u*(P0v*P0v)*PTu*2.0 - P0v*P1v*(PTu*PTu)*2.0 - (P0u*P0u)*P1v*PTv*2.0 - (P1u*P1u)*P0v*PTv*2.0 +
			Lp1*Lp2*(P0u*P0u)*(P1v*P1v)*2.0 + Lp1*Lp2*(P1u*P1u)*(P0v*P0v)*2.0 + Lp1*Lp2*(P1u*P1u)*(P2v*P2v)*2.0 +
			Lp1*Lp2*(P2u*P2u)*(P1v*P1v)*2.0 - Lp1*Lq1*(P0u*P0u)*(P1v*P1v)*2.0 - Lp1*Lq1*(P1u*P1u)*(P0v*P0v)*2.0 -
			Lp2*Lq1*(P0u*P0u)*(P1v*P1v)*2.0 - Lp2*Lq1*(P1u*P1u)*(P0v*P0v)*2.0 + Lp1*Lq1*(P0u*P0u)*(PTv*PTv)*2.0 +
			Lp1*Lq1*(P0v*P0v)*(PTu*PTu)*2.0 - (Lp1*Lp1)*P0u*P2u*(P1v*P1v)*2.0 - (Lp2*Lp2)*P0u*P1u*(P2v*P2v)*2.0 -
			(Lp2*Lp2)*P0u*P2u*(P1v*P1v)*2.0 - (Lp2*Lp2)*P1u*P2u*(P0v*P0v)*2.0 - (Lp1*Lp1)*(P1u*P1u)*P0v*P2v*2.0 -
			(Lp2*Lp2)*(P0u*P0u)*P1v*P2v*2.0 - (Lp2*Lp2)*(P1u*P1u)*P0v*P2v*2.0 - (Lp2*Lp2)*(P2u*P2u)*P0v*P1v*2.0 -
			(Lp1*Lp1)*P1u*(P0v*P0v)*PTu*2.0 - (Lp1*Lp1)*P0u*P2u*(PTv*PTv)*2.0 - (Lp1*Lp1)*P1u*(P2v*P2v)*PTu*2.0 -
			(Lp1*Lp1)*(P0u*P0u)*P1v*PTv*2.0 - (Lp1*Lp1)*P0v*P2v*(PTu*PTu)*2.0 - (Lp1*Lp1)*(P2u*P2u)*P1v*PTv*2.0 -
			(Lq1*Lq1)*P0u*P1u*(PTv*PTv)*2.0 - (Lq1*Lq1)*P0u*(P1v*P1v)*PTu*2.0 - (Lq1*Lq1)*P1u*(P0v*P0v)*PTu*2.0 -
			(Lq1*Lq1)*P0v*P1v*(PTu*PTu)*2.0 - (Lq1*Lq1)*(P0u*P0u)*P1v*PTv*2.0 - (Lq1*Lq1)*(P1u*P1u)*P0v*PTv*2.0 -
			P0u*P1u*P0v*P1v*2.0 + P0u*P1u*P0v*PTv*2.0 + P0u*P0v*P1v*PTu*2.0 + P0u*P1u*P1v*PTv*2.0 + P1u*P0v*P1v*PTu*2.0 -
			P0u*P0v*PTu*PTv*2.0 + P0u*P1v*PTu*PTv*2.0 + P1u*P0v*PTu*PTv*2.0 - P1u*P1v*PTu*PTv*2.0 + Lp1*P0u*P2u*(P1v*P1v)*2.0 +
			Lp2*P0u*P2u*(P1v*P1v)*2.0 - Lp2*P1u*P2u*(P0v*P0v)*2.0 + Lp1*(P1u*P1u)*P0v*P2v*2.0 - Lp2*(P0u*P0u)*P1v*P2v*2.0 +
			Lp2*(P1u*P1u)*P0v*P2v*2.0 + Lp1*P0u*P1u*(PTv*PTv)*2.0 + Lp1*P0u*(P1v*P1v)*PTu*2.0 + Lp1*P1u*(P0v*P0v)*PTu*4.0 +
			Lp1*P0u*P2u*(PTv*PTv)*2.0 + Lp2*P0u*P1u*(PTv*PTv)*4.0 + Lp2*P0u*(P1v*P1v)*PTu*2.0 + Lp2*P1u*(P0v*P0v)*PTu*6.0 -
			Lp1*P1u*P2u*(PTv*PTv)*2.0 - Lp1*P2u*(P1v*P1v)*PTu*2.0 + Lp2*P0u*P2u*(PTv*PTv)*4.0 + Lp2*P2u*(P0v*P0v)*PTu*2.0 -
			Lp2*P1u*P2u*(PTv*PTv)*4.0 - Lp2*P2u*(P1v*P1v)*PTu*2.0 + Lp1*P0v*P1v*(PTu*PTu)*2.0 + Lp1*(P0u*P0u)*P1v*PTv*4.0 +
			Lp1*(P1u*P1u)*P0v*PTv*2.0 + Lp1*P0v*P2v*(PTu*PTu)*2.0 + Lp2*P0v*P1v*(PTu*PTu)*4.0 + Lp2*(P0u*P0u)*P1v*PTv*6.0 +
			Lp2*(P1u*P1u)*P0v*PTv*2.0 - Lp1*P1v*P2v*(PTu*PTu)*2.0 - Lp1*(P1u*P1u)*P2v*PTv*2.0 + Lp2*P0v*P2v*(PTu*PTu)*4.0 +
			Lp2*(P0u*P0u)*P2v*PTv*2.0 - Lp2*P1v*P2v*(PTu*PTu)*4.0 - Lp2*(P1u*P1u)*P2v*PTv*2.0 - Lq1*P0u*P1u*(PTv*PTv)*4.0 -
			Lq1*P0u*(P1v*P1v)*PTu*4.0 - Lq1*P1u*(P0v*P0v)*PTu*4.0 - Lq1*P0v*P1v*(PTu*PTu)*4.0 - Lq1*(P0u*P0u)*P1v*PTv*4.0 -
			Lq1*(P1u*P1u)*P0v*PTv*4.0 - Lp1*Lp2*P0u*P1u*(P2v*P2v)*2.0 - Lp1*Lp2*P0u*P2u*(P1v*P1v)*4.0 -
			Lp1*Lp2*P1u*P2u*(P0v*P0v)*2.0 - Lp1*Lp2*(P0u*P0u)*P1v*P2v*2.0 - Lp1*Lp2*(P1u*P1u)*P0v*P2v*4.0 -
			Lp1*Lp2*(P2u*P2u)*P0v*P1v*2.0 + Lp1*Lq1*P0u*P2u*(P1v*P1v)*2.0 + Lp1*Lq1*P1u*P2u*(P0v*P0v)*4.0 +
			Lp2*Lq1*P0u*P2u*(P1v*P1v)*2.0 + Lp2*Lq1*P1u*P2u*(P0v*P0v)*2.0 + Lp1*Lq1*(P0u*P0u)*P1v*P2v*4.0 +
			Lp1*Lq1*(P1u*P1u)*P0v*P2v*2.0 + Lp2*Lq1*(P0u*P0u)*P1v*P2v*2.0 + Lp2*Lq1*(P1u*P1u)*P0v*P2v*2.0 -
			Lp1*Lp2*P1u*(P0v*P0v)*PTu*2.0 + Lp1*Lp2*P0u*(P2v*P2v)*PTu*2.0 + Lp1*Lp2*P2u*(P0v*P0v)*PTu*2.0 -
			Lp1*Lp2*P1u*(P2v*P2v)*PTu*2.0 - Lp1*Lp2*(P0u*P0u)*P1v*PTv*2.0 + Lp1*Lp2*(P0u*P0u)*P2v*PTv*2.0 +
			Lp1*Lp2*(P2u*P2u)*P0v*PTv*2.0 - Lp1*Lp2*(P2u*P2u)*P1v*PTv*2.0 - Lp1*Lq1*P0u*P1u*(PTv*PTv)*2.0 +
			Lp1*Lq1*P0u*(P1v*P1v)*PTu*2.0 - Lp1*Lq1*P0u*P2u*(PTv*PTv)*2.0 - Lp1*Lq1*P2u*(P0v*P0v)*PTu*4.0 +
			Lp2*Lq1*P0u*(P1v*P1v)*PTu*2.0 + Lp2*Lq1*P1u*(P0v*P0v)*PTu*2.0 + Lp1*Lq1*P1u*P2u*(PTv*PTv)*2.0 -
			Lp1*Lq1*P2u*(P1v*P1v)*PTu*2.0 - Lp2*Lq1*P2u*(P0v*P0v)*PTu*2.0 - Lp2*Lq1*P2u*(P1v*P1v)*PTu*2.0 -
			Lp1*Lq1*P0v*P1v*(PTu*PTu)*2.0 + Lp1*Lq1*(P1u*P1u)*P0v*PTv*2.0 - Lp1*Lq1*P0v*P2v*(PTu*PTu)*2.0 -
			Lp1*Lq1*(P0u*P0u)*P2v*PTv*4.0 + Lp2*Lq1*(P0u*P0u)*P1v*PTv*2.0 + Lp2*Lq1*(P1u*P1u)*P0v*PTv*2.0 +
			Lp1*Lq1*P1v*P2v*(PTu*PTu)*2.0 - Lp1*Lq1*(P1u*P1u)*P2v*PTv*2.0 - Lp2*Lq1*(P0u*P0u)*P2v*PTv*2.0 -
			Lp2*Lq1*(P1u*P1u)*P2v*PTv*2.0 - (Lp1*Lp1)*P0u*P1u*P0v*P1v*2.0 - (Lp2*Lp2)*P0u*P1u*P0v*P1v*2.0 +
			(Lp1*Lp1)*P0u*P1u*P1v*P2v*2.0 + (Lp1*Lp1)*P1u*P2u*P0v*P1v*2.0 + (Lp2*Lp2)*P0u*P1u*P0v*P2v*2.0 +
			(Lp2*Lp2)*P0u*P2u*P0v*P1v*2.0 + (Lp2*Lp2)*P0u*P1u*P1v*P2v*2.0 - (Lp2*Lp2)*P0u*P2u*P0v*P2v*2.0 +
			(Lp2*Lp2)*P1u*P2u*P0v*P1v*2.0 - (Lp1*Lp1)*P1u*P2u*P1v*P2v*2.0 + (Lp2*Lp2)*P0u*P2u*P1v*P2v*2.0 +
			(Lp2*Lp2)*P1u*P2u*P0v*P2v*2.0 - (Lp2*Lp2)*P1u*P2u*P1v*P2v*2.0 - (Lq1*Lq1)*P0u*P1u*P0v*P1v*2.0 +
			(Lp1*Lp1)*P0u*P1u*P0v*PTv*2.0 + (Lp1*Lp1)*P0u*P0v*P1v*PTu*2.0 - (Lp1*Lp1)*P0u*P1u*P2v*PTv*2.0 +
			(Lp1*Lp1)*P0u*P2u*P1v*PTv*4.0 - (Lp1*Lp1)*P0u*P1v*P2v*PTu*2.0 - (Lp1*Lp1)*P1u*P2u*P0v*PTv*2.0 +
			(Lp1*Lp1)*P1u*P0v*P2v*PTu*4.0 - (Lp1*Lp1)*P2u*P0v*P1v*PTu*2.0 + (Lp1*Lp1)*P1u*P2u*P2v*PTv*2.0 +
			(Lp1*Lp1)*P2u*P1v*P2v*PTu*2.0 + (Lq1*Lq1)*P0u*P1u*P0v*PTv*2.0 + (Lq1*Lq1)*P0u*P0v*P1v*PTu*2.0 +
			(Lq1*Lq1)*P0u*P1u*P1v*PTv*2.0 + (Lq1*Lq1)*P1u*P0v*P1v*PTu*2.0 - (Lp1*Lp1)*P0u*P0v*PTu*PTv*2.0 +
			(Lp1*Lp1)*P0u*P2v*PTu*PTv*2.0 + (Lp1*Lp1)*P2u*P0v*PTu*PTv*2.0 - (Lp1*Lp1)*P2u*P2v*PTu*PTv*2.0 -
			(Lq1*Lq1)*P0u*P0v*PTu*PTv*2.0 + (Lq1*Lq1)*P0u*P1v*PTu*PTv*2.0 + (Lq1*Lq1)*P1u*P0v*PTu*PTv*2.0 -
			(Lq1*Lq1)*P1u*P1v*PTu*PTv*2.0 + Lp1*P0u*P1u*P0v*P1v*4.0 + Lp2*P0u*P1u*P0v*P1v*4.0 - Lp1*P0u*P1u*P1v*P2v*2.0 -
			Lp1*P1u*P2u*P0v*P1v*2.0 + Lp2*P0u*P1u*P0v*P2v*2.0 + Lp2*P0u*P2u*P0v*P1v*2.0 - Lp2*P0u*P1u*P1v*P2v*2.0 -
			Lp2*P1u*P2u*P0v*P1v*2.0 - Lq1*P0u*P1u*P0v*P1v*4.0 - Lp1*P0u*P1u*P0v*PTv*4.0 - Lp1*P0u*P0v*P1v*PTu*4.0 -
			Lp1*P0u*P1u*P1v*PTv*2.0 - Lp1*P1u*P0v*P1v*PTu*2.0 - Lp2*P0u*P1u*P0v*PTv*6.0 - Lp2*P0u*P0v*P1v*PTu*6.0 +
			Lp1*P0u*P1u*P2v*PTv*2.0 - Lp1*P0u*P2u*P1v*PTv*4.0 + Lp1*P0u*P1v*P2v*PTu*2.0 + Lp1*P1u*P2u*P0v*PTv*2.0 -
			Lp1*P1u*P0v*P2v*PTu*4.0 + Lp1*P2u*P0v*P1v*PTu*2.0 - Lp2*P0u*P1u*P1v*PTv*2.0 - Lp2*P0u*P2u*P0v*PTv*2.0 -
			Lp2*P0u*P0v*P2v*PTu*2.0 - Lp2*P1u*P0v*P1v*PTu*2.0 + Lp1*P1u*P2u*P1v*PTv*2.0 + Lp1*P1u*P1v*P2v*PTu*2.0 -
			Lp2*P0u*P2u*P1v*PTv*6.0 + Lp2*P0u*P1v*P2v*PTu*6.0 + Lp2*P1u*P2u*P0v*PTv*6.0 - Lp2*P1u*P0v*P2v*PTu*6.0 +
			Lp2*P1u*P2u*P1v*PTv*2.0 + Lp2*P1u*P1v*P2v*PTu*2.0 + Lq1*P0u*P1u*P0v*PTv*4.0 + Lq1*P0u*P0v*P1v*PTu*4.0 +
			Lq1*P0u*P1u*P1v*PTv*4.0 + Lq1*P1u*P0v*P1v*PTu*4.0 + Lp1*P0u*P0v*PTu*PTv*4.0 - Lp1*P0u*P1v*PTu*PTv*2.0 -
			Lp1*P1u*P0v*PTu*PTv*2.0 + Lp2*P0u*P0v*PTu*PTv*8.0 - Lp1*P0u*P2v*PTu*PTv*2.0 - Lp1*P2u*P0v*PTu*PTv*2.0 -
			Lp2*P0u*P1v*PTu*PTv*4.0 - Lp2*P1u*P0v*PTu*PTv*4.0 + Lp1*P1u*P2v*PTu*PTv*2.0 + Lp1*P2u*P1v*PTu*PTv*2.0 -
			Lp2*P0u*P2v*PTu*PTv*4.0 - Lp2*P2u*P0v*PTu*PTv*4.0 + Lp2*P1u*P2v*PTu*PTv*4.0 + Lp2*P2u*P1v*PTu*PTv*4.0 -
			Lq1*P0u*P0v*PTu*PTv*4.0 + Lq1*P0u*P1v*PTu*PTv*4.0 + Lq1*P1u*P0v*PTu*PTv*4.0 - Lq1*P1u*P1v*PTu*PTv*4.0 -
			Lp1*Lp2*P0u*P1u*P0v*P1v*4.0 + Lp1*Lp2*P0u*P1u*P0v*P2v*2.0 + Lp1*Lp2*P0u*P2u*P0v*P1v*2.0 +
			Lp1*Lp2*P0u*P1u*P1v*P2v*4.0 + Lp1*Lp2*P1u*P2u*P0v*P1v*4.0 + Lp1*Lp2*P0u*P2u*P1v*P2v*2.0 +
			Lp1*Lp2*P1u*P2u*P0v*P2v*2.0 - Lp1*Lp2*P1u*P2u*P1v*P2v*4.0 + Lp1*Lq1*P0u*P1u*P0v*P1v*4.0 -
			Lp1*Lq1*P0u*P1u*P0v*P2v*4.0 - Lp1*Lq1*P0u*P2u*P0v*P1v*4.0 + Lp2*Lq1*P0u*P1u*P0v*P1v*4.0 -
			Lp1*Lq1*P0u*P1u*P1v*P2v*2.0 - Lp1*Lq1*P1u*P2u*P0v*P1v*2.0 - Lp2*Lq1*P0u*P1u*P0v*P2v*2.0 -
			Lp2*Lq1*P0u*P2u*P0v*P1v*2.0 - Lp2*Lq1*P0u*P1u*P1v*P2v*2.0 - Lp2*Lq1*P1u*P2u*P0v*P1v*2.0 +
			Lp1*Lp2*P0u*P1u*P0v*PTv*2.0 + Lp1*Lp2*P0u*P0v*P1v*PTu*2.0 - Lp1*Lp2*P0u*P2u*P0v*PTv*2.0 -
			Lp1*Lp2*P0u*P0v*P2v*PTu*2.0 - Lp1*Lp2*P0u*P1u*P2v*PTv*2.0 + Lp1*Lp2*P0u*P2u*P1v*PTv*4.0 -
			Lp1*Lp2*P0u*P1v*P2v*PTu*2.0 - Lp1*Lp2*P1u*P2u*P0v*PTv*2.0 + Lp1*Lp2*P1u*P0v*P2v*PTu*4.0 -
			Lp1*Lp2*P2u*P0v*P1v*PTu*2.0 - Lp1*Lp2*P0u*P2u*P2v*PTv*2.0 - Lp1*Lp2*P2u*P0v*P2v*PTu*2.0 +
			Lp1*Lp2*P1u*P2u*P2v*PTv*2.0 + Lp1*Lp2*P2u*P1v*P2v*PTu*2.0 - Lp1*Lq1*P0u*P1u*P1v*PTv*2.0 +
			Lp1*Lq1*P0u*P2u*P0v*PTv*4.0 + Lp1*Lq1*P0u*P0v*P2v*PTu*4.0 - Lp1*Lq1*P1u*P0v*P1v*PTu*2.0 -
			Lp2*Lq1*P0u*P1u*P0v*PTv*2.0 - Lp2*Lq1*P0u*P0v*P1v*PTu*2.0 + Lp1*Lq1*P0u*P1u*P2v*PTv*6.0 -
			Lp1*Lq1*P0u*P1v*P2v*PTu*6.0 - Lp1*Lq1*P1u*P2u*P0v*PTv*6.0 + Lp1*Lq1*P2u*P0v*P1v*PTu*6.0 -
			Lp2*Lq1*P0u*P1u*P1v*PTv*2.0 + Lp2*Lq1*P0u*P2u*P0v*PTv*2.0 + Lp2*Lq1*P0u*P0v*P2v*PTu*2.0 -
			Lp2*Lq1*P1u*P0v*P1v*PTu*2.0 + Lp1*Lq1*P1u*P2u*P1v*PTv*2.0 + Lp1*Lq1*P1u*P1v*P2v*PTu*2.0 +
			Lp2*Lq1*P0u*P1u*P2v*PTv*4.0 - Lp2*Lq1*P0u*P2u*P1v*PTv*2.0 - Lp2*Lq1*P0u*P1v*P2v*PTu*2.0 -
			Lp2*Lq1*P1u*P2u*P0v*PTv*2.0 - Lp2*Lq1*P1u*P0v*P2v*PTu*2.0 + Lp2*Lq1*P2u*P0v*P1v*PTu*4.0 +
			Lp2*Lq1*P1u*P2u*P1v*PTv*2.0 + Lp2*Lq1*P1u*P1v*P2v*PTu*2.0 - Lp1*Lq1*P0u*P0v*PTu*PTv*4.0 +
			Lp1*Lq1*P0u*P1v*PTu*PTv*2.0 + Lp1*Lq1*P1u*P0v*PTu*PTv*2.0 + Lp1*Lq1*P0u*P2v*PTu*PTv*2.0 +
			Lp1*Lq1*P2u*P0v*PTu*PTv*2.0 - Lp1*Lq1*P1u*P2v*PTu*PTv*2.0 - Lp1*Lq1*P2u*P1v*PTu*PTv*2.0)*(1.0 / 2.0) +
			P0u*P1v*(1.0 / 2.0) - P1u*P0v*(1.0 / 2.0) - P0u*PTv*(1.0 / 2.0) + P0v*PTu*(1.0 / 2.0) + P1u*PTv*(1.0 / 2.0) -
			P1v*PTu*(1.0 / 2.0) - Lp1*P0u*P1v*(1.0 / 2.0) + Lp1*P1u*P0v*(1.0 / 2.0) + Lp1*P0u*P2v - Lp1*P2u*P0v -
			Lp2*P0u*P1v*(1.0 / 2.0) + Lp2*P1u*P0v*(1.0 / 2.0) - Lp1*P1u*P2v*(1.0 / 2.0) + Lp1*P2u*P1v*(1.0 / 2.0) +
			Lp2*P0u*P2v*(1.0 / 2.0) - Lp2*P2u*P0v*(1.0 / 2.0) - Lp2*P1u*P2v*(1.0 / 2.0) + Lp2*P2u*P1v*(1.0 / 2.0) +
			Lq1*P0u*P1v*(1.0 / 2.0) - Lq1*P1u*P0v*(1.0 / 2.0) - Lp1*P0u*PTv*(1.0 / 2.0) + Lp1*P0v*PTu*(1.0 / 2.0) +
			Lp1*P2u*PTv*(1.0 / 2.0) - Lp1*P2v*PTu*(1.0 / 2.0) - Lq1*P0u*PTv*(1.0 / 2.0) + Lq1*P0v*PTu*(1.0 / 2.0) +
			Lq1*P1u*PTv*(1.0 / 2.0) - Lq1*P1v*PTu*(1.0 / 2.0)) / (P0u*P1v - P1u*P0v - P0u*PTv + P0v*PTu + P1u*PTv - P1v*PTu -
			Lp1*P0u*P1v + Lp1*P1u*P0v + Lp1*P0u*P2v - Lp1*P2u*P0v - Lp1*P1u*P2v + Lp1*P2u*P1v)
	} else {
		dR = 1.0 - (math.Sqrt(Lp1*Lp1*P0u*P0u*P2v*P2v - 2 * Lp1*Lp1*P0u*P0u*P2v*PTv + Lp1*Lp1*P0u*P0u*PTv*PTv -
			2 * Lp1*Lp1*P0u*P2u*P0v*P2v + 2 * Lp1*Lp1*P0u*P2u*P0v*PTv + 2 * Lp1*Lp1*P0u*P2u*P2v*PTv -
			2 * Lp1*Lp1*P0u*P2u*PTv*PTv + 2 * Lp1*Lp1*P0u*P0v*P2v*PTu - 2 * Lp1*Lp1*P0u*P0v*PTu*PTv -
			2 * Lp1*Lp1*P0u*P2v*P2v*PTu + 2 * Lp1*Lp1*P0u*P2v*PTu*PTv + Lp1*Lp1*P2u*P2u*P0v*P0v - 2 * Lp1*Lp1*P2u*P2u*P0v*PTv +
			Lp1*Lp1*P2u*P2u*PTv*PTv - 2 * Lp1*Lp1*P2u*P0v*P0v*PTu + 2 * Lp1*Lp1*P2u*P0v*P2v*PTu + 2 * Lp1*Lp1*P2u*P0v*PTu*PTv -
			2 * Lp1*Lp1*P2u*P2v*PTu*PTv + Lp1*Lp1*P0v*P0v*PTu*PTu - 2 * Lp1*Lp1*P0v*P2v*PTu*PTu + Lp1*Lp1*P2v*P2v*PTu*PTu -
			2 * Lp1*Lp2*P0u*P0u*P1v*P2v + 2 * Lp1*Lp2*P0u*P0u*P1v*PTv + 2 * Lp1*Lp2*P0u*P0u*P2v*P2v -
			2 * Lp1*Lp2*P0u*P0u*P2v*PTv + 2 * Lp1*Lp2*P0u*P1u*P0v*P2v - 2 * Lp1*Lp2*P0u*P1u*P0v*PTv -
			2 * Lp1*Lp2*P0u*P1u*P2v*P2v + 2 * Lp1*Lp2*P0u*P1u*P2v*PTv + 2 * Lp1*Lp2*P0u*P2u*P0v*P1v -
			4 * Lp1*Lp2*P0u*P2u*P0v*P2v + 2 * Lp1*Lp2*P0u*P2u*P0v*PTv + 2 * Lp1*Lp2*P0u*P2u*P1v*P2v -
			4 * Lp1*Lp2*P0u*P2u*P1v*PTv + 2 * Lp1*Lp2*P0u*P2u*P2v*PTv - 2 * Lp1*Lp2*P0u*P0v*P1v*PTu +
			2 * Lp1*Lp2*P0u*P0v*P2v*PTu + 2 * Lp1*Lp2*P0u*P1v*P2v*PTu - 2 * Lp1*Lp2*P0u*P2v*P2v*PTu -
			2 * Lp1*Lp2*P1u*P2u*P0v*P0v + 2 * Lp1*Lp2*P1u*P2u*P0v*P2v + 2 * Lp1*Lp2*P1u*P2u*P0v*PTv -
			2 * Lp1*Lp2*P1u*P2u*P2v*PTv + 2 * Lp1*Lp2*P1u*P0v*P0v*PTu - 4 * Lp1*Lp2*P1u*P0v*P2v*PTu +
			2 * Lp1*Lp2*P1u*P2v*P2v*PTu + 2 * Lp1*Lp2*P2u*P2u*P0v*P0v - 2 * Lp1*Lp2*P2u*P2u*P0v*P1v -
			2 * Lp1*Lp2*P2u*P2u*P0v*PTv + 2 * Lp1*Lp2*P2u*P2u*P1v*PTv - 2 * Lp1*Lp2*P2u*P0v*P0v*PTu +
			2 * Lp1*Lp2*P2u*P0v*P1v*PTu + 2 * Lp1*Lp2*P2u*P0v*P2v*PTu - 2 * Lp1*Lp2*P2u*P1v*P2v*PTu -
			2 * Lp1*Lq1*P0u*P0u*P1v*P2v + 2 * Lp1*Lq1*P0u*P0u*P1v*PTv + 2 * Lp1*Lq1*P0u*P0u*P2v*PTv -
			2 * Lp1*Lq1*P0u*P0u*PTv*PTv + 2 * Lp1*Lq1*P0u*P1u*P0v*P2v - 2 * Lp1*Lq1*P0u*P1u*P0v*PTv -
			2 * Lp1*Lq1*P0u*P1u*P2v*PTv + 2 * Lp1*Lq1*P0u*P1u*PTv*PTv + 2 * Lp1*Lq1*P0u*P2u*P0v*P1v -
			2 * Lp1*Lq1*P0u*P2u*P0v*PTv - 2 * Lp1*Lq1*P0u*P2u*P1v*PTv + 2 * Lp1*Lq1*P0u*P2u*PTv*PTv -
			2 * Lp1*Lq1*P0u*P0v*P1v*PTu - 2 * Lp1*Lq1*P0u*P0v*P2v*PTu + 4 * Lp1*Lq1*P0u*P0v*PTu*PTv +
			4 * Lp1*Lq1*P0u*P1v*P2v*PTu - 2 * Lp1*Lq1*P0u*P1v*PTu*PTv - 2 * Lp1*Lq1*P0u*P2v*PTu*PTv -
			2 * Lp1*Lq1*P1u*P2u*P0v*P0v + 4 * Lp1*Lq1*P1u*P2u*P0v*PTv - 2 * Lp1*Lq1*P1u*P2u*PTv*PTv +
			2 * Lp1*Lq1*P1u*P0v*P0v*PTu - 2 * Lp1*Lq1*P1u*P0v*P2v*PTu - 2 * Lp1*Lq1*P1u*P0v*PTu*PTv +
			2 * Lp1*Lq1*P1u*P2v*PTu*PTv + 2 * Lp1*Lq1*P2u*P0v*P0v*PTu - 2 * Lp1*Lq1*P2u*P0v*P1v*PTu -
			2 * Lp1*Lq1*P2u*P0v*PTu*PTv + 2 * Lp1*Lq1*P2u*P1v*PTu*PTv - 2 * Lp1*Lq1*P0v*P0v*PTu*PTu +
			2 * Lp1*Lq1*P0v*P1v*PTu*PTu + 2 * Lp1*Lq1*P0v*P2v*PTu*PTu - 2 * Lp1*Lq1*P1v*P2v*PTu*PTu + Lp2*Lp2*P0u*P0u*P1v*P1v -
			2 * Lp2*Lp2*P0u*P0u*P1v*P2v + Lp2*Lp2*P0u*P0u*P2v*P2v - 2 * Lp2*Lp2*P0u*P1u*P0v*P1v + 2 * Lp2*Lp2*P0u*P1u*P0v*P2v +
			2 * Lp2*Lp2*P0u*P1u*P1v*P2v - 2 * Lp2*Lp2*P0u*P1u*P2v*P2v + 2 * Lp2*Lp2*P0u*P2u*P0v*P1v -
			2 * Lp2*Lp2*P0u*P2u*P0v*P2v - 2 * Lp2*Lp2*P0u*P2u*P1v*P1v + 2 * Lp2*Lp2*P0u*P2u*P1v*P2v + Lp2*Lp2*P1u*P1u*P0v*P0v -
			2 * Lp2*Lp2*P1u*P1u*P0v*P2v + Lp2*Lp2*P1u*P1u*P2v*P2v - 2 * Lp2*Lp2*P1u*P2u*P0v*P0v + 2 * Lp2*Lp2*P1u*P2u*P0v*P1v +
			2 * Lp2*Lp2*P1u*P2u*P0v*P2v - 2 * Lp2*Lp2*P1u*P2u*P1v*P2v + Lp2*Lp2*P2u*P2u*P0v*P0v - 2 * Lp2*Lp2*P2u*P2u*P0v*P1v +
			Lp2*Lp2*P2u*P2u*P1v*P1v - 2 * Lp2*Lq1*P0u*P0u*P1v*P1v + 2 * Lp2*Lq1*P0u*P0u*P1v*P2v + 2 * Lp2*Lq1*P0u*P0u*P1v*PTv -
			2 * Lp2*Lq1*P0u*P0u*P2v*PTv + 4 * Lp2*Lq1*P0u*P1u*P0v*P1v - 2 * Lp2*Lq1*P0u*P1u*P0v*P2v -
			2 * Lp2*Lq1*P0u*P1u*P0v*PTv - 2 * Lp2*Lq1*P0u*P1u*P1v*P2v - 2 * Lp2*Lq1*P0u*P1u*P1v*PTv +
			4 * Lp2*Lq1*P0u*P1u*P2v*PTv - 2 * Lp2*Lq1*P0u*P2u*P0v*P1v + 2 * Lp2*Lq1*P0u*P2u*P0v*PTv +
			2 * Lp2*Lq1*P0u*P2u*P1v*P1v - 2 * Lp2*Lq1*P0u*P2u*P1v*PTv - 2 * Lp2*Lq1*P0u*P0v*P1v*PTu +
			2 * Lp2*Lq1*P0u*P0v*P2v*PTu + 2 * Lp2*Lq1*P0u*P1v*P1v*PTu - 2 * Lp2*Lq1*P0u*P1v*P2v*PTu -
			2 * Lp2*Lq1*P1u*P1u*P0v*P0v + 2 * Lp2*Lq1*P1u*P1u*P0v*P2v + 2 * Lp2*Lq1*P1u*P1u*P0v*PTv -
			2 * Lp2*Lq1*P1u*P1u*P2v*PTv + 2 * Lp2*Lq1*P1u*P2u*P0v*P0v - 2 * Lp2*Lq1*P1u*P2u*P0v*P1v -
			2 * Lp2*Lq1*P1u*P2u*P0v*PTv + 2 * Lp2*Lq1*P1u*P2u*P1v*PTv + 2 * Lp2*Lq1*P1u*P0v*P0v*PTu -
			2 * Lp2*Lq1*P1u*P0v*P1v*PTu - 2 * Lp2*Lq1*P1u*P0v*P2v*PTu + 2 * Lp2*Lq1*P1u*P1v*P2v*PTu -
			2 * Lp2*Lq1*P2u*P0v*P0v*PTu + 4 * Lp2*Lq1*P2u*P0v*P1v*PTu - 2 * Lp2*Lq1*P2u*P1v*P1v*PTu + 4 * Lp2*P0u*P0u*P1v*P2v -
			4 * Lp2*P0u*P0u*P1v*PTv - 4 * Lp2*P0u*P0u*P2v*PTv + 4 * Lp2*P0u*P0u*PTv*PTv - 4 * Lp2*P0u*P1u*P0v*P2v +
			4 * Lp2*P0u*P1u*P0v*PTv + 4 * Lp2*P0u*P1u*P2v*PTv - 4 * Lp2*P0u*P1u*PTv*PTv - 4 * Lp2*P0u*P2u*P0v*P1v +
			4 * Lp2*P0u*P2u*P0v*PTv + 4 * Lp2*P0u*P2u*P1v*PTv - 4 * Lp2*P0u*P2u*PTv*PTv + 4 * Lp2*P0u*P0v*P1v*PTu +
			4 * Lp2*P0u*P0v*P2v*PTu - 8 * Lp2*P0u*P0v*PTu*PTv - 8 * Lp2*P0u*P1v*P2v*PTu + 4 * Lp2*P0u*P1v*PTu*PTv +
			4 * Lp2*P0u*P2v*PTu*PTv + 4 * Lp2*P1u*P2u*P0v*P0v - 8 * Lp2*P1u*P2u*P0v*PTv + 4 * Lp2*P1u*P2u*PTv*PTv -
			4 * Lp2*P1u*P0v*P0v*PTu + 4 * Lp2*P1u*P0v*P2v*PTu + 4 * Lp2*P1u*P0v*PTu*PTv - 4 * Lp2*P1u*P2v*PTu*PTv -
			4 * Lp2*P2u*P0v*P0v*PTu + 4 * Lp2*P2u*P0v*P1v*PTu + 4 * Lp2*P2u*P0v*PTu*PTv - 4 * Lp2*P2u*P1v*PTu*PTv +
			4 * Lp2*P0v*P0v*PTu*PTu - 4 * Lp2*P0v*P1v*PTu*PTu - 4 * Lp2*P0v*P2v*PTu*PTu + 4 * Lp2*P1v*P2v*PTu*PTu +
			Lq1*Lq1*P0u*P0u*P1v*P1v - 2 * Lq1*Lq1*P0u*P0u*P1v*PTv + Lq1*Lq1*P0u*P0u*PTv*PTv - 2 * Lq1*Lq1*P0u*P1u*P0v*P1v +
			2 * Lq1*Lq1*P0u*P1u*P0v*PTv + 2 * Lq1*Lq1*P0u*P1u*P1v*PTv - 2 * Lq1*Lq1*P0u*P1u*PTv*PTv +
			2 * Lq1*Lq1*P0u*P0v*P1v*PTu - 2 * Lq1*Lq1*P0u*P0v*PTu*PTv - 2 * Lq1*Lq1*P0u*P1v*P1v*PTu +
			2 * Lq1*Lq1*P0u*P1v*PTu*PTv + Lq1*Lq1*P1u*P1u*P0v*P0v - 2 * Lq1*Lq1*P1u*P1u*P0v*PTv + Lq1*Lq1*P1u*P1u*PTv*PTv -
			2 * Lq1*Lq1*P1u*P0v*P0v*PTu + 2 * Lq1*Lq1*P1u*P0v*P1v*PTu + 2 * Lq1*Lq1*P1u*P0v*PTu*PTv -
			2 * Lq1*Lq1*P1u*P1v*PTu*PTv + Lq1*Lq1*P0v*P0v*PTu*PTu - 2 * Lq1*Lq1*P0v*P1v*PTu*PTu + Lq1*Lq1*P1v*P1v*PTu*PTu) +
			2 * P0u*P1v - 2 * P1u*P0v - 2 * P0u*PTv + 2 * P0v*PTu + 2 * P1u*PTv - 2 * P1v*PTu - 2 * Lp1*P0u*P1v + 2 * Lp1*P1u*P0v +
			Lp1*P0u*P2v - Lp1*P2u*P0v - Lp2*P0u*P1v + Lp2*P1u*P0v - 2 * Lp1*P1u*P2v + 2 * Lp1*P2u*P1v + Lp2*P0u*P2v - Lp2*P2u*P0v -
			Lp2*P1u*P2v + Lp2*P2u*P1v + Lq1*P0u*P1v - Lq1*P1u*P0v + Lp1*P0u*PTv - Lp1*P0v*PTu - Lp1*P2u*PTv + Lp1*P2v*PTu -
			Lq1*P0u*PTv + Lq1*P0v*PTu + Lq1*P1u*PTv - Lq1*P1v*PTu) / (2 * (P0u*P1v - P1u*P0v - P0u*PTv + P0v*PTu + P1u*PTv -
			P1v*PTu - Lp1*P0u*P1v + Lp1*P1u*P0v + Lp1*P0u*P2v - Lp1*P2u*P0v - Lp1*P1u*P2v + Lp1*P2u*P1v))
	}

	var level float64
	if right.P1 < 0 {
		level = right.Eval(dR)
	} else {
		level = right.Eval(1 - dR)
	}

	if math.IsNaN(level) || math.IsInf(level, 0) {
		return 0, ErrDegenerateCalibration
	}
	return level, nil
}
