package estimator

import "math"

// ProbCloser returns the probability that candidate i at polar (ri, phii) is
// closer to the observer at (ox, oz) than candidate l, whose ideal angle is phil
// and whose radius is unknown within ring. rl is only used to place candidate l
// when the observer lies on the ray through phil.
//
// Along the ray at phil the points exactly d_i from the observer sit at the two
// radii given by the law of sines. Candidate l is closer than i on the part of
// the ring span between them.
func ProbCloser(ri, phii, rl, phil, ox, oz float64, ring Ring) float64 {
	xi, zi := toCartesian(ri, phii)
	di := math.Hypot(xi-ox, zi-oz)

	rp, phip := toPolar(ox, oz)
	a := phip - phil
	sinA := math.Sin(a)

	if math.Abs(sinA) < DegenerateSin {
		xl, zl := toCartesian(rl, phil)
		dl := math.Hypot(xl-ox, zl-oz)
		if di <= dl {
			return 1.0
		}
		return 0.0
	}

	theta := math.Asin(clamp(rp*sinA/di, -1, 1))
	if math.IsNaN(theta) {
		return 0.5
	}

	r0 := clamp(di*math.Sin(theta-a)/sinA, ring.Inner, ring.Outer)
	r1 := clamp(di*math.Sin(theta+a)/sinA, ring.Inner, ring.Outer)
	if r1 <= r0 {
		return 1.0
	}

	covered := (r1 - r0) / ring.Width()
	if math.IsNaN(covered) {
		return 0.5
	}
	return clamp(1.0-covered, 0, 1)
}
