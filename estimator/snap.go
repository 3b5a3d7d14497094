package estimator

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// SnapKernel weights angular offsets of a candidate from its ideal position
// with a scaled symmetric Beta density.
type SnapKernel struct {
	Alpha   float64
	Beta    float64
	MaxSnap float64
	lnB     float64
}

// DefaultSnapKernel is Beta(5.5, 5.5) over a 15*sqrt(2) snap distance.
var DefaultSnapKernel = NewSnapKernel(SnapAlpha, SnapBeta, MaxSnapDistance)

func NewSnapKernel(alpha, beta, maxSnap float64) SnapKernel {
	return SnapKernel{
		Alpha:   alpha,
		Beta:    beta,
		MaxSnap: maxSnap,
		lnB:     mathext.Lbeta(alpha, beta),
	}
}

// MaxDelta is the largest angular offset (radians) with nonzero weight on ring.
func (k SnapKernel) MaxDelta(ring Ring) float64 {
	return k.MaxSnap / ring.Inner
}

// Weight returns the kernel density at angular offset (radians) on ring.
func (k SnapKernel) Weight(offset float64, ring Ring) float64 {
	if math.Abs(offset) >= k.MaxDelta(ring) {
		return 0
	}
	x := ring.Inner * offset / k.MaxSnap
	if math.Abs(x) >= 1 {
		return 0
	}
	norm := math.Exp(k.lnB) * k.MaxSnap / (2.0 * ring.Inner)
	return math.Pow(1+x, k.Alpha-1) * math.Pow(1-x, k.Beta-1) / norm
}
