package estimator

import (
	"fmt"
	"math"
)

// Ring is one annulus of candidate positions around the origin.
type Ring struct {
	Inner float64
	Outer float64
	Count int
	Index int
}

// Width returns the radial span of the ring.
func (r Ring) Width() float64 { return r.Outer - r.Inner }

// AverageRadius returns the midpoint radius.
func (r Ring) AverageRadius() float64 { return (r.Inner + r.Outer) / 2.0 }

// Contains reports whether d lies in [Inner, Outer].
func (r Ring) Contains(d float64) bool { return d >= r.Inner && d <= r.Outer }

// Spacing is the angular distance between neighbouring candidates.
func (r Ring) Spacing() float64 { return 2.0 * math.Pi / float64(r.Count) }

// approxCells estimates how many grid cells the annulus covers.
func (r Ring) approxCells() float64 {
	return 2.0 * math.Pi * r.AverageRadius() * r.Width() / CellArea
}

// Catalog is an ordered list of rings.
type Catalog []Ring

// RingFor returns the first ring containing distance d.
func (c Catalog) RingFor(d float64) (Ring, bool) {
	for _, r := range c {
		if r.Contains(d) {
			return r, true
		}
	}
	return Ring{}, false
}

// Validate checks the catalog is ordered and non-overlapping. The default
// catalog satisfies this by construction; RingFor does not depend on it.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("empty ring catalog")
	}
	for i, r := range c {
		if r.Inner <= 0 || r.Outer <= r.Inner {
			return fmt.Errorf("ring %d: invalid bounds [%g, %g]", i, r.Inner, r.Outer)
		}
		if r.Count <= 0 {
			return fmt.Errorf("ring %d: count must be positive, got %d", i, r.Count)
		}
		if i > 0 && r.Inner <= c[i-1].Outer {
			return fmt.Errorf("ring %d overlaps ring %d", i, i-1)
		}
	}
	return nil
}

// Bounds returns the innermost and outermost radii.
func (c Catalog) Bounds() (float64, float64) {
	if len(c) == 0 {
		return 0, 0
	}
	lo, hi := c[0].Inner, c[0].Outer
	for _, r := range c[1:] {
		lo = math.Min(lo, r.Inner)
		hi = math.Max(hi, r.Outer)
	}
	return lo, hi
}
