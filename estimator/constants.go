package estimator

import "math"

// Model constants. These are part of the model, not runtime tuning.
const (
	SnapAlpha = 5.5
	SnapBeta  = 5.5

	CellSize   = 16
	CellCenter = 8
	CellArea   = CellSize * CellSize

	// Fast reject band: the innermost and outermost ring bounds.
	MinSearchDistance = 1280.0
	MaxSearchDistance = 24320.0

	PriorFloor      = 1e-20
	LikelihoodFloor = 1e-300

	// Closest-candidate integration grid.
	SnapOffsetSamples = 20
	SnapRadiusSamples = 10
	CrossRingSamples  = 5

	// Below this |sin| the observer is treated as collinear with the ray.
	DegenerateSin = 1e-10
)

// MaxSnapDistance is how far a candidate may sit from its ideal ring position.
const MaxSnapDistance = 15 * math.Sqrt2

// DefaultCatalog is the fixed 8-ring layout.
var DefaultCatalog = Catalog{
	{Inner: 1280, Outer: 2816, Count: 3, Index: 0},
	{Inner: 4352, Outer: 5888, Count: 6, Index: 1},
	{Inner: 7424, Outer: 8960, Count: 10, Index: 2},
	{Inner: 10496, Outer: 12032, Count: 15, Index: 3},
	{Inner: 13568, Outer: 15104, Count: 21, Index: 4},
	{Inner: 16640, Outer: 18176, Count: 28, Index: 5},
	{Inner: 19712, Outer: 21248, Count: 36, Index: 6},
	{Inner: 22784, Outer: 24320, Count: 9, Index: 7},
}

// Defaults used by the CLIs and config when nothing is set.
const (
	DefaultSigma          = 0.1
	DefaultSearchRadius   = 1600
	DefaultGridResolution = 4
)
