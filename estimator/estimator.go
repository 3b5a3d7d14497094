package estimator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// SourceFactory returns the random source used for the cross-ring samples of
// one cell. Deriving a source per cell keeps parallel scans reproducible.
type SourceFactory func(cell Cell) rand.Source

// SeededSource derives a PCG stream per cell from a fixed seed.
func SeededSource(seed uint64) SourceFactory {
	return func(c Cell) rand.Source {
		return rand.NewPCG(seed, uint64(uint32(c.X))<<32|uint64(uint32(c.Z)))
	}
}

// Estimator scores grid cells against a fixed set of observations. It is not
// modified after New and is safe for concurrent use.
type Estimator struct {
	sigma        float64
	observations []Observation
	catalog      Catalog
	kernel       SnapKernel
	noise        distuv.Normal
	workers      int
	sources      SourceFactory

	// Same-ring integration grid, normalized to the offset span.
	offsetUnits []float64
	radiusUnits []float64
}

type Option func(*Estimator)

// WithWorkers sets the number of scan workers (default runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSeed makes the closest-candidate sampling deterministic.
func WithSeed(seed uint64) Option {
	return func(e *Estimator) { e.sources = SeededSource(seed) }
}

// WithSourceFactory injects the per-cell random source.
func WithSourceFactory(f SourceFactory) Option {
	return func(e *Estimator) {
		if f != nil {
			e.sources = f
		}
	}
}

// WithCatalog replaces the ring layout.
func WithCatalog(c Catalog) Option {
	return func(e *Estimator) { e.catalog = c }
}

// New builds an estimator for one set of observations. sigma is the bearing
// noise standard deviation in degrees. The observations are copied.
func New(sigma float64, observations []Observation, opts ...Option) (*Estimator, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("sigma must be a positive finite number, got %v", sigma)
	}
	e := &Estimator{
		sigma:        sigma,
		observations: append([]Observation(nil), observations...),
		catalog:      DefaultCatalog,
		kernel:       DefaultSnapKernel,
		noise:        distuv.Normal{Mu: 0, Sigma: sigma},
		workers:      runtime.NumCPU(),
		sources:      SeededSource(rand.Uint64()),
		offsetUnits:  floats.Span(make([]float64, SnapOffsetSamples), -1, 1),
		radiusUnits:  floats.Span(make([]float64, SnapRadiusSamples), 0, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return e, nil
}

func (e *Estimator) Sigma() float64   { return e.sigma }
func (e *Estimator) Catalog() Catalog { return e.catalog }

func (e *Estimator) Observations() []Observation {
	return append([]Observation(nil), e.observations...)
}

// Prior returns the ring-structure prior density of a cell.
func (e *Estimator) Prior(cellX, cellZ int) float64 {
	d := math.Hypot(CellToWorld(cellX), CellToWorld(cellZ))
	ring, ok := e.catalog.RingFor(d)
	if !ok {
		return PriorFloor
	}
	return float64(ring.Count) / math.Max(1, ring.approxCells())
}

// Likelihood returns the joint Gaussian bearing likelihood of all observations
// pointing at the cell centre. With no observations it is 1.
func (e *Estimator) Likelihood(cellX, cellZ int) float64 {
	if len(e.observations) == 0 {
		return 1.0
	}
	cx, cz := CellToWorld(cellX), CellToWorld(cellZ)
	logSum := 0.0
	for _, o := range e.observations {
		diff := WrapDegrees(o.Yaw - Bearing(o.X, o.Z, cx, cz))
		logSum += e.noise.LogProb(diff)
	}
	return math.Exp(logSum)
}

// ClosestLikelihood approximates the probability that a candidate at polar
// (r, phi) in ring is the member of its symmetric set closest to the observer
// at (ox, oz). Competitors in the same ring are integrated over the snap
// kernel; other rings are sampled from src.
func (e *Estimator) ClosestLikelihood(r, phi float64, ring Ring, ox, oz float64, src rand.Source) float64 {
	prob := 1.0
	for _, other := range e.catalog {
		if other == ring {
			prob *= e.sameRingFactor(r, phi, ring, ox, oz)
			continue
		}
		angle := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}
		radius := distuv.Uniform{Min: other.Inner, Max: other.Outer, Src: src}
		for s := 0; s < CrossRingSamples; s++ {
			prob *= ProbCloser(r, phi, radius.Rand(), angle.Rand(), ox, oz, other)
		}
	}
	return prob
}

func (e *Estimator) sameRingFactor(r, phi float64, ring Ring, ox, oz float64) float64 {
	maxDelta := e.kernel.MaxDelta(ring)
	prob := 1.0
	for k := 1; k < ring.Count; k++ {
		base := phi + float64(k)*ring.Spacing()
		var sum, wsum float64
		for _, u := range e.offsetUnits {
			offset := u * maxDelta
			w := e.kernel.Weight(offset, ring)
			if w == 0 {
				continue
			}
			for _, v := range e.radiusUnits {
				rl := ring.Inner + v*ring.Width()
				sum += w * ProbCloser(r, phi, rl, base+offset, ox, oz, ring)
				wsum += w
			}
		}
		if wsum > 0 {
			prob *= sum / wsum
		}
	}
	return prob
}
