package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, sigma float64, obs []Observation, opts ...Option) *Estimator {
	t.Helper()
	e, err := New(sigma, obs, opts...)
	require.NoError(t, err)
	return e
}

func TestNewRejectsBadSigma(t *testing.T) {
	for _, s := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := New(s, nil)
		assert.Error(t, err, "sigma %v", s)
	}
}

func TestNewCopiesObservations(t *testing.T) {
	obs := []Observation{{X: 1, Z: 2, Yaw: 3}}
	e := mustNew(t, 1, obs)
	obs[0].X = 99
	assert.Equal(t, 1.0, e.Observations()[0].X)
}

func TestPriorFloorOutsideRings(t *testing.T) {
	e := mustNew(t, 1, nil)
	// Centres at (8, 8), (8, 3208) and (8, 40008) are in no ring.
	assert.Equal(t, PriorFloor, e.Prior(0, 0))
	assert.Equal(t, PriorFloor, e.Prior(0, 200))
	assert.Equal(t, PriorFloor, e.Prior(0, 2500))
}

func TestPriorInsideRing(t *testing.T) {
	e := mustNew(t, 1, nil)
	ring := DefaultCatalog[0]
	got := e.Prior(0, 124)
	want := float64(ring.Count) / (2 * math.Pi * ring.AverageRadius() * ring.Width() / 256)
	assert.Greater(t, got, 0.0)
	assert.InEpsilon(t, want, got, 1e-12)
}

func TestLikelihoodWithoutObservations(t *testing.T) {
	e := mustNew(t, 1, nil)
	assert.Equal(t, 1.0, e.Likelihood(0, 124))
}

func TestLikelihoodGaussian(t *testing.T) {
	sigma := 2.0
	yaw := Bearing(0, 0, CellToWorld(10), CellToWorld(124))
	e := mustNew(t, sigma, []Observation{{X: 0, Y: 64, Z: 0, Yaw: yaw}})

	peak := 1 / (sigma * math.Sqrt(2*math.Pi))
	assert.InEpsilon(t, peak, e.Likelihood(10, 124), 1e-9)

	// Three sigma off the observed bearing.
	off := mustNew(t, sigma, []Observation{{X: 0, Y: 64, Z: 0, Yaw: yaw + 3*sigma}})
	assert.InEpsilon(t, peak*math.Exp(-4.5), off.Likelihood(10, 124), 1e-9)
}

func TestLikelihoodWrapsAcrossSouth(t *testing.T) {
	// Target due north of the observer: true bearing is +-180.
	e := mustNew(t, 1, []Observation{{X: 8, Z: 0, Yaw: 179.5}})
	f := mustNew(t, 1, []Observation{{X: 8, Z: 0, Yaw: -179.5}})
	assert.InEpsilon(t, e.Likelihood(0, -124), f.Likelihood(0, -124), 1e-12)
	assert.Greater(t, e.Likelihood(0, -124), 0.3)
}

func TestClosestLikelihoodPrefersNearSide(t *testing.T) {
	e := mustNew(t, 1, nil, WithSeed(7))
	ring := DefaultCatalog[0]
	src := SeededSource(7)

	near := e.ClosestLikelihood(2000, 0, ring, 0, 1500, src(Cell{X: 0, Z: 124}))
	far := e.ClosestLikelihood(2000, math.Pi, ring, 0, 1500, src(Cell{X: 0, Z: -125}))

	assert.GreaterOrEqual(t, near, 0.0)
	assert.LessOrEqual(t, near, 1.0)
	assert.GreaterOrEqual(t, far, 0.0)
	assert.Greater(t, near, far)
	assert.Less(t, far, 0.01)
}

func TestClosestLikelihoodSeeded(t *testing.T) {
	e := mustNew(t, 1, nil)
	ring := DefaultCatalog[3]
	src := SeededSource(42)
	a := e.ClosestLikelihood(11000, 1.2, ring, 300, -200, src(Cell{X: 3, Z: 4}))
	b := e.ClosestLikelihood(11000, 1.2, ring, 300, -200, src(Cell{X: 3, Z: 4}))
	assert.Equal(t, a, b)
}
