package estimator

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SetLogger(nil)
}

// singleSighting looks from (0, 64, 0) straight at the centre of cell (0, 124),
// which is (8, 1992): about 1992 out along +z, inside ring 0.
func singleSighting() []Observation {
	yaw := Bearing(0, 0, CellToWorld(0), CellToWorld(124))
	return []Observation{{X: 0, Y: 64, Z: 0, Yaw: yaw}}
}

func TestFindWithoutObservations(t *testing.T) {
	e := mustNew(t, 1, nil)
	_, ok := e.Find(200, 1, false)
	assert.False(t, ok)
	_, ok = e.Find(200, 4, true)
	assert.False(t, ok)
}

func TestFindRejectsBadParams(t *testing.T) {
	e := mustNew(t, 1, singleSighting())
	_, ok := e.Find(200, 0, false)
	assert.False(t, ok)
	_, ok = e.Find(0, 1, false)
	assert.False(t, ok)

	_, _, err := e.FindContext(context.Background(), SearchParams{SearchRadius: 10, GridResolution: -1})
	assert.Error(t, err)
}

func TestFindRecoversSightedCandidate(t *testing.T) {
	e := mustNew(t, 1.0, singleSighting())

	pred, ok := e.Find(200, 1, false)
	require.True(t, ok)
	assert.InDelta(t, 8.0, pred.X, CellSize)
	assert.InDelta(t, 1992.0, pred.Z, CellSize)
	assert.Greater(t, pred.Confidence, 0.0)
	assert.LessOrEqual(t, pred.Confidence, 1.0)

	post, err := e.Scan(context.Background(), SearchParams{SearchRadius: 200, GridResolution: 1})
	require.NoError(t, err)

	// The two other symmetric candidates of ring 0 sit 120 degrees away.
	r, phi := toPolar(8, 1992)
	for _, k := range []float64{1, 2} {
		x, z := toCartesian(r, phi+k*2*math.Pi/3)
		other := Cell{X: int(math.Floor(x / CellSize)), Z: int(math.Floor(z / CellSize))}
		assert.Less(t, post.Cells[other], post.BestMass, "candidate at %v", other)
	}
}

func TestScanNormalization(t *testing.T) {
	obs := append(singleSighting(), Observation{X: 400, Y: 70, Z: 100, Yaw: Bearing(400, 100, 8, 1992)})
	e := mustNew(t, 1.0, obs)

	post, err := e.Scan(context.Background(), SearchParams{SearchRadius: 200, GridResolution: 2})
	require.NoError(t, err)
	require.NotEmpty(t, post.Cells)
	assert.Equal(t, len(post.Cells), post.Stored)

	sum := 0.0
	best := 0.0
	for _, m := range post.Cells {
		assert.Greater(t, m, 0.0)
		sum += m
		best = math.Max(best, m)
	}
	assert.Equal(t, best, post.BestMass)
	assert.InEpsilon(t, sum, post.Total, 1e-9)

	pred, ok := post.Prediction()
	require.True(t, ok)
	assert.InEpsilon(t, best/sum, pred.Confidence, 1e-9)
	assert.GreaterOrEqual(t, pred.Confidence, 0.0)
	assert.LessOrEqual(t, pred.Confidence, 1.0)

	found, ok := e.Find(200, 2, false)
	require.True(t, ok)
	assert.Equal(t, pred, found)
}

func TestFindIsIdempotentAcrossWorkers(t *testing.T) {
	obs := singleSighting()
	one := mustNew(t, 1.0, obs, WithWorkers(1))
	many := mustNew(t, 1.0, obs, WithWorkers(7))

	a, ok := one.Find(200, 1, false)
	require.True(t, ok)
	b, _ := one.Find(200, 1, false)
	c, _ := many.Find(200, 1, false)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestFindTieBreaksOnScanOrder(t *testing.T) {
	// Looking due +z from the origin, cells x=-1 and x=0 (centres -8 and 8)
	// mirror each other and score identically. The outermost pair of the single
	// ring wins, and x=-1 comes first in the scan.
	catalog := Catalog{{Inner: 1280, Outer: 2816, Count: 3, Index: 0}}
	e := mustNew(t, 1.0, []Observation{{X: 0, Z: 0, Yaw: 0}}, WithCatalog(catalog), WithWorkers(4))

	assert.Equal(t, e.Prior(-1, 175)*e.Likelihood(-1, 175), e.Prior(0, 175)*e.Likelihood(0, 175))

	pred, ok := e.Find(200, 1, false)
	require.True(t, ok)
	assert.Equal(t, -8.0, pred.X)
	assert.Equal(t, 2808.0, pred.Z)
}

func TestFindWithClosestConstraintSeeded(t *testing.T) {
	obs := singleSighting()
	a := mustNew(t, 1.0, obs, WithSeed(11))
	b := mustNew(t, 1.0, obs, WithSeed(11), WithWorkers(3))

	p1, ok := a.Find(200, 4, true)
	require.True(t, ok)
	p2, ok := b.Find(200, 4, true)
	require.True(t, ok)
	assert.Equal(t, p1, p2)

	// Still on the sighted bearing, inside ring 0.
	d := math.Hypot(p1.X, p1.Z)
	assert.GreaterOrEqual(t, d, DefaultCatalog[0].Inner)
	assert.LessOrEqual(t, d, DefaultCatalog[0].Outer)
	assert.Less(t, math.Abs(WrapDegrees(obs[0].Yaw-Bearing(0, 0, p1.X, p1.Z))), 1.0)
	assert.Greater(t, p1.Confidence, 0.0)
	assert.LessOrEqual(t, p1.Confidence, 1.0)
}

func TestFindContextCancelled(t *testing.T) {
	e := mustNew(t, 1.0, singleSighting())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := e.FindContext(ctx, SearchParams{SearchRadius: 200, GridResolution: 1})
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictionString(t *testing.T) {
	p := Prediction{X: 8, Z: 1992, Confidence: 0.456}
	assert.Equal(t, "Prediction:\nX: 8, Z: 1992\nConfidence: 46%", p.String())

	p.Confidence = 0
	assert.Equal(t, "Prediction:\nX: 8, Z: 1992", p.String())
}
