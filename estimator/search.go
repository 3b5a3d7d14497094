package estimator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// SearchParams bounds one grid search. SearchRadius and GridResolution are in
// cell units.
type SearchParams struct {
	SearchRadius   int
	GridResolution int
	UseClosest     bool
}

func (p SearchParams) Validate() error {
	if p.SearchRadius <= 0 {
		return fmt.Errorf("search radius must be positive, got %d", p.SearchRadius)
	}
	if p.GridResolution <= 0 {
		return fmt.Errorf("grid resolution must be positive, got %d", p.GridResolution)
	}
	return nil
}

// Posterior is the outcome of a scan. Cells is only populated by Scan.
type Posterior struct {
	Cells     map[Cell]float64
	Best      Cell
	BestMass  float64
	Total     float64
	Evaluated int
	Stored    int
}

// Prediction normalizes the best cell against the total mass.
func (p *Posterior) Prediction() (Prediction, bool) {
	if p == nil || p.Stored == 0 || !(p.Total > 0) {
		return Prediction{}, false
	}
	x, z := p.Best.Center()
	return Prediction{X: x, Z: z, Confidence: clamp(p.BestMass/p.Total, 0, 1)}, true
}

type cellMass struct {
	cell Cell
	mass float64
}

type rowResult struct {
	cells     []cellMass
	best      Cell
	bestMass  float64
	stored    int
	total     float64
	evaluated int
}

// Find runs the grid search and returns the best cell, or false when there are
// no observations or no cell has positive posterior mass. Invalid search
// parameters also yield false; use FindContext to see the error.
func (e *Estimator) Find(searchRadius, gridResolution int, useClosest bool) (Prediction, bool) {
	pred, ok, _ := e.FindContext(context.Background(), SearchParams{
		SearchRadius:   searchRadius,
		GridResolution: gridResolution,
		UseClosest:     useClosest,
	})
	return pred, ok
}

// FindContext is Find with cancellation. The only errors are invalid
// parameters and the context's error.
func (e *Estimator) FindContext(ctx context.Context, p SearchParams) (Prediction, bool, error) {
	if len(e.observations) == 0 {
		return Prediction{}, false, nil
	}
	post, err := e.scan(ctx, p, false)
	if err != nil {
		return Prediction{}, false, err
	}
	pred, ok := post.Prediction()
	return pred, ok, nil
}

// Scan runs the grid search and keeps every stored cell.
func (e *Estimator) Scan(ctx context.Context, p SearchParams) (*Posterior, error) {
	if len(e.observations) == 0 {
		return &Posterior{Cells: map[Cell]float64{}}, nil
	}
	return e.scan(ctx, p, true)
}

// scan walks cells row-major (ascending X, then ascending Z). Rows are spread
// over the workers; each row lands in its own slot and the reduction walks the
// slots in row order, so ties go to the first cell in scan order no matter how
// many workers ran.
func (e *Estimator) scan(ctx context.Context, p SearchParams, keep bool) (*Posterior, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	var xs []int
	for x := -p.SearchRadius; x < p.SearchRadius; x += p.GridResolution {
		xs = append(xs, x)
	}
	rows := make([]rowResult, len(xs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, x := range xs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = e.scanRow(x, p, keep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	post := &Posterior{}
	if keep {
		post.Cells = make(map[Cell]float64)
	}
	for _, row := range rows {
		post.Evaluated += row.evaluated
		post.Total += row.total
		if row.stored > 0 && (post.Stored == 0 || row.bestMass > post.BestMass) {
			post.Best = row.best
			post.BestMass = row.bestMass
		}
		post.Stored += row.stored
		for _, cm := range row.cells {
			post.Cells[cm.cell] = cm.mass
		}
	}

	Logf("scan: %s cells evaluated, %s stored, %d workers, %v",
		humanize.Comma(int64(post.Evaluated)), humanize.Comma(int64(post.Stored)),
		e.workers, time.Since(start).Round(time.Millisecond))
	return post, nil
}

func (e *Estimator) scanRow(x int, p SearchParams, keep bool) rowResult {
	var row rowResult
	for z := -p.SearchRadius; z < p.SearchRadius; z += p.GridResolution {
		cell := Cell{X: x, Z: z}
		mass, evaluated := e.posterior(cell, p.UseClosest)
		if evaluated {
			row.evaluated++
		}
		if !(mass > 0) {
			continue
		}
		if row.stored == 0 || mass > row.bestMass {
			row.best = cell
			row.bestMass = mass
		}
		row.stored++
		row.total += mass
		if keep {
			row.cells = append(row.cells, cellMass{cell: cell, mass: mass})
		}
	}
	return row
}

// posterior returns the unnormalized posterior of a cell and whether the cell
// passed the fast distance reject.
func (e *Estimator) posterior(cell Cell, useClosest bool) (float64, bool) {
	wx, wz := cell.Center()
	d := math.Hypot(wx, wz)
	if d < MinSearchDistance || d > MaxSearchDistance {
		return 0, false
	}
	prior := e.Prior(cell.X, cell.Z)
	if prior < PriorFloor {
		return 0, true
	}
	like := e.Likelihood(cell.X, cell.Z)
	if like < LikelihoodFloor {
		return 0, true
	}
	post := prior * like
	if useClosest && len(e.observations) > 0 {
		if ring, ok := e.catalog.RingFor(d); ok {
			ref := e.observations[0]
			r, phi := toPolar(wx, wz)
			post *= e.ClosestLikelihood(r, phi, ring, ref.X, ref.Z, e.sources(cell))
		}
	}
	return post, true
}
