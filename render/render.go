// Package render draws scan results as PNG plots.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"endfind/estimator"
)

const (
	heatLevels   = 64
	circleSteps  = 720
	plotSize     = 10 * vg.Inch
	viewPadding  = 0.15
	minViewWidth = 256.0
)

var (
	ringColor    = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	bearingColor = color.RGBA{R: 30, G: 90, B: 200, A: 255}
	bestColor    = color.RGBA{R: 0, G: 160, B: 60, A: 255}
)

// ErrEmpty is returned for a posterior without stored cells.
var ErrEmpty = errors.New("render: posterior has no cells")

// Posterior plots the stored cells of p coloured by mass, the catalog's ring
// edges, each observer's bearing and the best cell, and saves it to path.
// The view is fitted to the stored cells.
func Posterior(p *estimator.Posterior, obs []estimator.Observation, catalog estimator.Catalog, path string) error {
	if p == nil || len(p.Cells) == 0 {
		return ErrEmpty
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Posterior (%d cells, %d observations)", len(p.Cells), len(obs))
	pl.X.Label.Text = "x"
	pl.Y.Label.Text = "z"
	pl.Add(plotter.NewGrid())

	cells, err := cellScatter(p)
	if err != nil {
		return err
	}
	pl.Add(cells)

	for _, r := range catalog {
		for _, radius := range []float64{r.Inner, r.Outer} {
			l, err := plotter.NewLine(circle(radius))
			if err != nil {
				return err
			}
			l.Color = ringColor
			l.Width = vg.Points(0.5)
			l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			pl.Add(l)
		}
	}

	_, reach := catalog.Bounds()
	for i, o := range obs {
		l, err := plotter.NewLine(bearing(o, reach))
		if err != nil {
			return err
		}
		l.Color = bearingColor
		l.Width = vg.Points(1)
		pl.Add(l)
		if i == 0 {
			pl.Legend.Add("bearing", l)
		}
	}

	if pred, ok := p.Prediction(); ok {
		s, err := plotter.NewScatter(plotter.XYs{{X: pred.X, Y: pred.Z}})
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = bestColor
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		s.GlyphStyle.Radius = vg.Points(6)
		pl.Add(s)
		pl.Legend.Add(fmt.Sprintf("best %.0f, %.0f (%d%%)", pred.X, pred.Z, pred.Percent()), s)
	}

	fitView(pl, p)
	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10

	if err := pl.Save(plotSize, plotSize, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	return nil
}

// cellScatter maps log mass onto a heat palette, drawing heavier cells last.
func cellScatter(p *estimator.Posterior) (*plotter.Scatter, error) {
	type point struct {
		x, z, logMass float64
	}
	pts := make([]point, 0, len(p.Cells))
	lo, hi := math.Inf(1), math.Inf(-1)
	for c, m := range p.Cells {
		x, z := c.Center()
		lm := math.Log(m)
		pts = append(pts, point{x, z, lm})
		lo = math.Min(lo, lm)
		hi = math.Max(hi, lm)
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].logMass < pts[j].logMass })

	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.x, Y: pt.z}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}

	colors := palette.Heat(heatLevels, 1).Colors()
	span := hi - lo
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		level := heatLevels - 1
		if span > 0 {
			level = int((pts[i].logMass - lo) / span * float64(heatLevels-1))
		}
		return draw.GlyphStyle{
			Color:  colors[level],
			Radius: vg.Points(1.5),
			Shape:  draw.BoxGlyph{},
		}
	}
	return s, nil
}

func circle(radius float64) plotter.XYs {
	pts := make(plotter.XYs, circleSteps+1)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSteps
		pts[i] = plotter.XY{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return pts
}

// bearing is the ray an observer looks along, in world x/z.
func bearing(o estimator.Observation, length float64) plotter.XYs {
	yaw := o.Yaw * math.Pi / 180
	return plotter.XYs{
		{X: o.X, Y: o.Z},
		{X: o.X - length*math.Sin(yaw), Y: o.Z + length*math.Cos(yaw)},
	}
}

func fitView(pl *plot.Plot, p *estimator.Posterior) {
	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for c := range p.Cells {
		x, z := c.Center()
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minZ, maxZ = math.Min(minZ, z), math.Max(maxZ, z)
	}
	w := math.Max(math.Max(maxX-minX, maxZ-minZ), minViewWidth) * (1 + 2*viewPadding)
	cx, cz := (minX+maxX)/2, (minZ+maxZ)/2
	pl.X.Min, pl.X.Max = cx-w/2, cx+w/2
	pl.Y.Min, pl.Y.Max = cz-w/2, cz+w/2
}
