package estimator

import (
	"fmt"
	"math"
)

// Observation is one bearing taken from a known world position.
// Yaw is in degrees, 0 = +z ("south"), increasing clockwise. Pitch is carried
// through but not used by the model.
type Observation struct {
	X, Y, Z float64
	Yaw     float64
	Pitch   float64
}

func (o Observation) String() string {
	return fmt.Sprintf("X: %g, Y: %g, Z: %g\nYaw: %g, Pitch: %g", o.X, o.Y, o.Z, o.Yaw, o.Pitch)
}

// Prediction is the best estimate and its normalized posterior mass.
type Prediction struct {
	X          float64 `json:"x"`
	Z          float64 `json:"z"`
	Confidence float64 `json:"confidence"`
}

// Percent returns the confidence as a whole percentage.
func (p Prediction) Percent() int {
	return int(math.Round(clamp(p.Confidence, 0, 1) * 100.0))
}

func (p Prediction) String() string {
	if p.Confidence > 0 {
		return fmt.Sprintf("Prediction:\nX: %g, Z: %g\nConfidence: %d%%", p.X, p.Z, p.Percent())
	}
	return fmt.Sprintf("Prediction:\nX: %g, Z: %g", p.X, p.Z)
}

// Cell addresses one grid cell in cell units.
type Cell struct {
	X, Z int
}

// Center returns the world coordinates of the cell centre.
func (c Cell) Center() (float64, float64) {
	return CellToWorld(c.X), CellToWorld(c.Z)
}
