package estimator

import "math"

// clamp returns x within [min, max].
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }
func rad2deg(r float64) float64 { return r * 180.0 / math.Pi }

// WrapDegrees folds an angle difference into [-180, 180].
func WrapDegrees(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d > 180.0 {
		d -= 360.0
	} else if d < -180.0 {
		d += 360.0
	}
	return d
}

// CellToWorld returns the world coordinate of a cell centre.
func CellToWorld(cell int) float64 {
	return float64(cell*CellSize + CellCenter)
}

// Bearing returns the world bearing in degrees from (fromX, fromZ) to (toX, toZ):
// 0 along +z, increasing clockwise.
func Bearing(fromX, fromZ, toX, toZ float64) float64 {
	return rad2deg(math.Atan2(-(toX - fromX), toZ - fromZ))
}

// toCartesian maps polar (r, phi) about the origin to world (x, z).
func toCartesian(r, phi float64) (float64, float64) {
	return r * math.Sin(phi), r * math.Cos(phi)
}

// toPolar is the inverse of toCartesian.
func toPolar(x, z float64) (float64, float64) {
	return math.Hypot(x, z), math.Atan2(x, z)
}
