// Package vmath provides the float64 vector helpers and the seedable random
// source shared by the simulation engine.
package vmath

import "math"

// Normalize2D returns the unit vector of (x, y), zero-safe
func Normalize2D(x, y float64) (nx, ny float64) {
	mag := math.Hypot(x, y)
	if mag == 0 {
		return 0, 0
	}
	return x / mag, y / mag
}

// Magnitude returns vector length
func Magnitude(x, y float64) float64 {
	return math.Hypot(x, y)
}

// Distance returns the Euclidean distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// DistanceSq returns squared distance without the sqrt
func DistanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
