package render

import (
	"math"
)

// Rect is an axis-aligned hit region in logical pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains includes the edges.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RadarSector maps a pointer offset from the radar center to the nearest of
// n axes, the first pointing straight up. Offsets closer than a quarter of the
// radius or beyond 110% of it hit nothing.
func RadarSector(dx, dy, radius float64, n int) (int, bool) {
	if n <= 0 || radius <= 0 || !finite(dx, dy, radius) {
		return 0, false
	}
	dist := math.Hypot(dx, dy)
	if dist < radius*0.25 || dist > radius*1.1 {
		return 0, false
	}
	step := 2 * math.Pi / float64(n)
	ang := math.Atan2(dy, dx) + math.Pi/2
	if ang < 0 {
		ang += 2 * math.Pi
	}
	return int(math.Round(ang/step)) % n, true
}

// NearestIndex maps x inside the band [left, left+width] to the closest of n
// evenly spaced points. A single point sits alone at index 0.
func NearestIndex(x, left, width float64, n int) (int, bool) {
	if n <= 0 || !finite(x, left, width) || x < left || x > left+width {
		return 0, false
	}
	if n == 1 || width <= 0 {
		return 0, true
	}
	step := width / float64(n-1)
	idx := int(math.Round((x - left) / step))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx, true
}

// GroupAt returns the index of the first rect containing (x, y), or -1.
func GroupAt(groups []Rect, x, y float64) int {
	if !finite(x, y) {
		return -1
	}
	for i, g := range groups {
		if g.Contains(x, y) {
			return i
		}
	}
	return -1
}
