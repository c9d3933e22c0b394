package domain

// Point is a pointer position in host coordinates.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in host coordinates.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// ContainsX reports whether x falls inside the horizontal extent [X, X+W).
func (r Rect) ContainsX(x float64) bool {
	return x >= r.X && x < r.X+r.W
}

// Contains reports whether p falls inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return r.ContainsX(p.X) && p.Y >= r.Y && p.Y < r.Y+r.H
}

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 {
	return r.Y + r.H/2
}

// DistanceX returns how far x lies outside the horizontal extent; zero when inside.
func (r Rect) DistanceX(x float64) float64 {
	switch {
	case x < r.X:
		return r.X - x
	case x >= r.X+r.W:
		return x - (r.X + r.W)
	default:
		return 0
	}
}

// ManhattanDistance returns |dx|+|dy| between two points.
func ManhattanDistance(a, b Point) float64 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
