// Package core provides fundamental types and utilities shared by the game,
// the training harness and the terminal platform. It has no external
// dependencies (especially no Bubble Tea) to keep simulation logic pure and testable.
package core

// Rect is an axis-aligned box in integer coordinates, right and bottom
// edges exclusive. Masks clip overlap tests with it and the renderer
// projects playfield boxes into screen cells.
type Rect struct {
	X, Y int
	W, H int
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Intersection returns the overlap of two rectangles. Disjoint or empty
// inputs yield an empty rectangle.
func (r Rect) Intersection(other Rect) Rect {
	if r.Empty() || other.Empty() {
		return Rect{}
	}
	x0, y0 := max(r.X, other.X), max(r.Y, other.Y)
	x1, y1 := min(r.Right(), other.Right()), min(r.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Clip returns r limited to a w x h area anchored at the origin.
func (r Rect) Clip(w, h int) Rect {
	return r.Intersection(Rect{W: w, H: h})
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}
