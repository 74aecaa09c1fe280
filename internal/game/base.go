package game

import "github.com/vovakirdan/flappy-evo/internal/config"

// Base is the ground: two tiles scrolling left, one always directly after
// the other.
type Base struct {
	Y      float64
	X1, X2 float64
	W      float64

	velocity float64
}

// NewBase creates the ground at height y.
func NewBase(y float64, cfg config.Terrain) *Base {
	w := float64(cfg.TileWidth)
	return &Base{
		Y:        y,
		X1:       0,
		X2:       w,
		W:        w,
		velocity: cfg.Velocity,
	}
}

// Advance scrolls both tiles and wraps whichever left the screen.
func (b *Base) Advance() {
	b.X1 -= b.velocity
	b.X2 -= b.velocity

	if b.X1+b.W < 0 {
		b.X1 = b.X2 + b.W
	}
	if b.X2+b.W < 0 {
		b.X2 = b.X1 + b.W
	}
}
