package game

import (
	"math/rand"

	"github.com/vovakirdan/flappy-evo/internal/config"
)

// PipeID identifies a pipe within a round.
type PipeID int

// Pipe is a gapped barrier scrolling left. The vertical fields are set once
// at spawn and never change, so GapBottom-GapTop always equals the gap size.
type Pipe struct {
	ID        PipeID
	X         float64
	GapCenter int
	GapTop    int // lower edge of the top barrier
	GapBottom int // upper edge of the bottom barrier
	TopY      int // y of the top barrier sprite
	BottomY   int // y of the bottom barrier sprite
	Width     int
	Passed    bool

	velocity float64
}

// NewPipe spawns a pipe at x with a gap center drawn uniformly from
// [GapCenterMin, GapCenterMax).
func NewPipe(id PipeID, x float64, cfg config.Pipes, rng *rand.Rand) *Pipe {
	center := cfg.GapCenterMin + rng.Intn(cfg.GapCenterMax-cfg.GapCenterMin)
	top := center - cfg.Gap/2
	bottom := top + cfg.Gap

	return &Pipe{
		ID:        id,
		X:         x,
		GapCenter: center,
		GapTop:    top,
		GapBottom: bottom,
		TopY:      top - cfg.Height,
		BottomY:   bottom,
		Width:     cfg.Width,
		velocity:  cfg.Velocity,
	}
}

// Advance scrolls the pipe left by one tick.
func (p *Pipe) Advance() {
	p.X -= p.velocity
}

// TrailingEdge returns the x of the pipe's right edge.
func (p *Pipe) TrailingEdge() float64 {
	return p.X + float64(p.Width)
}

// Gap returns the vertical opening size.
func (p *Pipe) Gap() int {
	return p.GapBottom - p.GapTop
}

// OffScreen reports whether the pipe has scrolled fully past the left edge.
func (p *Pipe) OffScreen() bool {
	return p.TrailingEdge() < 0
}
