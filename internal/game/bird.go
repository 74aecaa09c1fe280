// Package game implements the flappy bird simulation: the bird, the scrolling
// pipes and terrain, pixel-mask collision and the per-tick round loop.
// It is pure logic with no terminal or logging dependencies.
package game

import (
	"math"

	"github.com/vovakirdan/flappy-evo/internal/config"
)

// BirdID identifies a bird for the lifetime of a round. IDs are assigned in
// the order policies are handed to NewRound and never reused.
type BirdID int

// Bird is the controlled entity. X is fixed, Y grows downward.
type Bird struct {
	ID        BirdID
	X, Y      float64
	Vel       float64
	Tilt      float64 // degrees, cosmetic only
	TickCount int     // ticks since the last jump
	Height    float64 // Y at the last jump, reference for tilt
	Credit    float64
	Passes    int // pipes passed while this bird was alive

	phys config.Physics
	dead bool
}

// NewBird creates a bird at the configured start position.
func NewBird(id BirdID, spec config.BirdSpec, phys config.Physics) *Bird {
	return &Bird{
		ID:     id,
		X:      spec.StartX,
		Y:      spec.StartY,
		Height: spec.StartY,
		phys:   phys,
	}
}

// Jump gives the bird an upward impulse.
func (b *Bird) Jump() {
	b.Vel = b.phys.JumpImpulse
	b.TickCount = 0
	b.Height = b.Y
}

// Advance moves the bird by one tick and returns the applied displacement.
func (b *Bird) Advance() float64 {
	b.TickCount++

	d := Displacement(b.Vel, b.phys.Gravity, b.phys.TerminalVelocity, b.TickCount)
	if d < 0 {
		d -= b.phys.AscentBias
	}
	b.Y += d

	if d < 0 || b.Y < b.Height+b.phys.TiltMargin {
		if b.Tilt < b.phys.MaxRotation {
			b.Tilt = b.phys.MaxRotation
		}
	} else if b.Tilt > b.phys.MinTilt {
		b.Tilt = math.Max(b.Tilt-b.phys.RotationVelocity, b.phys.MinTilt)
	}
	return d
}

// Displacement is the projectile displacement t ticks after a jump with
// initial velocity vel, clamped to a magnitude of at most limit.
func Displacement(vel, gravity, limit float64, t int) float64 {
	tf := float64(t)
	d := vel*tf + 0.5*gravity*tf*tf
	if math.Abs(d) > limit {
		d = math.Copysign(limit, d)
	}
	return d
}
