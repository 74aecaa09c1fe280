package game

import (
	"math"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/core"
)

// Mask is a 1-bit-per-pixel silhouette.
type Mask struct {
	w, h int
	bits []uint64
}

// NewMask creates an empty mask.
func NewMask(w, h int) *Mask {
	return &Mask{w: w, h: h, bits: make([]uint64, (w*h+63)/64)}
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.w }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.h }

// Bounds returns the mask rectangle at the origin.
func (m *Mask) Bounds() core.Rect {
	return core.NewRect(0, 0, m.w, m.h)
}

// Set marks pixel (x, y) as solid. Out of bounds is ignored.
func (m *Mask) Set(x, y int) {
	if x < 0 || x >= m.w || y < 0 || y >= m.h {
		return
	}
	i := y*m.w + x
	m.bits[i/64] |= 1 << (i % 64)
}

// Get reports whether pixel (x, y) is solid.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || x >= m.w || y < 0 || y >= m.h {
		return false
	}
	i := y*m.w + x
	return m.bits[i/64]&(1<<(i%64)) != 0
}

// Count returns the number of solid pixels.
func (m *Mask) Count() int {
	n := 0
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.Get(x, y) {
				n++
			}
		}
	}
	return n
}

// Overlap reports whether any solid pixel of m coincides with a solid pixel
// of other when other's top-left corner is placed at (dx, dy) in m's frame.
func (m *Mask) Overlap(other *Mask, dx, dy int) bool {
	region := m.Bounds().Intersection(other.Bounds().Translate(dx, dy))
	if region.Empty() {
		return false
	}
	for y := region.Y; y < region.Bottom(); y++ {
		for x := region.X; x < region.Right(); x++ {
			if m.Get(x, y) && other.Get(x-dx, y-dy) {
				return true
			}
		}
	}
	return false
}

// FlipVertical returns a mirrored copy of the mask.
func (m *Mask) FlipVertical() *Mask {
	out := NewMask(m.w, m.h)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.Get(x, y) {
				out.Set(x, m.h-1-y)
			}
		}
	}
	return out
}

// BirdMask builds the bird silhouette: an elliptical body filling most of the
// sprite with a beak on the right edge. Corners stay transparent.
func BirdMask(w, h int) *Mask {
	m := NewMask(w, h)

	cx, cy := float64(w)*0.42, float64(h)/2
	rx, ry := float64(w)*0.42, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nx := (float64(x) + 0.5 - cx) / rx
			ny := (float64(y) + 0.5 - cy) / ry
			if nx*nx+ny*ny <= 1 {
				m.Set(x, y)
			}
		}
	}

	// Beak: a wedge from the body to the right edge, narrowing outward
	beakStart := int(math.Round(cx + rx*0.8))
	half := float64(h) / 6
	for x := beakStart; x < w; x++ {
		frac := float64(x-beakStart) / math.Max(1, float64(w-beakStart))
		span := int(math.Round(half * (1 - frac)))
		mid := int(math.Round(cy)) + h/10
		for y := mid - span; y <= mid+span; y++ {
			m.Set(x, y)
		}
	}
	return m
}

// PipeMask builds the bottom pipe silhouette: a full-width lip of lipH rows
// at the top over a shaft inset by inset pixels on each side.
func PipeMask(w, h, lipH, inset int) *Mask {
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		x0, x1 := inset, w-inset
		if y < lipH {
			x0, x1 = 0, w
		}
		for x := x0; x < x1; x++ {
			m.Set(x, y)
		}
	}
	return m
}

// Sprites holds the collision masks for one game configuration.
type Sprites struct {
	Bird       *Mask
	PipeTop    *Mask
	PipeBottom *Mask
}

// NewSprites builds the masks for cfg.
func NewSprites(cfg config.GameConfig) *Sprites {
	bottom := PipeMask(cfg.Pipes.Width, cfg.Pipes.Height, cfg.Pipes.LipHeight, cfg.Pipes.LipInset)
	return &Sprites{
		Bird:       BirdMask(cfg.Bird.Width, cfg.Bird.Height),
		PipeTop:    bottom.FlipVertical(),
		PipeBottom: bottom,
	}
}

// Collides reports whether the bird silhouette overlaps either barrier of p.
func (s *Sprites) Collides(b *Bird, p *Pipe) bool {
	dx := int(math.Round(p.X - b.X))
	by := int(math.Round(b.Y))

	if s.Bird.Overlap(s.PipeTop, dx, p.TopY-by) {
		return true
	}
	return s.Bird.Overlap(s.PipeBottom, dx, p.BottomY-by)
}
