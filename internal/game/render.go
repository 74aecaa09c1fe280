package game

import (
	"fmt"
	"math"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/core"
)

// Visual characters for rendering
const (
	BirdChar     = '█'
	PipeChar     = '█'
	LipChar      = '▓'
	GroundChar   = '▒'
	GroundAlt    = '░'
	GroundTop    = '═'
	GuideChar    = '·'
	groundStripe = 24 // playfield pixels per ground texture stripe
)

// RenderOptions toggles optional overlays.
type RenderOptions struct {
	Lines   bool // guide lines from each bird to the next gap
	Paused  bool
	Message string // centered banner, empty for none
}

// Render projects a snapshot onto the terminal screen. The playfield is
// scaled to fill dst.
func Render(snap Snapshot, cfg config.GameConfig, dst *core.Screen, opts RenderOptions) {
	dst.Clear()
	if dst.Width() == 0 || dst.Height() == 0 || snap.Width == 0 || snap.Height == 0 {
		return
	}

	v := viewport{
		sx: float64(dst.Width()) / float64(snap.Width),
		sy: float64(dst.Height()) / float64(snap.Height),
	}

	for _, p := range snap.Pipes {
		drawPipe(dst, v, p, cfg)
	}
	drawGround(dst, v, snap.Base)

	for _, b := range snap.Birds {
		if opts.Lines {
			if p, ok := nextPipeView(snap.Pipes, b.X); ok {
				bx, by := v.point(b.X+float64(cfg.Bird.Width)/2, b.Y+float64(cfg.Bird.Height)/2)
				px, _ := v.point(p.X+float64(p.Width)/2, 0)
				_, topY := v.point(0, float64(p.GapTop))
				_, botY := v.point(0, float64(p.GapBottom))
				dst.DrawLine(bx, by, px, topY, GuideChar, core.ColorRed)
				dst.DrawLine(bx, by, px, botY, GuideChar, core.ColorRed)
			}
		}
		drawBird(dst, v, b, cfg)
	}

	drawHUD(dst, snap)

	switch {
	case opts.Paused:
		dst.DrawTextCentered(dst.Height()/2, " PAUSED ")
	case opts.Message != "":
		dst.DrawTextCentered(dst.Height()/2, " "+opts.Message+" ")
	}
}

type viewport struct {
	sx, sy float64
}

func (v viewport) point(x, y float64) (int, int) {
	return int(math.Floor(x * v.sx)), int(math.Floor(y * v.sy))
}

// rect scales a playfield box, keeping at least one cell in each direction.
func (v viewport) rect(x, y, w, h float64) core.Rect {
	x0, y0 := v.point(x, y)
	x1, y1 := v.point(x+w, y+h)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return core.NewRect(x0, y0, x1-x0, y1-y0)
}

func drawPipe(dst *core.Screen, v viewport, p PipeView, cfg config.GameConfig) {
	w := float64(p.Width)
	lip := float64(cfg.Pipes.LipHeight)

	// Top barrier extends off-screen upward, bottom one down to the ground
	top := v.rect(p.X, 0, w, float64(p.GapTop))
	bottom := v.rect(p.X, float64(p.GapBottom), w, cfg.Playfield.FloorY-float64(p.GapBottom))
	if p.GapTop > 0 {
		dst.DrawRect(top, PipeChar, core.ColorGreen)
		dst.DrawRect(v.rect(p.X, float64(p.GapTop)-lip, w, lip), LipChar, core.ColorBrightGreen)
	}
	dst.DrawRect(bottom, PipeChar, core.ColorGreen)
	dst.DrawRect(v.rect(p.X, float64(p.GapBottom), w, lip), LipChar, core.ColorBrightGreen)
}

func drawGround(dst *core.Screen, v viewport, base BaseView) {
	_, top := v.point(0, base.Y)
	if top >= dst.Height() {
		top = dst.Height() - 1
	}
	dst.DrawHLine(0, top, dst.Width(), GroundTop, core.ColorBrown)

	// Stripes follow the first tile so the ground visibly scrolls
	for x := 0; x < dst.Width(); x++ {
		px := float64(x)/v.sx - base.X1
		stripe := int(math.Floor(px / groundStripe))
		r := GroundChar
		if stripe%2 != 0 {
			r = GroundAlt
		}
		for y := top + 1; y < dst.Height(); y++ {
			dst.SetColored(x, y, r, core.ColorBrown)
		}
	}
}

func drawBird(dst *core.Screen, v viewport, b BirdView, cfg config.GameConfig) {
	body := v.rect(b.X, b.Y, float64(cfg.Bird.Width), float64(cfg.Bird.Height))
	dst.DrawRect(body, BirdChar, core.ColorBrightYellow)

	// Beak shows the tilt
	beak := '→'
	switch {
	case b.Tilt > 0:
		beak = '↗'
	case b.Tilt <= -45:
		beak = '↘'
	}
	_, cy := body.Center()
	dst.SetColored(body.Right()-1, cy, beak, core.ColorOrange)
}

func drawHUD(dst *core.Screen, snap Snapshot) {
	score := fmt.Sprintf("Score: %d", snap.Score)
	dst.DrawTextColored(dst.Width()-len(score)-1, 0, score, core.ColorWhite)

	if snap.Generation > 0 {
		dst.DrawTextColored(1, 0, fmt.Sprintf("Gen: %d", snap.Generation), core.ColorWhite)
		dst.DrawTextColored(1, 1, fmt.Sprintf("Alive: %d", snap.Alive), core.ColorWhite)
	}
}

// nextPipeView mirrors Round.NextPipe on a snapshot.
func nextPipeView(pipes []PipeView, x float64) (PipeView, bool) {
	for _, p := range pipes {
		if p.X+float64(p.Width) >= x {
			return p, true
		}
	}
	return PipeView{}, false
}
