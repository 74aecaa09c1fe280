package core

import (
	"strings"
	"unicode/utf8"
)

// Cell is a single character position on the screen.
type Cell struct {
	Rune  rune
	Color Color
}

var blank = Cell{Rune: ' '}

// Screen is a character buffer the game draws into and the platform
// displays. Cells are stored row-major; drawing outside the buffer is
// clipped.
type Screen struct {
	width  int
	height int
	cells  []Cell
}

// NewScreen creates a blank screen buffer with the given dimensions.
func NewScreen(width, height int) *Screen {
	s := &Screen{}
	s.Resize(width, height)
	return s
}

// Width returns the screen width in characters.
func (s *Screen) Width() int { return s.width }

// Height returns the screen height in characters.
func (s *Screen) Height() int { return s.height }

// Resize changes the screen dimensions, keeping the overlapping top-left area.
func (s *Screen) Resize(width, height int) {
	width, height = max(0, width), max(0, height)
	if width == s.width && height == s.height && s.cells != nil {
		return
	}

	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = blank
	}
	keepW, keepH := min(s.width, width), min(s.height, height)
	for y := 0; y < keepH; y++ {
		copy(cells[y*width:y*width+keepW], s.cells[y*s.width:y*s.width+keepW])
	}
	s.width, s.height, s.cells = width, height, cells
}

// Clear blanks the whole screen.
func (s *Screen) Clear() {
	for i := range s.cells {
		s.cells[i] = blank
	}
}

func (s *Screen) index(x, y int) (int, bool) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return 0, false
	}
	return y*s.width + x, true
}

// Set places an uncolored rune at (x, y).
func (s *Screen) Set(x, y int, r rune) {
	s.SetColored(x, y, r, ColorDefault)
}

// SetColored places a colored rune at (x, y).
func (s *Screen) SetColored(x, y int, r rune, c Color) {
	if i, ok := s.index(x, y); ok {
		s.cells[i] = Cell{Rune: r, Color: c}
	}
}

// Get returns the rune at (x, y), a space outside the buffer.
func (s *Screen) Get(x, y int) rune {
	return s.GetCell(x, y).Rune
}

// GetCell returns the cell at (x, y), a blank cell outside the buffer.
func (s *Screen) GetCell(x, y int) Cell {
	if i, ok := s.index(x, y); ok {
		return s.cells[i]
	}
	return blank
}

// DrawText writes an uncolored string starting at (x, y).
func (s *Screen) DrawText(x, y int, text string) {
	s.DrawTextColored(x, y, text, ColorDefault)
}

// DrawTextColored writes a string starting at (x, y), one rune per cell.
func (s *Screen) DrawTextColored(x, y int, text string, c Color) {
	for _, r := range text {
		s.SetColored(x, y, r, c)
		x++
	}
}

// DrawTextCentered writes text centered on row y.
func (s *Screen) DrawTextCentered(y int, text string) {
	s.DrawText((s.width-utf8.RuneCountInString(text))/2, y, text)
}

// DrawRect fills r with the given rune and color.
func (s *Screen) DrawRect(r Rect, fill rune, c Color) {
	r = r.Clip(s.width, s.height)
	for y := r.Y; y < r.Bottom(); y++ {
		row := s.cells[y*s.width : (y+1)*s.width]
		for x := r.X; x < r.Right(); x++ {
			row[x] = Cell{Rune: fill, Color: c}
		}
	}
}

// DrawHLine draws a horizontal run of length cells starting at (x, y).
func (s *Screen) DrawHLine(x, y, length int, r rune, c Color) {
	s.DrawRect(NewRect(x, y, length, 1), r, c)
}

// DrawLine draws a line between two points with Bresenham's algorithm.
func (s *Screen) DrawLine(x0, y0, x1, y1 int, r rune, c Color) {
	dx, sx := x1-x0, 1
	if dx < 0 {
		dx, sx = -dx, -1
	}
	dy, sy := y0-y1, 1
	if dy > 0 {
		dy = -dy
	}
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		s.SetColored(x0, y0, r, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// String returns the screen as plain text, rows separated by newlines.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow((s.width + 1) * s.height)
	for y := 0; y < s.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, cell := range s.cells[y*s.width : (y+1)*s.width] {
			sb.WriteRune(cell.Rune)
		}
	}
	return sb.String()
}
