package core

import (
	"strings"
	"testing"
)

func row(s *Screen, y int) string {
	return strings.Split(s.String(), "\n")[y]
}

func TestNewScreenIsBlank(t *testing.T) {
	s := NewScreen(6, 3)
	if s.Width() != 6 || s.Height() != 3 {
		t.Fatalf("size = %dx%d, expected 6x3", s.Width(), s.Height())
	}
	if got, expected := s.String(), "      \n      \n      "; got != expected {
		t.Errorf("String() = %q, expected %q", got, expected)
	}
}

func TestScreenSetClipsOutOfBounds(t *testing.T) {
	s := NewScreen(4, 4)
	for _, p := range [][2]int{{-1, 0}, {4, 0}, {0, -1}, {0, 4}} {
		s.Set(p[0], p[1], 'X')
		if got := s.Get(p[0], p[1]); got != ' ' {
			t.Errorf("Get(%d, %d) = %q outside the buffer, expected space", p[0], p[1], got)
		}
	}
	if strings.ContainsRune(s.String(), 'X') {
		t.Error("out-of-bounds writes leaked into the buffer")
	}
}

func TestScreenColors(t *testing.T) {
	s := NewScreen(4, 4)
	s.SetColored(1, 2, '█', ColorGreen)
	if cell := s.GetCell(1, 2); cell.Rune != '█' || cell.Color != ColorGreen {
		t.Errorf("GetCell(1, 2) = %+v, expected green block", cell)
	}

	s.Set(1, 2, 'x')
	if s.GetCell(1, 2).Color != ColorDefault {
		t.Error("Set should reset the cell color")
	}

	s.Clear()
	if cell := s.GetCell(1, 2); cell.Rune != ' ' || cell.Color != ColorDefault {
		t.Errorf("after Clear cell = %+v", cell)
	}
}

func TestScreenText(t *testing.T) {
	tests := []struct {
		name     string
		draw     func(s *Screen)
		expected string
	}{
		{"plain", func(s *Screen) { s.DrawText(1, 0, "abc") }, " abc    "},
		{"clipped right", func(s *Screen) { s.DrawText(6, 0, "abcd") }, "      ab"},
		{"clipped left", func(s *Screen) { s.DrawText(-2, 0, "abcd") }, "cd      "},
		{"centered", func(s *Screen) { s.DrawTextCentered(0, "ab") }, "   ab   "},
		{"centered multibyte", func(s *Screen) { s.DrawTextCentered(0, "██") }, "   ██   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScreen(8, 1)
			tt.draw(s)
			if got := s.String(); got != tt.expected {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestScreenDrawRect(t *testing.T) {
	s := NewScreen(5, 4)
	s.DrawRect(NewRect(3, 2, 10, 10), '#', ColorGreen)

	expected := "     \n     \n   ##\n   ##"
	if got := s.String(); got != expected {
		t.Errorf("String() = %q, expected %q", got, expected)
	}
	if s.GetCell(4, 3).Color != ColorGreen {
		t.Error("rect should be colored")
	}

	s.Clear()
	s.DrawRect(NewRect(-3, -3, 2, 2), '#', ColorGreen)
	if strings.ContainsRune(s.String(), '#') {
		t.Error("rect fully outside should draw nothing")
	}
}

func TestScreenDrawHLine(t *testing.T) {
	s := NewScreen(10, 3)
	s.DrawHLine(2, 1, 5, '-', ColorBrown)
	if got := row(s, 1); got != "  -----   " {
		t.Errorf("row 1 = %q", got)
	}
}

func TestScreenDrawLine(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawLine(0, 0, 4, 4, '.', ColorRed)
	for i := 0; i <= 4; i++ {
		if s.Get(i, i) != '.' {
			t.Errorf("expected '.' at (%d, %d)", i, i)
		}
	}
	if n := strings.Count(s.String(), "."); n != 5 {
		t.Errorf("diagonal drew %d cells, expected 5", n)
	}

	s.Clear()
	s.DrawLine(7, 2, 1, 2, '.', ColorRed)
	if got := row(s, 2); got != " .......  " {
		t.Errorf("row 2 = %q", got)
	}

	s.Clear()
	s.DrawLine(3, 8, 3, 1, '|', ColorRed)
	if n := strings.Count(s.String(), "|"); n != 8 {
		t.Errorf("vertical line drew %d cells, expected 8", n)
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawText(0, 0, "Hello")

	s.Resize(3, 2)
	if s.Width() != 3 || s.Height() != 2 {
		t.Fatalf("size = %dx%d, expected 3x2", s.Width(), s.Height())
	}
	if got := row(s, 0); got != "Hel" {
		t.Errorf("row 0 = %q, expected Hel", got)
	}

	s.Resize(6, 3)
	if got := row(s, 0); got != "Hel   " {
		t.Errorf("row 0 after enlarging = %q", got)
	}
	if got := row(s, 2); got != "      " {
		t.Errorf("new rows should be blank, got %q", got)
	}

	s.Resize(-1, 4)
	if s.Width() != 0 {
		t.Errorf("negative width should clamp to 0, got %d", s.Width())
	}
}
