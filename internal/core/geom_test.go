package core

import "testing"

func TestRectEdges(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	if r.Right() != 40 || r.Bottom() != 60 {
		t.Errorf("Right, Bottom = %d, %d, expected 40, 60", r.Right(), r.Bottom())
	}
	if cx, cy := r.Center(); cx != 25 || cy != 40 {
		t.Errorf("Center() = (%d, %d), expected (25, 40)", cx, cy)
	}
	if got := r.Translate(-10, 5); got != NewRect(0, 25, 30, 40) {
		t.Errorf("Translate() = %+v", got)
	}
}

func TestRectEmpty(t *testing.T) {
	tests := []struct {
		r        Rect
		expected bool
	}{
		{NewRect(0, 0, 1, 1), false},
		{NewRect(0, 0, 0, 5), true},
		{NewRect(0, 0, 5, 0), true},
		{NewRect(0, 0, -1, 5), true},
	}
	for _, tt := range tests {
		if got := tt.r.Empty(); got != tt.expected {
			t.Errorf("%+v.Empty() = %v, expected %v", tt.r, got, tt.expected)
		}
	}
}

func TestRectIntersection(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected Rect
		empty    bool
	}{
		{"overlap", NewRect(0, 0, 10, 10), NewRect(5, 3, 10, 10), NewRect(5, 3, 5, 7), false},
		{"contained", NewRect(0, 0, 10, 10), NewRect(2, 2, 3, 3), NewRect(2, 2, 3, 3), false},
		{"touching edges", NewRect(0, 0, 10, 10), NewRect(10, 0, 5, 5), Rect{}, true},
		{"disjoint", NewRect(0, 0, 5, 5), NewRect(20, 20, 5, 5), Rect{}, true},
		{"empty input", NewRect(0, 0, 0, 10), NewRect(0, 0, 10, 10), Rect{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersection(tt.b)
			if got.Empty() != tt.empty {
				t.Fatalf("Intersection() = %+v, empty expected %v", got, tt.empty)
			}
			if !tt.empty && got != tt.expected {
				t.Errorf("Intersection() = %+v, expected %+v", got, tt.expected)
			}
			if rev := tt.b.Intersection(tt.a); !tt.empty && rev != got {
				t.Errorf("Intersection is not symmetric: %+v vs %+v", got, rev)
			}
		})
	}
}

func TestRectClip(t *testing.T) {
	if got := NewRect(-2, 3, 6, 10).Clip(8, 8); got != NewRect(0, 3, 4, 5) {
		t.Errorf("Clip() = %+v, expected {0 3 4 5}", got)
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 5, 5)
	tests := []struct {
		x, y     int
		expected bool
	}{
		{10, 10, true},
		{14, 14, true},
		{15, 10, false},
		{10, 15, false},
		{9, 12, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.expected {
			t.Errorf("Contains(%d, %d) = %v, expected %v", tt.x, tt.y, got, tt.expected)
		}
	}
}
