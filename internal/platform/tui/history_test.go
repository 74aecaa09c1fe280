package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/flappy-evo/internal/evolve"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

func TestHistoryViewShowsGenerations(t *testing.T) {
	history := []evolve.GenerationStats{
		{Generation: 1, Best: 12.5, Species: 3, EndReason: "extinct", DurationMS: 1500},
	}
	m := NewHistoryModel(storage.Run{ID: 4, Seed: 9, Population: 50}, history, 120, 30)

	view := m.View()
	for _, want := range []string{"RUN #4", "interrupted", "12.5", "extinct", "1.5s"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestHistoryViewEmpty(t *testing.T) {
	m := NewHistoryModel(storage.Run{ID: 1}, nil, 80, 24)

	if !strings.Contains(m.View(), "No generations recorded.") {
		t.Error("empty history should say so")
	}
}
