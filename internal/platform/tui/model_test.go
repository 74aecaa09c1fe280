package tui

import (
	"io"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-evo/internal/core"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

// scriptGame ends after a fixed number of steps with a fixed score.
type scriptGame struct {
	steps  int
	endAt  int
	score  int
	resets int
	last   core.InputFrame
}

func (g *scriptGame) ID() string    { return "script" }
func (g *scriptGame) Title() string { return "Script" }

func (g *scriptGame) Reset(core.RuntimeConfig) {
	g.steps = 0
	g.resets++
}

func (g *scriptGame) Step(in core.InputFrame) core.StepResult {
	g.last = in.Clone()
	g.steps++
	return core.StepResult{State: g.State()}
}

func (g *scriptGame) Render(dst *core.Screen) {
	dst.DrawText(0, 0, "script")
}

func (g *scriptGame) State() core.GameState {
	st := core.GameState{GameOver: g.steps >= g.endAt}
	if st.GameOver {
		st.Score = g.score
	}
	return st
}

// speedGame adds a speed control to scriptGame.
type speedGame struct {
	scriptGame
	speed int
}

func (g *speedGame) Speed() int     { return g.speed }
func (g *speedGame) SetSpeed(n int) { g.speed = max(1, n) }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testModel(t *testing.T, g core.Game, opts Options) Model {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return NewModel(g, core.RuntimeConfig{ScreenW: 40, ScreenH: 12, TickRate: 30, Seed: 1}, opts)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model
}

func TestMapKeyToFrame(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		name   string
		msg    tea.KeyMsg
		action core.Action
		quit   bool
	}{
		{"space flaps", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionJump, false},
		{"up flaps", tea.KeyMsg{Type: tea.KeyUp}, core.ActionJump, false},
		{"w flaps", runes("w"), core.ActionJump, false},
		{"p pauses", runes("p"), core.ActionPause, false},
		{"r restarts", runes("r"), core.ActionRestart, false},
		{"l toggles lines", runes("l"), core.ActionLines, false},
		{"q quits", runes("q"), core.ActionQuit, true},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := core.NewInputFrame()
			quit := keys.MapKeyToFrame(tt.msg, &frame)
			if quit != tt.quit {
				t.Errorf("quit = %v, expected %v", quit, tt.quit)
			}
			if !frame.Has(tt.action) {
				t.Errorf("frame missing %v", tt.action)
			}
		})
	}
}

func TestMapKeyToFrameIgnoresUnbound(t *testing.T) {
	keys := DefaultKeyMap()
	frame := core.NewInputFrame()
	if keys.MapKeyToFrame(runes("x"), &frame) {
		t.Error("x should not quit")
	}
	for _, a := range []core.Action{core.ActionJump, core.ActionPause, core.ActionRestart, core.ActionQuit} {
		if frame.Has(a) {
			t.Errorf("unbound key set %v", a)
		}
	}
}

func TestModelPassesInputToStep(t *testing.T) {
	g := &scriptGame{endAt: 100}
	m := testModel(t, g, Options{})

	m = update(t, m, runes("w"))
	m = update(t, m, TickMsg{})
	if !g.last.Has(core.ActionJump) {
		t.Error("jump was not passed to Step")
	}

	m = update(t, m, TickMsg{})
	if g.last.Has(core.ActionJump) {
		t.Error("input frame should be cleared after a tick")
	}
	if g.steps != 2 {
		t.Errorf("steps = %d, expected 2", g.steps)
	}
}

func TestModelSavesScoreOnce(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	g := &scriptGame{endAt: 2, score: 7}
	m := testModel(t, g, Options{Store: store, SaveScores: true, Player: "ann"})
	for i := 0; i < 5; i++ {
		m = update(t, m, TickMsg{})
	}

	scores, err := store.TopScores("script", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 1 {
		t.Fatalf("saved %d scores, expected 1", len(scores))
	}
	if scores[0].Score != 7 || scores[0].Player != "ann" {
		t.Errorf("saved %+v", scores[0])
	}
	if m.status != "new high score!" {
		t.Errorf("status = %q, expected high score notice", m.status)
	}

	// A restart allows the next round's score to be saved.
	m = update(t, m, runes("r"))
	m = update(t, m, TickMsg{})
	if g.resets != 1 {
		t.Errorf("resets = %d, expected 1", g.resets)
	}
	for i := 0; i < 3; i++ {
		m = update(t, m, TickMsg{})
	}
	scores, _ = store.TopScores("script", 10)
	if len(scores) != 2 {
		t.Errorf("saved %d scores after restart, expected 2", len(scores))
	}
}

func TestModelWithoutSaveScores(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	g := &scriptGame{endAt: 1, score: 3}
	m := testModel(t, g, Options{Store: store})
	m = update(t, m, TickMsg{})

	if high, _ := store.HighScore("script"); high != 0 {
		t.Errorf("high score = %d, expected nothing saved", high)
	}
}

func TestModelSpeedKeys(t *testing.T) {
	g := &speedGame{scriptGame: scriptGame{endAt: 100}, speed: 4}
	m := testModel(t, g, Options{})

	m = update(t, m, runes("+"))
	if g.speed != 8 {
		t.Errorf("speed = %d, expected 8", g.speed)
	}
	m = update(t, m, runes("-"))
	m = update(t, m, runes("-"))
	if g.speed != 2 {
		t.Errorf("speed = %d, expected 2", g.speed)
	}
	if m.status != "speed x2" {
		t.Errorf("status = %q", m.status)
	}
}

func TestModelBack(t *testing.T) {
	g := &scriptGame{endAt: 1}

	m := testModel(t, g, Options{})
	m = update(t, m, TickMsg{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.BackToMenu() {
		t.Error("back should be disabled without AllowBack")
	}

	g = &scriptGame{endAt: 3}
	m = testModel(t, g, Options{AllowBack: true})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.BackToMenu() {
		t.Error("back should wait for game over or pause")
	}
	for i := 0; i < 3; i++ {
		m = update(t, m, TickMsg{})
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() {
		t.Error("back should be allowed after game over")
	}
	if m.View() != "" {
		t.Error("view should be empty after leaving")
	}
}

func TestModelQuit(t *testing.T) {
	m := testModel(t, &scriptGame{endAt: 10}, Options{})
	next, cmd := m.Update(runes("q"))
	if !next.(Model).IsQuitting() {
		t.Error("q should quit")
	}
	if cmd == nil {
		t.Error("quit should return a command")
	}
}

func TestModelWindowResize(t *testing.T) {
	m := testModel(t, &scriptGame{endAt: 10}, Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if m.screen.Width() != 60 || m.screen.Height() != 19 {
		t.Errorf("screen = %dx%d, expected 60x19", m.screen.Width(), m.screen.Height())
	}
}
