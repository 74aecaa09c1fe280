package game

import (
	"strings"
	"testing"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/core"
)

func testRuntime() core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
		Seed:     12345,
	}
}

func input(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

func TestGameWaitsForFirstFlap(t *testing.T) {
	g := NewPlay(config.DefaultGameConfig())
	g.Reset(testRuntime())

	for i := 0; i < 5; i++ {
		g.Step(input())
	}
	if !g.State().Waiting {
		t.Fatal("game should wait for the first flap")
	}

	initialY := g.Round().Bird(0).Y
	g.Step(input(core.ActionJump))

	if g.State().Waiting {
		t.Error("flap should start the game")
	}
	if y := g.Round().Bird(0).Y; y >= initialY {
		t.Errorf("Jump should move the bird up, was %f, now %f", initialY, y)
	}
}

func TestGamePause(t *testing.T) {
	g := NewPlay(config.DefaultGameConfig())
	g.Reset(testRuntime())
	g.Step(input(core.ActionJump))

	g.Step(input(core.ActionPause))
	if !g.State().Paused {
		t.Fatal("Game should be paused")
	}

	yBefore := g.Round().Bird(0).Y
	g.Step(input())
	if y := g.Round().Bird(0).Y; y != yBefore {
		t.Errorf("Bird should not move while paused, was %f, now %f", yBefore, y)
	}

	g.Step(input(core.ActionPause))
	if g.State().Paused {
		t.Error("Game should be unpaused")
	}
}

func TestGameOverAndRestart(t *testing.T) {
	g := NewPlay(config.DefaultGameConfig())
	g.Reset(testRuntime())
	g.Step(input(core.ActionJump))

	for i := 0; i < 200 && !g.State().GameOver; i++ {
		g.Step(input())
	}
	if !g.State().GameOver {
		t.Fatal("bird that never flaps should hit the ground")
	}
	if g.LastTick().Events[0].Cause != CauseFloor {
		t.Errorf("expected a floor elimination, got %+v", g.LastTick().Events)
	}

	// Input other than restart is ignored
	g.Step(input(core.ActionJump))
	if !g.State().GameOver {
		t.Error("game over should persist until restart")
	}

	g.Step(input(core.ActionRestart))
	state := g.State()
	if state.GameOver || !state.Waiting || state.Score != 0 {
		t.Errorf("restart should produce a fresh waiting game, got %+v", state)
	}
}

func TestGameDeterminism(t *testing.T) {
	run := func() (core.GameState, int) {
		g := NewPlay(config.DefaultGameConfig())
		g.Reset(testRuntime())
		for i := 0; i < 300; i++ {
			var in core.InputFrame
			if i%7 == 0 {
				in = input(core.ActionJump)
			} else {
				in = input()
			}
			if g.Step(in).State.GameOver {
				break
			}
		}
		return g.State(), g.Round().Tick()
	}

	s1, t1 := run()
	s2, t2 := run()
	if s1 != s2 || t1 != t2 {
		t.Errorf("Determinism failed: %+v at %d vs %+v at %d", s1, t1, s2, t2)
	}
}

func TestReplayRunsWithoutInput(t *testing.T) {
	g := NewReplay(config.DefaultGameConfig(), hover)
	g.Reset(testRuntime())

	if g.State().Waiting {
		t.Error("replay should not wait for input")
	}
	g.Step(input(core.ActionJump))
	if g.Round().Tick() != 1 {
		t.Errorf("replay should advance, tick = %d", g.Round().Tick())
	}
}

func TestGameRender(t *testing.T) {
	g := NewPlay(config.DefaultGameConfig())
	g.Reset(testRuntime())
	screen := core.NewScreen(80, 24)

	g.Render(screen)
	out := screen.String()
	if !strings.Contains(out, "Score: 0") {
		t.Error("HUD should show the score")
	}
	if !strings.Contains(out, "Press SPACE") {
		t.Error("waiting banner should be shown")
	}

	found := false
	for x := 0; x < 80; x++ {
		if screen.GetCell(x, 23).Color == core.ColorBrown {
			found = true
			break
		}
	}
	if !found {
		t.Error("ground should be drawn on the bottom row")
	}
}

func TestRenderGuideLines(t *testing.T) {
	cfg := config.DefaultGameConfig()
	r := newTestRound(cfg, Options{}, hover)
	r.pipes[0].X = 400

	without := core.NewScreen(80, 24)
	Render(r.Snapshot(), cfg, without, RenderOptions{})
	with := core.NewScreen(80, 24)
	Render(r.Snapshot(), cfg, with, RenderOptions{Lines: true})

	if strings.ContainsRune(without.String(), GuideChar) {
		t.Error("guide lines should be off by default")
	}
	if !strings.ContainsRune(with.String(), GuideChar) {
		t.Error("guide lines should be drawn when enabled")
	}
}

func TestRenderHUDShowsGeneration(t *testing.T) {
	r := newTestRound(testConfig(), Options{}, hover, hover)
	snap := r.Snapshot()
	snap.Generation = 3

	screen := core.NewScreen(80, 24)
	Render(snap, testConfig(), screen, RenderOptions{})

	out := screen.String()
	if !strings.Contains(out, "Gen: 3") || !strings.Contains(out, "Alive: 2") {
		t.Errorf("HUD should show generation and alive count:\n%s", out)
	}
}

func TestRaceWaitsForPlayer(t *testing.T) {
	eager := PolicyFunc(func(Observation) (float64, error) { return 1, nil })
	g := NewPlay(config.DefaultGameConfig(), eager)
	g.Reset(testRuntime())

	for i := 0; i < 5; i++ {
		g.Step(input())
	}
	if !g.State().Waiting || g.Round().Tick() != 0 {
		t.Fatalf("an AI jump should not start the game, got tick %d", g.Round().Tick())
	}

	g.Step(input(core.ActionJump))
	if g.State().Waiting {
		t.Error("the player's flap should start the game")
	}
}

func TestRaceEndsWithPlayer(t *testing.T) {
	g := NewPlay(testConfig(), hover)
	g.Reset(testRuntime())

	g.Step(input(core.ActionJump))
	for i := 0; !g.State().GameOver; i++ {
		if i > 500 {
			t.Fatal("the player's bird should fall to the ground")
		}
		g.Step(input())
	}

	if g.Round().Alive(PilotID) {
		t.Error("game over with the player still flying")
	}
	if !g.Round().Alive(1) {
		t.Fatal("the AI bird should outlive the player")
	}
	if got := g.State().Score; got != 0 {
		t.Errorf("Score: got %d, expected the player's own 0", got)
	}

	tick := g.Round().Tick()
	for i := 0; i < 200; i++ {
		g.Step(input())
	}
	if g.Round().Tick() != tick {
		t.Errorf("round kept running after game over: tick %d, was %d", g.Round().Tick(), tick)
	}
	if got := g.State().Score; got != 0 {
		t.Errorf("Score after game over: got %d, expected 0", got)
	}
}
