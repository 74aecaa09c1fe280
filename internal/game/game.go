package game

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/core"
)

// Score storage identifiers.
const (
	ID       = "flappy"
	ReplayID = "flappy-replay"
)

// PilotID is the bird flown by the player in play mode.
const PilotID BirdID = 0

// Game adapts a Round to the core.Game interface for the terminal platform.
// In play mode a human Pilot drives the first bird; replay mode runs saved
// policies only.
//
// In play mode the game is over as soon as the player's bird is out, even
// if other birds still fly, and the score is the player's own pass count.
type Game struct {
	cfg      config.GameConfig
	opts     Options
	pilot    *Pilot
	policies []Policy

	round   *Round
	runtime core.RuntimeConfig
	paused  bool
	lines   bool
	over    bool // the player's bird is out
	last    TickResult
}

// NewPlay creates an interactive game: the round waits for the first flap
// and extra policies, if any, fly alongside the player.
func NewPlay(cfg config.GameConfig, extra ...Policy) *Game {
	pilot := &Pilot{}
	return &Game{
		cfg:      cfg,
		opts:     Options{WaitForStart: true},
		pilot:    pilot,
		policies: append([]Policy{pilot}, extra...),
	}
}

// NewReplay creates a game flown only by the given policies, with the AI
// ceiling rule enabled.
func NewReplay(cfg config.GameConfig, policies ...Policy) *Game {
	return &Game{
		cfg:      cfg,
		opts:     Options{Ceiling: true},
		policies: policies,
	}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	if g.pilot == nil {
		return ReplayID
	}
	return ID
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	if g.pilot == nil {
		return "Flappy Bird (replay)"
	}
	return "Flappy Bird"
}

// Reset initializes or restarts the game.
func (g *Game) Reset(rc core.RuntimeConfig) {
	g.runtime = rc
	seed := rc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g.round = NewRound(g.cfg, g.opts, rand.New(rand.NewSource(seed)), g.policies)
	g.paused = false
	g.over = false
	g.last = TickResult{}
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.round == nil {
		g.Reset(g.runtime)
	}

	if in.Has(core.ActionLines) {
		g.lines = !g.lines
	}

	if g.finished() {
		if in.Has(core.ActionRestart) {
			g.Reset(g.runtime)
		}
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && g.round.State() == StateRunning {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionJump) && g.pilot != nil {
		g.pilot.Flap()
		g.round.Start()
	}
	g.last = g.round.Step()
	if g.pilot != nil && !g.round.Alive(PilotID) {
		g.over = true
	}

	return core.StepResult{State: g.State()}
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	if g.round == nil {
		dst.Clear()
		return
	}
	opts := RenderOptions{Lines: g.lines, Paused: g.paused}
	switch {
	case g.finished():
		opts.Message = "GAME OVER - R to restart"
	case g.round.State() == StateWaiting:
		opts.Message = "Press SPACE to flap"
	}
	snap := g.round.Snapshot()
	snap.Score = g.score()
	Render(snap, g.cfg, dst, opts)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.round == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.score(),
		GameOver: g.finished(),
		Paused:   g.paused,
		Waiting:  g.round.State() == StateWaiting,
		Alive:    len(g.round.Birds()),
	}
}

func (g *Game) finished() bool {
	return g.over || g.round.State() == StateEnded
}

// score is the player's pass count in play mode, the round score otherwise.
func (g *Game) score() int {
	if g.pilot != nil {
		return g.round.Bird(PilotID).Passes
	}
	return g.round.Score()
}

// Round exposes the underlying round.
func (g *Game) Round() *Round {
	return g.round
}

// LastTick returns the result of the most recent simulation step.
func (g *Game) LastTick() TickResult {
	return g.last
}
