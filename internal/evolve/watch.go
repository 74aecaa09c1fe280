package evolve

import (
	"fmt"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/core"
	"github.com/vovakirdan/flappy-evo/internal/game"
)

// Watch shows a training run in the terminal. Each Step advances the
// current generation by Speed round ticks.
type Watch struct {
	trainer *Trainer
	cfg     config.GameConfig
	ev      *Evaluation
	last    GenerationStats
	err     error

	speed  int
	paused bool
	lines  bool
}

// NewWatch wraps a trainer for display.
func NewWatch(trainer *Trainer, cfg config.GameConfig) *Watch {
	return &Watch{trainer: trainer, cfg: cfg, speed: 1}
}

// ID returns the unique identifier for this game.
func (w *Watch) ID() string { return "flappy-train" }

// Title returns the display name.
func (w *Watch) Title() string { return "Flappy Bird (training)" }

// Speed returns the number of round ticks per Step.
func (w *Watch) Speed() int { return w.speed }

// SetSpeed sets the number of round ticks per Step, clamped to [1, 1000].
func (w *Watch) SetSpeed(n int) { w.speed = max(1, min(n, 1000)) }

// Reset is a no-op: a training run cannot be restarted.
func (w *Watch) Reset(core.RuntimeConfig) {}

// Step advances training.
func (w *Watch) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionLines) {
		w.lines = !w.lines
	}
	if in.Has(core.ActionPause) {
		w.paused = !w.paused
	}
	if w.paused || w.finished() {
		return core.StepResult{State: w.State()}
	}

	for i := 0; i < w.speed && !w.finished(); i++ {
		if w.ev == nil {
			w.ev = w.trainer.Begin()
		}
		if w.trainer.Step(w.ev) {
			continue
		}
		stats, err := w.trainer.Finish(w.ev)
		w.ev = nil
		w.last = stats
		if err != nil {
			w.err = err
		}
	}
	return core.StepResult{State: w.State()}
}

// Render draws the current round.
func (w *Watch) Render(dst *core.Screen) {
	opts := game.RenderOptions{Lines: w.lines, Paused: w.paused}
	switch {
	case w.err != nil:
		opts.Message = "ERROR: " + w.err.Error()
	case w.finished():
		opts.Message = fmt.Sprintf("Training done - best %.1f", w.best())
	}

	if w.ev == nil {
		dst.Clear()
		if opts.Message != "" {
			dst.DrawTextCentered(dst.Height()/2, opts.Message)
		}
		return
	}
	snap := w.ev.Round.Snapshot()
	snap.Generation = w.ev.Generation
	game.Render(snap, w.cfg, dst, opts)
}

// State returns the current state.
func (w *Watch) State() core.GameState {
	st := core.GameState{
		GameOver:   w.finished(),
		Paused:     w.paused,
		Generation: w.trainer.Generation(),
	}
	if w.ev != nil {
		st.Score = w.ev.Round.Score()
		st.Alive = len(w.ev.Round.Birds())
		st.Generation = w.ev.Generation
	}
	return st
}

// Progress returns the share of generations evaluated, in [0, 1].
func (w *Watch) Progress() float64 {
	total := w.trainer.Generations()
	if total <= 0 {
		return 1
	}
	return min(1, float64(len(w.trainer.History()))/float64(total))
}

// Last returns the stats of the most recent generation.
func (w *Watch) Last() GenerationStats { return w.last }

// Err returns the error that stopped training, if any.
func (w *Watch) Err() error { return w.err }

func (w *Watch) finished() bool {
	return w.err != nil || (w.ev == nil && w.trainer.Done())
}

func (w *Watch) best() float64 {
	_, fit := w.trainer.Champion()
	return fit
}
