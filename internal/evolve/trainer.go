package evolve

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/vovakirdan/flappy-evo/internal/brain"
	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/game"
)

// Trainer evaluates a Strategy generation by generation. Each generation is
// one round in which every organism flies its own bird; the bird's credit
// becomes the organism's fitness.
//
// A generation can be driven headless with Run, or tick by tick with
// Begin, Step and Finish when a UI shows the round.
type Trainer struct {
	cfg      config.Config
	strategy Strategy
	logger   *log.Logger
	rng      *rand.Rand

	generation int
	history    []GenerationStats
	champion   *genetics.Genome
	bestFit    float64
	reached    bool

	// OnGeneration is called after every evaluated generation.
	OnGeneration func(GenerationStats)
	// OnTick is called with a snapshot after every round tick.
	OnTick func(game.Snapshot)
}

// Evaluation is a generation in progress.
type Evaluation struct {
	Generation int
	Round      *game.Round

	organisms []*Organism
	start     time.Time
}

// Result is the outcome of a training run.
type Result struct {
	Champion    *genetics.Genome
	Fitness     float64
	Generations int
	History     []GenerationStats
	Reached     bool // the fitness threshold was met
}

// NewTrainer creates a trainer. Pipes are drawn from an rng derived from
// seed, separate from the strategy's own rng.
func NewTrainer(cfg config.Config, strategy Strategy, logger *log.Logger, seed int64) *Trainer {
	return &Trainer{
		cfg:        cfg,
		strategy:   strategy,
		logger:     logger,
		rng:        rand.New(rand.NewSource(seed + 1)),
		generation: 1,
	}
}

// Generation returns the 1-based number of the next generation to evaluate.
func (t *Trainer) Generation() int { return t.generation }

// Generations returns the configured generation limit.
func (t *Trainer) Generations() int { return t.cfg.Train.Generations }

// History returns the stats of every evaluated generation.
func (t *Trainer) History() []GenerationStats { return t.history }

// Champion returns the best genome seen so far and its fitness.
func (t *Trainer) Champion() (*genetics.Genome, float64) { return t.champion, t.bestFit }

// Done reports whether training is over: the generation limit was hit or
// the fitness threshold was reached.
func (t *Trainer) Done() bool {
	return t.reached || t.generation > t.cfg.Train.Generations
}

// Begin starts evaluating the current generation.
func (t *Trainer) Begin() *Evaluation {
	organisms := t.strategy.Organisms()
	policies := make([]game.Policy, len(organisms))
	for i, org := range organisms {
		org.Fitness = 0
		ctrl, err := brain.NewController(org.Genome)
		if err != nil {
			t.logger.Warn("genome has no network", "genome", org.Genome.Id, "error", err)
			policies[i] = game.PolicyFunc(func(game.Observation) (float64, error) { return 0, err })
			continue
		}
		policies[i] = ctrl
	}

	opts := game.Options{
		Credit:    true,
		Ceiling:   true,
		StopScore: t.cfg.Game.Rules.StopScore,
	}
	return &Evaluation{
		Generation: t.generation,
		Round:      game.NewRound(t.cfg.Game, opts, t.rng, policies),
		organisms:  organisms,
		start:      time.Now(),
	}
}

// Step advances the evaluation by one tick and reports whether the round
// is still running.
func (t *Trainer) Step(ev *Evaluation) bool {
	res := ev.Round.Step()
	for _, e := range res.Events {
		if e.Err != nil {
			t.logger.Debug("bird eliminated", "gen", ev.Generation, "bird", e.Bird, "cause", e.Cause, "tick", e.Tick, "error", e.Err)
		} else {
			t.logger.Debug("bird eliminated", "gen", ev.Generation, "bird", e.Bird, "cause", e.Cause, "tick", e.Tick)
		}
	}

	if limit := t.cfg.Train.MaxTicks; limit > 0 && ev.Round.Tick() >= limit {
		ev.Round.Quit()
	}

	if t.OnTick != nil {
		snap := ev.Round.Snapshot()
		snap.Generation = ev.Generation
		t.OnTick(snap)
	}
	return ev.Round.State() != game.StateEnded
}

// Finish assigns fitness, records stats and breeds the next generation
// unless training is over.
func (t *Trainer) Finish(ev *Evaluation) (GenerationStats, error) {
	ev.Round.Quit()

	credits := ev.Round.Credits()
	fitness := make([]float64, len(ev.organisms))
	best := 0
	for i, org := range ev.organisms {
		org.Fitness = credits[i]
		fitness[i] = credits[i]
		if credits[i] > credits[best] {
			best = i
		}
	}

	summary := Summarize(fitness)
	stats := GenerationStats{
		Generation: ev.Generation,
		Population: len(ev.organisms),
		Species:    t.strategy.SpeciesCount(),
		Best:       summary.Best,
		Mean:       summary.Mean,
		StdDev:     summary.StdDev,
		Median:     summary.Median,
		Score:      ev.Round.Score(),
		Ticks:      ev.Round.Tick(),
		EndReason:  ev.Round.Reason().String(),
		DurationMS: time.Since(ev.start).Milliseconds(),
	}

	if len(ev.organisms) > 0 {
		top := ev.organisms[best]
		stats.BestNodes = len(top.Genome.Nodes)
		stats.BestLinks = len(top.Genome.Genes)
		if t.champion == nil || top.Fitness > t.bestFit {
			clone, err := Clone(top.Genome, top.Genome.Id)
			if err != nil {
				return stats, fmt.Errorf("evolve: keep champion: %w", err)
			}
			t.champion, t.bestFit = clone, top.Fitness
		}
	}

	t.history = append(t.history, stats)
	t.logger.Info("generation complete",
		"gen", stats.Generation,
		"best", fmt.Sprintf("%.1f", stats.Best),
		"mean", fmt.Sprintf("%.1f", stats.Mean),
		"species", stats.Species,
		"score", stats.Score,
		"ticks", stats.Ticks,
		"end", stats.EndReason,
	)
	if t.OnGeneration != nil {
		t.OnGeneration(stats)
	}

	if threshold := t.cfg.Train.FitnessThreshold; threshold > 0 && stats.Best >= threshold {
		t.reached = true
		t.logger.Info("fitness threshold reached", "gen", stats.Generation, "best", stats.Best, "threshold", threshold)
	}
	t.generation++

	if t.Done() {
		return stats, nil
	}
	if err := t.strategy.Evolve(); err != nil {
		return stats, fmt.Errorf("evolve: generation %d: %w", stats.Generation, err)
	}
	return stats, nil
}

// Run trains headless until Done or ctx is cancelled. A cancelled run
// returns the progress so far together with ctx.Err().
func (t *Trainer) Run(ctx context.Context) (Result, error) {
	for !t.Done() {
		ev := t.Begin()
		for t.Step(ev) {
			if err := ctx.Err(); err != nil {
				ev.Round.Quit()
				return t.Result(), err
			}
		}
		if _, err := t.Finish(ev); err != nil {
			return t.Result(), err
		}
		if err := ctx.Err(); err != nil {
			return t.Result(), err
		}
	}
	return t.Result(), nil
}

// Result returns the progress so far.
func (t *Trainer) Result() Result {
	return Result{
		Champion:    t.champion,
		Fitness:     t.bestFit,
		Generations: len(t.history),
		History:     t.history,
		Reached:     t.reached,
	}
}
