package main

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/vovakirdan/flappy-evo/internal/brain"
	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/game"
	"github.com/vovakirdan/flappy-evo/internal/platform/tui"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

var (
	flagCrowd    int
	flagHeadless bool
	flagRunID    int64
	flagMaxTicks int
)

var replayCmd = &cobra.Command{
	Use:   "replay [genome.yaml]",
	Short: "Watch a trained champion fly",
	Long: `Replay a saved champion. Without a file the fittest champion in the
database is used; --run picks the champion of one training run instead.

--crowd adds fresh random genomes that fly alongside the champion.
--headless skips the terminal and prints how far the champion got.

Examples:
  flappy replay
  flappy replay champion.yaml
  flappy replay --run 3
  flappy replay --crowd 30
  flappy replay champion.yaml --headless --max-ticks 20000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	f := replayCmd.Flags()
	f.IntVar(&flagCrowd, "crowd", 0, "Number of random genomes flying alongside")
	f.BoolVar(&flagHeadless, "headless", false, "Run without the terminal UI and print the result")
	f.Int64Var(&flagRunID, "run", 0, "Replay the champion of this training run")
	f.IntVar(&flagMaxTicks, "max-ticks", 0, "Headless tick cap (default from config)")
}

func runReplay(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger("replay", !flagHeadless)
	if err != nil {
		return err
	}
	defer closer.Close()

	genome, fitness, err := loadChampion(args)
	if err != nil {
		return err
	}
	logger.Info("champion loaded", "genome", genome.Id, "fitness", fitness)

	s := seed()
	policies, err := replayPolicies(genome, cfg.Train, flagCrowd, rand.New(rand.NewSource(s)), logger)
	if err != nil {
		return err
	}

	if flagHeadless {
		return replayHeadless(cfg, policies, s)
	}

	g := game.NewReplay(cfg.Game, policies...)
	if _, err := tui.Run(g, runtimeConfig(), tui.Options{Logger: logger, DataDir: dataDir(), FixedSeed: flagSeed != 0}); err != nil {
		return fmt.Errorf("run replay: %w", err)
	}
	return nil
}

// loadChampion reads the genome file given as argument, or the stored champion.
func loadChampion(args []string) (*genetics.Genome, float64, error) {
	if len(args) == 1 {
		return brain.Load(args[0])
	}

	store, err := mustOpenStore()
	if err != nil {
		return nil, 0, err
	}
	defer store.Close()

	var champ *storage.Champion
	if flagRunID > 0 {
		champ, err = store.RunChampion(flagRunID)
	} else {
		champ, err = store.BestChampion()
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load champion: %w", err)
	}
	return brain.Decode(champ.Genome)
}

// replayPolicies builds the champion controller followed by crowd random ones.
func replayPolicies(champion *genetics.Genome, train config.TrainConfig, crowd int, rng *rand.Rand, logger *log.Logger) ([]game.Policy, error) {
	ctrl, err := brain.NewController(champion)
	if err != nil {
		return nil, err
	}
	logger.Info("champion network", "nodes", ctrl.NodeCount(), "links", ctrl.LinkCount())
	policies := []game.Policy{ctrl}
	for i := 0; i < crowd; i++ {
		c, err := brain.NewController(brain.NewGenome(champion.Id+i+1, train.InitialConnectionProb, rng))
		if err != nil {
			logger.Warn("skipping crowd genome", "error", err)
			continue
		}
		policies = append(policies, c)
	}
	return policies, nil
}

func replayHeadless(cfg config.Config, policies []game.Policy, s int64) error {
	limit := flagMaxTicks
	if limit <= 0 {
		limit = cfg.Train.MaxTicks
	}

	opts := game.Options{Ceiling: true, StopScore: cfg.Game.Rules.StopScore}
	round := game.NewRound(cfg.Game, opts, rand.New(rand.NewSource(s)), policies)
	for round.State() != game.StateEnded {
		round.Step()
		if limit > 0 && round.Tick() >= limit {
			round.Quit()
		}
	}

	champion := "eliminated"
	if round.Alive(0) {
		champion = "alive"
	}
	fmt.Printf("Score:    %d\n", round.Score())
	fmt.Printf("Ticks:    %d\n", round.Tick())
	fmt.Printf("End:      %s\n", round.Reason())
	fmt.Printf("Champion: %s\n", champion)
	return nil
}
