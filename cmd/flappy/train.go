package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/vovakirdan/flappy-evo/internal/brain"
	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/evolve"
	"github.com/vovakirdan/flappy-evo/internal/game"
	"github.com/vovakirdan/flappy-evo/internal/platform/tui"
	"github.com/vovakirdan/flappy-evo/internal/spectate"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

var (
	flagGenerations int
	flagPopulation  int
	flagWatch       bool
	flagSpectate    string
	flagOut         string
	flagStatsCSV    string
	flagResume      string
	flagNoStore     bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Evolve a flappy bird controller with NEAT",
	Long: `Evolve neural network controllers with NEAT. Each generation flies the
whole population in one round; a bird's credit becomes its fitness.
Training stops after --generations or once the fitness threshold is met.

The fittest genome is written to --out and stored in the database, where
'flappy replay' and 'flappy play --race' pick it up.

Watch controls:
  +/-       - Speed up / slow down
  P         - Pause
  L         - Toggle guide lines
  Q/Ctrl+C  - Stop training

Examples:
  flappy train
  flappy train --generations 100 --population 150
  flappy train --watch
  flappy train --spectate :8080
  flappy train --resume champion.yaml --stats history.csv`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.IntVar(&flagGenerations, "generations", 0, "Generation limit (default from config)")
	f.IntVar(&flagPopulation, "population", 0, "Population size (default from config)")
	f.BoolVar(&flagWatch, "watch", false, "Show the training rounds in the terminal")
	f.StringVar(&flagSpectate, "spectate", "", "Serve a websocket spectator feed on this address")
	f.StringVar(&flagOut, "out", "champion.yaml", "Write the champion genome to this file")
	f.StringVar(&flagStatsCSV, "stats", "", "Export generation statistics to this CSV file")
	f.StringVar(&flagResume, "resume", "", "Seed the population with a saved genome")
	f.BoolVar(&flagNoStore, "no-store", false, "Do not record the run in the database")
}

func runTrain(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagGenerations > 0 {
		cfg.Train.Generations = flagGenerations
	}
	if flagPopulation > 0 {
		cfg.Train.Population = flagPopulation
	}
	if err := cfg.Train.Validate(); err != nil {
		return err
	}

	logger, closer, err := newLogger("train", flagWatch)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signalContext()
	defer stop()

	s := seed()
	strategy := evolve.NewNEAT(cfg.Train, rand.New(rand.NewSource(s)))
	if flagResume != "" {
		genome, fitness, err := brain.Load(flagResume)
		if err != nil {
			return err
		}
		if err := strategy.Seed(genome); err != nil {
			return fmt.Errorf("seed population from %s: %w", flagResume, err)
		}
		logger.Info("resuming from genome", "path", flagResume, "fitness", fitness)
	}

	var store *storage.Store
	var runID int64
	if !flagNoStore {
		store = openStore(logger)
	}
	if store != nil {
		defer store.Close()
		runID, err = store.StartRun(s, cfg.Train.Population, cfg.Train.Generations)
		if err != nil {
			logger.Warn("could not record run", "error", err)
			store = nil
		}
	}

	trainer := evolve.NewTrainer(cfg, strategy, logger, s)

	var hub *spectate.Hub
	if flagSpectate != "" {
		hub = spectate.NewHub(logger)
		go func() {
			if err := spectate.Serve(ctx, flagSpectate, hub); err != nil {
				logger.Error("spectator feed stopped", "error", err)
			}
		}()
		logger.Info("spectator feed listening", "addr", flagSpectate, "path", "/ws")
		trainer.OnTick = func(snap game.Snapshot) {
			if err := hub.Publish(snap); err != nil {
				logger.Debug("publish snapshot", "error", err)
			}
		}
	}
	trainer.OnGeneration = func(stats evolve.GenerationStats) {
		if store != nil {
			if err := store.SaveGeneration(runID, stats); err != nil {
				logger.Warn("could not save generation", "gen", stats.Generation, "error", err)
			}
		}
		if hub != nil {
			if err := hub.PublishGeneration(stats); err != nil {
				logger.Debug("publish generation", "error", err)
			}
		}
	}

	logger.Info("training started",
		"seed", s,
		"population", cfg.Train.Population,
		"generations", cfg.Train.Generations,
		"threshold", cfg.Train.FitnessThreshold,
	)

	result, err := train(ctx, trainer, cfg.Game, logger)
	stopped := errors.Is(err, context.Canceled)
	if err != nil && !stopped {
		return err
	}
	if stopped {
		logger.Info("training interrupted", "generations", result.Generations)
	}

	if store != nil {
		if err := store.FinishRun(runID, result.Fitness, result.Reached); err != nil {
			logger.Warn("could not finish run", "run", runID, "error", err)
		}
	}
	if flagStatsCSV != "" {
		if err := writeStatsCSV(flagStatsCSV, result.History); err != nil {
			return err
		}
		logger.Info("statistics exported", "path", flagStatsCSV, "rows", len(result.History))
	}
	if result.Champion == nil {
		logger.Warn("no generation completed, nothing to save")
		return nil
	}
	return saveChampion(store, runID, result.Champion, result.Fitness, logger)
}

// train runs headless, or inside the watch TUI when --watch is set.
func train(ctx context.Context, trainer *evolve.Trainer, gameCfg config.GameConfig, logger *log.Logger) (evolve.Result, error) {
	if !flagWatch {
		return trainer.Run(ctx)
	}

	watch := evolve.NewWatch(trainer, gameCfg)
	_, err := tui.Run(watch, runtimeConfig(), tui.Options{Logger: logger, DataDir: dataDir()})
	if err != nil {
		return evolve.Result{}, fmt.Errorf("run watch: %w", err)
	}
	if err := watch.Err(); err != nil {
		return evolve.Result{}, err
	}

	result := trainer.Result()
	if !trainer.Done() {
		return result, context.Canceled
	}
	return result, nil
}

func saveChampion(store *storage.Store, runID int64, champion *genetics.Genome, fitness float64, logger *log.Logger) error {
	if flagOut != "" {
		if err := brain.Save(flagOut, champion, fitness); err != nil {
			return err
		}
	}
	if store != nil {
		data, err := brain.Encode(champion, fitness)
		if err != nil {
			return err
		}
		if _, err := store.SaveChampion(runID, fitness, data); err != nil {
			return fmt.Errorf("store champion: %w", err)
		}
	}
	logger.Info("champion saved",
		"fitness", fmt.Sprintf("%.1f", fitness),
		"nodes", len(champion.Nodes),
		"links", len(champion.Genes),
		"out", flagOut,
	)
	return nil
}

func writeStatsCSV(path string, history []evolve.GenerationStats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&history, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
