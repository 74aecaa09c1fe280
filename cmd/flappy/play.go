package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evo/internal/game"
	"github.com/vovakirdan/flappy-evo/internal/platform/tui"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

var (
	flagRace   bool
	flagPlayer string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play flappy bird",
	Long: `Play flappy bird in the terminal. The round starts with your first flap.

Controls:
  Space/Up/W  - Flap
  P           - Pause
  R           - Restart (after game over)
  L           - Toggle guide lines to the next gap
  Ctrl+S      - Save a screenshot
  Q/Ctrl+C    - Quit

Difficulty options:
  easy   - Wider gaps, slower pipes
  normal - The classic settings
  hard   - Narrow gaps, faster pipes

Examples:
  flappy play
  flappy play --difficulty hard
  flappy play --race
  flappy play --config ./my-flappy.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagRace, "race", false, "Fly alongside the stored champion")
	playCmd.Flags().StringVar(&flagPlayer, "player", "", "Name stored with your scores")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger("flappy", true)
	if err != nil {
		return err
	}
	defer closer.Close()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	var extra []game.Policy
	if flagRace {
		ctrl, fitness, err := tui.ChampionPolicy(store)
		if errors.Is(err, storage.ErrNoChampion) {
			return fmt.Errorf("no champion to race: run 'flappy train' first")
		}
		if err != nil {
			return err
		}
		logger.Info("racing champion", "fitness", fitness)
		extra = append(extra, ctrl)
	}

	g := game.NewPlay(cfg.Game, extra...)
	state, err := tui.Run(g, runtimeConfig(), tui.Options{
		Store:      store,
		Logger:     logger,
		Player:     flagPlayer,
		SaveScores: true,
		FixedSeed:  flagSeed != 0,
		DataDir:    dataDir(),
	})
	if err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	logger.Info("session ended", "score", state.Score)
	return nil
}
