package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evo/internal/game"
	"github.com/vovakirdan/flappy-evo/internal/platform/tui"
)

var (
	flagScoreMode string
	flagScoresTUI bool
	flagClear     bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the top 10 scores. Player scores come from 'flappy play',
champion scores from replays over SSH.

Examples:
  flappy scores
  flappy scores --mode champion
  flappy scores --tui`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoreMode, "mode", "play", "Score table: play or champion")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse the scoreboard interactively")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every score of the selected table")
}

func scoreMode(name string) (string, error) {
	switch name {
	case "play", "player", "":
		return game.ID, nil
	case "champion", "replay":
		return game.ReplayID, nil
	default:
		return "", fmt.Errorf("unknown score mode %q (want play or champion)", name)
	}
}

func runScores(_ *cobra.Command, _ []string) error {
	mode, err := scoreMode(flagScoreMode)
	if err != nil {
		return err
	}

	store, err := mustOpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if flagScoresTUI {
		w, h := terminalSize()
		return tui.RunScoreboard(store, w, h)
	}

	if flagClear {
		if err := store.ClearScores(mode); err != nil {
			return fmt.Errorf("clear scores: %w", err)
		}
		fmt.Printf("Cleared %s scores.\n", flagScoreMode)
		return nil
	}

	scores, err := store.TopScores(mode, 10)
	if err != nil {
		return fmt.Errorf("retrieve scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n", flagScoreMode)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'flappy play' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-6s  %-12s  %s\n", "Rank", "Score", "Player", "Date")
	fmt.Printf("  %-4s  %-6s  %-12s  %s\n", "----", "-----", "------", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-6d  %-12s  %s\n", i+1, entry.Score, entry.Player, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if stats, err := store.Stats(mode); err == nil {
		fmt.Printf("Best: %d  Rounds: %d  Average: %.1f\n", stats.HighScore, stats.Rounds, stats.AvgScore)
	}
	return nil
}
