package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evo/internal/platform/tui"
)

var (
	flagHistoryCSV   string
	flagHistoryLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show training runs and their generations",
	Long: `Without arguments, list recent training runs. With a run id, browse the
statistics of every generation of that run, or export them with --csv.

Examples:
  flappy history
  flappy history 3
  flappy history 3 --csv run3.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryCSV, "csv", "", "Export the run's generations to this CSV file ('-' for stdout)")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of runs to list")
}

func runHistory(_ *cobra.Command, args []string) error {
	store, err := mustOpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		runs, err := store.Runs(flagHistoryLimit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No training runs recorded yet.")
			fmt.Println()
			fmt.Println("Run 'flappy train' to start one.")
			return nil
		}
		fmt.Printf("  %-4s  %-16s  %-5s  %-11s  %-8s  %s\n", "Run", "Started", "Pop", "Generations", "Best", "Threshold")
		for _, r := range runs {
			reached := "-"
			if r.Reached {
				reached = "reached"
			}
			fmt.Printf("  %-4d  %-16s  %-5d  %-11d  %-8.1f  %s\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Population, r.Generations, r.BestFitness, reached)
		}
		return nil
	}

	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}
	run, err := store.Run(runID)
	if err != nil {
		return err
	}
	history, err := store.Generations(runID)
	if err != nil {
		return fmt.Errorf("load run %d: %w", runID, err)
	}

	switch flagHistoryCSV {
	case "":
		w, h := terminalSize()
		return tui.RunHistory(run, history, w, h)
	case "-":
		return gocsv.Marshal(&history, os.Stdout)
	default:
		return writeStatsCSV(flagHistoryCSV, history)
	}
}
