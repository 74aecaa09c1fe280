// flappy is a terminal flappy bird with a neuro-evolution trainer.
//
// Usage:
//
//	flappy play              - Play in the terminal
//	flappy train             - Evolve a controller with NEAT
//	flappy replay [genome]   - Watch a trained champion fly
//	flappy scores            - Show high scores
//	flappy history [run]     - Show training runs and their generations
//	flappy serve             - Start the SSH server for remote play
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 30)
//	--seed <value>        - Set RNG seed for reproducible rounds
//	--db <path>           - Set database path (default: ~/.flappy/flappy.db)
//	--config <path>       - Custom YAML config
//	--difficulty <preset> - easy, normal or hard
//	--log-level <level>   - debug, info, warn, error
//	--log-file <path>     - Write logs to a rotating file
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/core"
	"github.com/vovakirdan/flappy-evo/internal/logging"
	"github.com/vovakirdan/flappy-evo/internal/platform/tui"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
	flagLogFile    string
	flagDataDir    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flappy",
	Short: "Flappy bird in your terminal, and a NEAT trainer that learns to play it",
	Long: `flappy is a terminal flappy bird. Besides playing it yourself you can
evolve neural network controllers with NEAT, watch the training live,
replay the champion and race against it.

Examples:
  flappy play
  flappy play --difficulty hard
  flappy train --generations 50 --watch
  flappy train --spectate :8080 --stats history.csv
  flappy replay champion.yaml --crowd 20
  flappy history 3 --csv run3.csv
  flappy serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDBPath, "db", "~/.flappy/flappy.db", "Path to the database")
	pf.StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&flagLogFile, "log-file", "", "Write logs to this file (rotated)")
	pf.StringVar(&flagDataDir, "data-dir", "~/.flappy", "Directory for screenshots and host keys")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads the YAML config and applies the difficulty preset.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return cfg, err
	}
	config.ApplyPreset(&cfg.Game, preset)
	return cfg, cfg.Validate()
}

// newLogger builds the command logger. Console output is dropped while a
// TUI owns the terminal unless --log-file is set.
func newLogger(prefix string, tuiMode bool) (*log.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level:  flagLogLevel,
		File:   flagLogFile,
		Prefix: prefix,
		Quiet:  tuiMode,
	})
}

// openStore opens the database. A failure is logged and yields nil: the
// game still works without persistence.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

// mustOpenStore opens the database for commands that need it.
func mustOpenStore() (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", flagDBPath, err)
	}
	return store, nil
}

// runtimeConfig sizes the screen from the terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := terminalSize()
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}

// seed returns --seed, or a time-based seed when it is unset.
func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// dataDir returns the expanded --data-dir.
func dataDir() string {
	dir, err := tui.ExpandHome(flagDataDir)
	if err != nil {
		return flagDataDir
	}
	return dir
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
