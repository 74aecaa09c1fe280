package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/flappy-evo/internal/brain"
	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/core"
	"github.com/vovakirdan/flappy-evo/internal/game"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key is generated at <DataDir>/host_key.
	HostKeyPath string

	// DataDir holds the host key and screenshots.
	DataDir string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the simulation rate of each session.
	TickRate int

	Game config.GameConfig
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DataDir:     "~/.flappy",
		IdleTimeout: 30 * time.Minute,
		TickRate:    30,
		Game:        config.DefaultGameConfig(),
	}
}

// SSHServer wraps a Wish SSH server where every session plays flappy bird.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. store may be nil, in which case
// scores are not kept and no champion is offered.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	dataDir, err := ExpandHome(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dataDir

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		hostKeyPath = filepath.Join(dataDir, "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	rc := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
	}
	model := NewSessionModel(s.config.Game, rc, Options{
		Store:      s.store,
		Logger:     s.logger.With("user", sshSession.User()),
		Player:     sshSession.User(),
		SaveScores: true,
		AllowBack:  true,
		DataDir:    s.config.DataDir,
	})
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		start := time.Now()
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// ListenAndServe serves sessions until ctx is cancelled, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() { errCh <- s.server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("tui: ssh server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("tui: cannot get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// ChampionPolicy loads the fittest stored champion as a decision source.
func ChampionPolicy(store *storage.Store) (*brain.Controller, float64, error) {
	if store == nil {
		return nil, 0, storage.ErrNoChampion
	}
	champ, err := store.BestChampion()
	if err != nil {
		return nil, 0, err
	}
	genome, _, err := brain.Decode(champ.Genome)
	if err != nil {
		return nil, 0, fmt.Errorf("tui: champion %d: %w", champ.ID, err)
	}
	ctrl, err := brain.NewController(genome)
	if err != nil {
		return nil, 0, err
	}
	return ctrl, champ.Fitness, nil
}

type sessionView int

const (
	viewMenu sessionView = iota
	viewGame
	viewScores
)

// SessionModel manages a session: menu, then a game or the scoreboard,
// then back to the menu.
type SessionModel struct {
	cfg        config.GameConfig
	rc         core.RuntimeConfig
	opts       Options
	view       sessionView
	menu       MenuModel
	game       Model
	scoreboard ScoreboardModel
}

// NewSessionModel creates a new session model.
func NewSessionModel(cfg config.GameConfig, rc core.RuntimeConfig, opts Options) SessionModel {
	m := SessionModel{cfg: cfg, rc: rc, opts: opts}
	m.menu = m.newMenu()
	return m
}

func (m SessionModel) newMenu() MenuModel {
	high := 0
	hasChampion := false
	if m.opts.Store != nil {
		high, _ = m.opts.Store.HighScore(game.ID)
		_, err := m.opts.Store.BestChampion()
		hasChampion = err == nil
	}
	return NewMenuModel(m.rc.ScreenW, m.rc.ScreenH, high, hasChampion)
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.rc.ScreenW = wsm.Width
		m.rc.ScreenH = wsm.Height
	}

	switch m.view {
	case viewGame:
		next, cmd := m.game.Update(msg)
		m.game = next.(Model)
		if m.game.IsQuitting() {
			return m, tea.Quit
		}
		if m.game.BackToMenu() {
			return m.toMenu()
		}
		return m, cmd

	case viewScores:
		next, cmd := m.scoreboard.Update(msg)
		m.scoreboard = next.(ScoreboardModel)
		if m.scoreboard.IsQuitting() {
			return m, tea.Quit
		}
		if m.scoreboard.IsGoingBack() {
			return m.toMenu()
		}
		return m, cmd
	}

	next, _ := m.menu.Update(msg)
	m.menu = next.(MenuModel)

	switch m.menu.Selected() {
	case ChoiceQuit:
		return m, tea.Quit
	case ChoiceScores:
		m.scoreboard = NewScoreboardModel(m.opts.Store, m.rc.ScreenW, m.rc.ScreenH)
		m.view = viewScores
		return m, nil
	case ChoicePlay, ChoiceRace, ChoiceReplay:
		g, err := m.newGame(m.menu.Selected())
		if err != nil {
			m.opts.Logger.Warn("could not start game", "error", err)
			m.menu = m.newMenu()
			return m, nil
		}
		m.game = NewModel(g, m.rc, m.opts)
		m.view = viewGame
		return m, m.game.Init()
	}
	return m, nil
}

func (m SessionModel) newGame(choice MenuChoice) (core.Game, error) {
	if choice == ChoicePlay {
		return game.NewPlay(m.cfg), nil
	}
	ctrl, _, err := ChampionPolicy(m.opts.Store)
	if err != nil {
		return nil, err
	}
	if choice == ChoiceRace {
		return game.NewPlay(m.cfg, ctrl), nil
	}
	return game.NewReplay(m.cfg, ctrl), nil
}

func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.view = viewMenu
	m.menu = m.newMenu()
	return m, nil
}

// View renders the current view.
func (m SessionModel) View() string {
	switch m.view {
	case viewGame:
		return m.game.View()
	case viewScores:
		return m.scoreboard.View()
	}
	return m.menu.View()
}
