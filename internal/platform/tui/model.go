package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-evo/internal/core"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

// Options configures a game model.
type Options struct {
	Store      *storage.Store // nil disables score saving
	Logger     *log.Logger
	Player     string
	SaveScores bool
	FixedSeed  bool // restart with the same seed instead of a fresh one
	AllowBack  bool // esc returns to the menu (SSH sessions)
	DataDir    string
}

// speeder is implemented by games whose simulation speed can be changed.
type speeder interface {
	Speed() int
	SetSpeed(n int)
}

// progresser is implemented by games that report overall progress.
type progresser interface {
	Progress() float64
}

// Model is the Bubble Tea model for running a core.Game.
type Model struct {
	game       core.Game
	screen     *core.Screen
	opts       Options
	config     core.RuntimeConfig
	keys       KeyMap
	help       help.Model
	progress   progress.Model
	inputFrame core.InputFrame
	gameState  core.GameState
	status     string
	quitting   bool
	backToMenu bool
	scoreSaved bool
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game core.Game, cfg core.RuntimeConfig, opts Options) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}

	keys := DefaultKeyMap()
	_, canSpeed := game.(speeder)
	keys.Faster.SetEnabled(canSpeed)
	keys.Slower.SetEnabled(canSpeed)
	keys.Back.SetEnabled(opts.AllowBack)

	m := Model{
		game:       game,
		opts:       opts,
		config:     cfg,
		keys:       keys,
		help:       help.New(),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		inputFrame: core.NewInputFrame(),
	}
	m.screen = core.NewScreen(cfg.ScreenW, m.playHeight(cfg.ScreenH))
	m.help.Width = cfg.ScreenW
	m.progress.Width = max(10, cfg.ScreenW-24)
	return m
}

// statusLines is the number of rows below the playfield.
func (m Model) statusLines() int {
	if _, ok := m.game.(progresser); ok {
		return 2
	}
	return 1
}

func (m Model) playHeight(total int) int {
	return max(1, total-m.statusLines())
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, m.playHeight(msg.Height))
		m.help.Width = msg.Width
		m.progress.Width = max(10, msg.Width-24)
		return m, nil

	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, m.keys.Back) && (m.gameState.GameOver || m.gameState.Paused):
		m.backToMenu = true
		return m, nil
	case key.Matches(msg, m.keys.Faster), key.Matches(msg, m.keys.Slower):
		if s, ok := m.game.(speeder); ok {
			if key.Matches(msg, m.keys.Faster) {
				s.SetSpeed(s.Speed() * 2)
			} else {
				s.SetSpeed(s.Speed() / 2)
			}
			m.status = fmt.Sprintf("speed x%d", s.Speed())
		}
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.backToMenu {
		return m, nil
	}

	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		if !m.opts.FixedSeed {
			m.config.Seed = time.Now().UnixNano()
		}
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.scoreSaved = false
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if m.gameState.GameOver && !m.scoreSaved {
		m.saveScore()
		m.scoreSaved = true
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

func (m *Model) saveScore() {
	if !m.opts.SaveScores || m.opts.Store == nil || m.gameState.Score <= 0 {
		return
	}
	if _, err := m.opts.Store.SaveScore(m.game.ID(), m.opts.Player, m.gameState.Score); err != nil {
		m.opts.Logger.Warn("could not save score", "score", m.gameState.Score, "error", err)
		return
	}
	high, err := m.opts.Store.HighScore(m.game.ID())
	if err == nil && high == m.gameState.Score {
		m.status = "new high score!"
	}
}

// saveScreenshot writes the current screen to the data directory.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(m.opts.DataDir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.opts.Logger.Warn("could not create screenshot directory", "error", err)
		return
	}

	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.opts.Logger.Warn("could not save screenshot", "error", err)
		return
	}
	m.status = "saved " + filename
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
)

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	m.game.Render(m.screen)
	out := RenderScreen(m.screen)

	if p, ok := m.game.(progresser); ok {
		label := fmt.Sprintf(" gen %d ", m.gameState.Generation)
		out += "\n" + label + m.progress.ViewAs(p.Progress())
	}

	bar := statusStyle.Render(m.help.View(m.keys))
	if m.status != "" {
		bar = noticeStyle.Render(m.status) + "  " + bar
	}
	return out + "\n" + bar
}

// IsQuitting returns true if the user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if the user requested to go back to the menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// GameState returns the state after the last tick.
func (m Model) GameState() core.GameState {
	return m.gameState
}

// Run starts the Bubble Tea program for game and returns the final state.
func Run(game core.Game, cfg core.RuntimeConfig, opts Options) (core.GameState, error) {
	p := tea.NewProgram(NewModel(game, cfg, opts), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return core.GameState{}, err
	}
	if m, ok := final.(Model); ok {
		return m.GameState(), nil
	}
	return core.GameState{}, nil
}
