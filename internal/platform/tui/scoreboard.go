package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flappy-evo/internal/game"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

const maxScores = 100

// ScoreMode is one tab of the scoreboard.
type ScoreMode struct {
	ID    string
	Title string
}

// ScoreModes lists the score tables shown by the scoreboard.
var ScoreModes = []ScoreMode{
	{ID: game.ID, Title: "Player"},
	{ID: game.ReplayID, Title: "Champion"},
}

// ScoreboardModel is the Bubble Tea model for the high score screen.
type ScoreboardModel struct {
	store     *storage.Store
	modes     []ScoreMode
	cursor    int
	scores    []storage.ScoreEntry
	stats     *storage.ScoreStats
	err       error
	table     table.Model
	help      help.Model
	keys      MenuKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		store:  store,
		modes:  ScoreModes,
		keys:   DefaultMenuKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.keys.Select.SetEnabled(false)
	m.table = newTable(scoreColumns(width), height)
	m.loadScores()
	return m
}

func scoreColumns(width int) []table.Column {
	dateW := max(12, min(20, width-44))
	return []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Score", Width: 8},
		{Title: "Player", Width: 16},
		{Title: "Date", Width: dateW},
	}
}

// newTable creates a focused table with the shared style.
func newTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, height-9)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// loadScores loads the scores of the selected mode.
func (m *ScoreboardModel) loadScores() {
	m.scores, m.stats, m.err = nil, nil, nil
	if m.store != nil {
		mode := m.modes[m.cursor].ID
		m.scores, m.err = m.store.TopScores(mode, maxScores)
		if m.err == nil {
			m.stats, m.err = m.store.Stats(mode)
		}
	}

	rows := make([]table.Row, len(m.scores))
	for i, s := range m.scores {
		player := s.Player
		if player == "" {
			player = "-"
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%d", s.Score),
			player,
			s.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Next):
			m.cursor = (m.cursor + 1) % len(m.modes)
			m.loadScores()
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			m.cursor = (m.cursor + len(m.modes) - 1) % len(m.modes)
			m.loadScores()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = newTable(scoreColumns(msg.Width), msg.Height)
		m.loadScores()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
)

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(centerText("HIGH SCORES", m.width)))
	b.WriteString("\n\n")

	tabs := make([]string, len(m.modes))
	for i, mode := range m.modes {
		if i == m.cursor {
			tabs[i] = activeTabStyle.Render(mode.Title)
		} else {
			tabs[i] = tabStyle.Render(mode.Title)
		}
	}
	b.WriteString(centerText(lipgloss.JoinHorizontal(lipgloss.Top, tabs...), m.width))
	b.WriteString("\n")

	if m.stats != nil && m.stats.Rounds > 0 {
		summary := fmt.Sprintf("%d rounds, best %d, average %.1f", m.stats.Rounds, m.stats.HighScore, m.stats.AvgScore)
		b.WriteString(centerText(statusStyle.Render(summary), m.width))
	}
	b.WriteString("\n")

	var content string
	switch {
	case m.err != nil:
		content = emptyStyle.Render("Could not load scores:\n" + m.err.Error())
	case len(m.scores) == 0:
		content = emptyStyle.Render("No scores recorded yet.\nPlay a round to set a high score!")
	default:
		content = m.table.View()
	}
	b.WriteString(centerText(boxStyle.Render(content), m.width))

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard screen.
func RunScoreboard(store *storage.Store, width, height int) error {
	_, err := tea.NewProgram(NewScoreboardModel(store, width, height), tea.WithAltScreen()).Run()
	return err
}
