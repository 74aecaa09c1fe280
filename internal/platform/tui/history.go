package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappy-evo/internal/evolve"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

// HistoryModel shows the per-generation stats of a training run.
type HistoryModel struct {
	run     storage.Run
	history []evolve.GenerationStats
	table   table.Model
	help    help.Model
	keys    MenuKeyMap
	width   int
	height  int
	done    bool
}

// NewHistoryModel creates a history view for run.
func NewHistoryModel(run storage.Run, history []evolve.GenerationStats, width, height int) HistoryModel {
	m := HistoryModel{
		run:     run,
		history: history,
		help:    help.New(),
		keys:    DefaultMenuKeyMap(),
		width:   width,
		height:  height,
	}
	m.keys.Select.SetEnabled(false)
	m.keys.Next.SetEnabled(false)
	m.keys.Prev.SetEnabled(false)
	m.table = m.buildTable()
	return m
}

func (m HistoryModel) buildTable() table.Model {
	t := newTable([]table.Column{
		{Title: "Gen", Width: 5},
		{Title: "Best", Width: 8},
		{Title: "Mean", Width: 8},
		{Title: "Median", Width: 8},
		{Title: "Species", Width: 8},
		{Title: "Score", Width: 6},
		{Title: "Ticks", Width: 7},
		{Title: "Nodes", Width: 6},
		{Title: "Links", Width: 6},
		{Title: "End", Width: 16},
		{Title: "Time", Width: 9},
	}, m.height)

	rows := make([]table.Row, len(m.history))
	for i, g := range m.history {
		rows[i] = table.Row{
			fmt.Sprintf("%d", g.Generation),
			fmt.Sprintf("%.1f", g.Best),
			fmt.Sprintf("%.1f", g.Mean),
			fmt.Sprintf("%.1f", g.Median),
			fmt.Sprintf("%d", g.Species),
			fmt.Sprintf("%d", g.Score),
			fmt.Sprintf("%d", g.Ticks),
			fmt.Sprintf("%d", g.BestNodes),
			fmt.Sprintf("%d", g.BestLinks),
			g.EndReason,
			g.Duration().Round(time.Millisecond).String(),
		}
	}
	t.SetRows(rows)
	return t
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history view.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) || key.Matches(msg, m.keys.Back) {
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table = m.buildTable()
		m.help.Width = msg.Width
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history.
func (m HistoryModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	title := fmt.Sprintf("RUN #%d  seed %d  population %d", m.run.ID, m.run.Seed, m.run.Population)
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n")

	outcome := "interrupted"
	switch {
	case m.run.Reached:
		outcome = fmt.Sprintf("threshold reached, best %.1f", m.run.BestFitness)
	case !m.run.FinishedAt.IsZero():
		outcome = fmt.Sprintf("finished, best %.1f", m.run.BestFitness)
	}
	b.WriteString(centerText(statusStyle.Render(outcome), m.width))
	b.WriteString("\n\n")

	if len(m.history) == 0 {
		b.WriteString(centerText(boxStyle.Render(emptyStyle.Render("No generations recorded.")), m.width))
	} else {
		b.WriteString(centerText(boxStyle.Render(m.table.View()), m.width))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// RunHistory shows the history of a run.
func RunHistory(run storage.Run, history []evolve.GenerationStats, width, height int) error {
	_, err := tea.NewProgram(NewHistoryModel(run, history, width, height), tea.WithAltScreen()).Run()
	return err
}
