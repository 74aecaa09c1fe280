package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuChoice is an entry of the session menu.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceRace   // play alongside the stored champion
	ChoiceReplay // watch the stored champion
	ChoiceScores
	ChoiceQuit
)

// MenuItem is a selectable menu line.
type MenuItem struct {
	Choice MenuChoice
	Title  string
	Hint   string
}

// MenuModel is the Bubble Tea model for the session menu.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	high     int
	keys     MenuKeyMap
	help     help.Model
	selected MenuChoice
}

// NewMenuModel creates the menu. Champion entries are listed only when a
// champion is available.
func NewMenuModel(width, height, highScore int, hasChampion bool) MenuModel {
	items := []MenuItem{{Choice: ChoicePlay, Title: "Play", Hint: "flap through the pipes"}}
	if hasChampion {
		items = append(items,
			MenuItem{Choice: ChoiceRace, Title: "Race the champion", Hint: "fly next to the best trained bird"},
			MenuItem{Choice: ChoiceReplay, Title: "Watch the champion", Hint: "the best trained bird flies alone"},
		)
	}
	items = append(items,
		MenuItem{Choice: ChoiceScores, Title: "High scores"},
		MenuItem{Choice: ChoiceQuit, Title: "Quit"},
	)

	keys := DefaultMenuKeyMap()
	keys.Next.SetEnabled(false)
	keys.Prev.SetEnabled(false)
	keys.Back.SetEnabled(false)

	return MenuModel{
		items:  items,
		width:  width,
		height: height,
		high:   highScore,
		keys:   keys,
		help:   help.New(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.selected = ChoiceQuit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			m.selected = m.items[m.cursor].Choice
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

var hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)

// View renders the menu.
func (m MenuModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(centerText("  F L A P P Y  ", m.width)))
	b.WriteString("\n\n")
	if m.high > 0 {
		b.WriteString(centerText(fmt.Sprintf("High score: %d", m.high), m.width))
		b.WriteString("\n\n")
	}

	for i, item := range m.items {
		line := "  " + item.Title
		if i == m.cursor {
			line = noticeStyle.Render("> " + item.Title)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if hint := m.items[m.cursor].Hint; hint != "" {
		b.WriteString("\n")
		b.WriteString(centerText(hintStyle.Render(hint), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(statusStyle.Render(m.help.View(m.keys)), m.width))
	return b.String()
}

// Selected returns the chosen entry, ChoiceNone while the user decides.
func (m MenuModel) Selected() MenuChoice {
	return m.selected
}
