package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type menuChoice struct {
	label  string
	screen Screen
	quit   bool
}

type MenuModel struct {
	choices []menuChoice
	cursor  int
	width   int
	height  int
}

func NewMenuModel() *MenuModel {
	return &MenuModel{
		choices: []menuChoice{
			{label: "⚡ Record meter reading", screen: ReadingScreen},
			{label: "👥 Show customers", screen: CustomersScreen},
			{label: "📥 Import readings from CSV", screen: ImportScreen},
			{label: "💾 Backup ledger", screen: BackupScreen},
			{label: "🔄 Restore ledger", screen: RestoreScreen},
			{label: "🚪 Exit", quit: true},
		},
	}
}

func (m *MenuModel) Init() tea.Cmd {
	return nil
}

func (m *MenuModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *MenuModel) AtRoot() bool {
	return true
}

func (m *MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter", " ":
			choice := m.choices[m.cursor]
			if choice.quit {
				return m, tea.Quit
			}
			return m, ChangeScreen(choice.screen)
		}
	}
	return m, nil
}

func (m *MenuModel) View() string {
	adaptiveTitleStyle, _, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("Electricity Meter Reading")

	var menu string
	for i, choice := range m.choices {
		cursor := " "
		label := menuItemStyle.Render(choice.label)
		if m.cursor == i {
			cursor = ">"
			label = selectedMenuItemStyle.Render(choice.label)
		}
		menu += fmt.Sprintf("%s %s\n", cursor, label)
	}

	help := adaptiveHelpStyle.Render("Use ↑/↓ (or j/k) to navigate • Enter to select • q to quit")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		menu,
		help,
	)

	if m.width > 0 {
		content = lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			content,
		)
	}

	return content
}
