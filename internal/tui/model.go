package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
)

type Screen int

const (
	MenuScreen Screen = iota
	ReadingScreen
	CustomersScreen
	ImportScreen
	BackupScreen
	RestoreScreen
)

// screen is implemented by every sub-model. AtRoot reports whether the
// screen is in its base state, where esc returns to the menu.
type screen interface {
	tea.Model
	SetSize(width, height int)
	AtRoot() bool
}

type Model struct {
	currentScreen  Screen
	ledger         *ledger.Ledger
	menuModel      *MenuModel
	readingModel   *ReadingModel
	customersModel *CustomersModel
	importModel    *ImportModel
	backupModel    *BackupModel
	restoreModel   *RestoreModel
	now            time.Time
	err            error
	quitting       bool
	width          int
	height         int
}

func NewModel(l *ledger.Ledger) Model {
	return Model{
		currentScreen:  MenuScreen,
		ledger:         l,
		menuModel:      NewMenuModel(),
		readingModel:   NewReadingModel(l),
		customersModel: NewCustomersModel(l),
		importModel:    NewImportModel(l),
		backupModel:    NewBackupModel(l),
		restoreModel:   NewRestoreModel(l),
		now:            time.Now(),
	}
}

type TickMsg time.Time

// tick refreshes the clock in the header once a second.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, s := range m.screens() {
			s.SetSize(msg.Width, msg.Height-1)
		}
		return m, nil

	case TickMsg:
		m.now = time.Time(msg)
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "q":
			if m.currentScreen == MenuScreen {
				m.quitting = true
				return m, tea.Quit
			}
		case "esc":
			if m.currentScreen != MenuScreen && m.active().AtRoot() {
				m.currentScreen = MenuScreen
				m.err = nil
				return m, nil
			}
		}

	case ScreenChangeMsg:
		m.currentScreen = msg.Screen
		m.err = nil
		switch msg.Screen {
		case ReadingScreen:
			return m, m.readingModel.Init()
		case CustomersScreen:
			return m, m.customersModel.Init()
		case ImportScreen:
			return m, m.importModel.Init()
		case BackupScreen:
			return m, m.backupModel.Init()
		case RestoreScreen:
			return m, m.restoreModel.Init()
		}
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	_, cmd := m.active().Update(msg)
	return m, cmd
}

func (m Model) screens() []screen {
	return []screen{m.menuModel, m.readingModel, m.customersModel, m.importModel, m.backupModel, m.restoreModel}
}

func (m Model) active() screen {
	switch m.currentScreen {
	case ReadingScreen:
		return m.readingModel
	case CustomersScreen:
		return m.customersModel
	case ImportScreen:
		return m.importModel
	case BackupScreen:
		return m.backupModel
	case RestoreScreen:
		return m.restoreModel
	}
	return m.menuModel
}

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	content := m.active().View()

	if m.err != nil {
		content += "\n" + errorStyle.Margin(1, 0).Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.clockView(), content)
}

// clockView renders "hh:mm:ss - dd.mm.yyyy" flush right.
func (m Model) clockView() string {
	clock := clockStyle.Render(m.now.Format("15:04:05 - 02.01.2006"))
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, clock)
	}
	return clock
}

type ScreenChangeMsg struct {
	Screen Screen
}

type ErrorMsg struct {
	Err error
}

func ChangeScreen(screen Screen) tea.Cmd {
	return func() tea.Msg {
		return ScreenChangeMsg{Screen: screen}
	}
}

func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
