package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/backup"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
)

type BackupModel struct {
	service         *backup.Service
	state           BackupState
	outputDirInput  textinput.Model
	formatSelection int
	formats         []string
	result          backup.Result
	err             error
	width           int
	height          int
}

type BackupState int

const (
	BackupInputState BackupState = iota
	BackupRunningState
	BackupResultState
)

type BackupCompleteMsg struct {
	Result backup.Result
	Err    error
}

func NewBackupModel(l *ledger.Ledger) *BackupModel {
	outputDirInput := textinput.New()
	outputDirInput.Placeholder = "./backups"
	outputDirInput.SetValue("./backups")
	outputDirInput.Focus()

	return &BackupModel{
		service:        backup.NewService(l, l.Logger()),
		state:          BackupInputState,
		outputDirInput: outputDirInput,
		formats:        []string{backup.FormatJSON, backup.FormatBSON},
	}
}

func (m *BackupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *BackupModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *BackupModel) AtRoot() bool {
	return m.state != BackupRunningState
}

func (m *BackupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case BackupInputState:
			return m.updateInputState(msg)
		case BackupRunningState:
			return m, nil
		case BackupResultState:
			if msg.String() == "enter" || msg.String() == " " {
				m.state = BackupInputState
				m.err = nil
				m.result = backup.Result{}
			}
			return m, nil
		}

	case BackupCompleteMsg:
		m.result = msg.Result
		m.err = msg.Err
		m.state = BackupResultState
		return m, nil
	}

	if m.state == BackupInputState {
		m.outputDirInput, cmd = m.outputDirInput.Update(msg)
	}
	return m, cmd
}

func (m *BackupModel) updateInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "right":
		m.formatSelection = (m.formatSelection + 1) % len(m.formats)
		return m, nil
	case "shift+tab", "left":
		m.formatSelection = (m.formatSelection - 1 + len(m.formats)) % len(m.formats)
		return m, nil
	case "enter":
		if strings.TrimSpace(m.outputDirInput.Value()) == "" {
			return m, nil
		}
		m.state = BackupRunningState
		return m, m.performBackup()
	}

	var cmd tea.Cmd
	m.outputDirInput, cmd = m.outputDirInput.Update(msg)
	return m, cmd
}

func (m *BackupModel) performBackup() tea.Cmd {
	dir := strings.TrimSpace(m.outputDirInput.Value())
	format := m.formats[m.formatSelection]
	return func() tea.Msg {
		result, err := m.service.Backup(context.Background(), dir, format)
		return BackupCompleteMsg{Result: result, Err: err}
	}
}

func (m *BackupModel) View() string {
	adaptiveTitleStyle, adaptiveFormStyle, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	switch m.state {
	case BackupRunningState:
		title := adaptiveTitleStyle.Render("💾 Backing up...")
		return lipgloss.JoinVertical(lipgloss.Left, title, adaptiveHelpStyle.Render("Please wait while the ledger is being written..."))

	case BackupResultState:
		title := titleStyle.Render("💾 Backup Complete")
		var status string
		if m.err != nil {
			status = errorStyle.Render(fmt.Sprintf("❌ Backup failed: %v", m.err))
		} else {
			status = successStyle.Render("✅ Backup completed successfully!")
		}
		stats := fmt.Sprintf(
			"📊 Backup Information:\n"+
				"   File: %s\n"+
				"   Customers: %d",
			m.result.FilePath,
			m.result.Count,
		)
		help := helpStyle.Render("Enter: Create another backup • Esc: Back to menu")
		return lipgloss.JoinVertical(lipgloss.Left, title, status, stats, help)
	}

	title := adaptiveTitleStyle.Render("💾 Backup Ledger")

	var formats []string
	for i, format := range m.formats {
		label := strings.ToUpper(format)
		if i == m.formatSelection {
			formats = append(formats, selectedMenuItemStyle.Render(label))
		} else {
			formats = append(formats, menuItemStyle.Render(label))
		}
	}

	form := adaptiveFormStyle.Render(
		labelStyle.Render("Output Directory:") + "\n" + m.outputDirInput.View() + "\n\n" +
			labelStyle.Render("Format:") + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, formats...),
	)

	help := adaptiveHelpStyle.Render("Tab/←/→: Change format • Enter: Backup • Esc: Back to menu")

	return lipgloss.JoinVertical(lipgloss.Left, title, form, help)
}
