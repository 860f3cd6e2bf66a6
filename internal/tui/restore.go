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

type RestoreModel struct {
	service         *backup.Service
	state           RestoreState
	backupFileInput textinput.Model
	format          string
	replace         bool
	restored        int
	err             error
	files           []string
	selectedFile    int
	width           int
	height          int
}

type RestoreState int

const (
	RestoreInputState RestoreState = iota
	RestoreFileSelectState
	RestoreConfirmState
	RestoreRunningState
	RestoreResultState
)

type RestoreCompleteMsg struct {
	Count int
	Err   error
}

func NewRestoreModel(l *ledger.Ledger) *RestoreModel {
	backupFileInput := textinput.New()
	backupFileInput.Placeholder = "backups/backup_readings_20240101_120000.json"
	backupFileInput.Focus()

	return &RestoreModel{
		service:         backup.NewService(l, l.Logger()),
		state:           RestoreInputState,
		backupFileInput: backupFileInput,
	}
}

func (m *RestoreModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *RestoreModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *RestoreModel) AtRoot() bool {
	return m.state == RestoreInputState || m.state == RestoreResultState
}

func (m *RestoreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case RestoreInputState:
			return m.updateInputState(msg)
		case RestoreFileSelectState:
			return m.updateFileSelectState(msg)
		case RestoreConfirmState:
			return m.updateConfirmState(msg)
		case RestoreRunningState:
			return m, nil
		case RestoreResultState:
			if msg.String() == "enter" || msg.String() == " " {
				m.reset()
			}
			return m, nil
		}

	case RestoreCompleteMsg:
		m.restored = msg.Count
		m.err = msg.Err
		m.state = RestoreResultState
		return m, nil
	}

	if m.state == RestoreInputState {
		m.backupFileInput, cmd = m.backupFileInput.Update(msg)
	}
	return m, cmd
}

func (m *RestoreModel) updateInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+f":
		files, err := listFiles("*.json", "*.bson", "backups/*.json", "backups/*.bson")
		if err != nil {
			return m, ShowError(err)
		}
		m.files = files
		m.selectedFile = 0
		m.state = RestoreFileSelectState
		return m, nil
	case "enter":
		file := strings.TrimSpace(m.backupFileInput.Value())
		if file == "" {
			return m, nil
		}
		format, err := backup.FormatFromExtension(file)
		if err == nil {
			err = m.service.ValidateBackupFile(file, format)
		}
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.format = format
		m.state = RestoreConfirmState
		return m, nil
	}

	var cmd tea.Cmd
	m.backupFileInput, cmd = m.backupFileInput.Update(msg)
	return m, cmd
}

func (m *RestoreModel) updateFileSelectState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedFile > 0 {
			m.selectedFile--
		}
	case "down", "j":
		if m.selectedFile < len(m.files)-1 {
			m.selectedFile++
		}
	case "enter":
		if len(m.files) > 0 {
			m.backupFileInput.SetValue(m.files[m.selectedFile])
			m.state = RestoreInputState
		}
	case "esc":
		m.state = RestoreInputState
	}
	return m, nil
}

func (m *RestoreModel) updateConfirmState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.replace = !m.replace
	case "y", "enter":
		m.state = RestoreRunningState
		return m, m.performRestore()
	case "n", "esc":
		m.state = RestoreInputState
	}
	return m, nil
}

func (m *RestoreModel) performRestore() tea.Cmd {
	file := strings.TrimSpace(m.backupFileInput.Value())
	format := m.format
	replace := m.replace
	return func() tea.Msg {
		count, err := m.service.Restore(context.Background(), file, format, replace)
		return RestoreCompleteMsg{Count: count, Err: err}
	}
}

func (m *RestoreModel) reset() {
	m.state = RestoreInputState
	m.replace = false
	m.restored = 0
	m.err = nil
	m.backupFileInput.Focus()
}

func (m *RestoreModel) View() string {
	switch m.state {
	case RestoreFileSelectState:
		return renderFileSelector("📁 Select Backup File", "No backup files (*.json, *.bson) found", m.files, m.selectedFile)
	case RestoreConfirmState:
		return m.renderConfirmation()
	case RestoreRunningState:
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("🔄 Restoring..."),
			helpStyle.Render("Please wait while customers are being restored..."))
	case RestoreResultState:
		return m.renderResult()
	}
	return m.renderInputForm()
}

func (m *RestoreModel) renderInputForm() string {
	adaptiveTitleStyle, adaptiveFormStyle, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("🔄 Restore Ledger")
	form := adaptiveFormStyle.Render(labelStyle.Render("Backup File:") + "\n" + m.backupFileInput.View())

	parts := []string{title, form}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	parts = append(parts, adaptiveHelpStyle.Render("Ctrl+F: Browse files • Enter: Continue • Esc: Back to menu"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *RestoreModel) renderConfirmation() string {
	title := titleStyle.Render("⚠️  Confirm Restore Operation")

	warningText := warningStyle.Render("Customers with the same name will be overwritten.")

	replaceText := "Delete all customers first: "
	if m.replace {
		replaceText += successStyle.Render("✓ YES")
	} else {
		replaceText += errorStyle.Render("✗ NO")
	}

	details := fmt.Sprintf(
		"📋 Restore Details:\n"+
			"   File: %s\n"+
			"   Format: %s\n"+
			"   %s",
		m.backupFileInput.Value(),
		strings.ToUpper(m.format),
		replaceText,
	)

	help := helpStyle.Render("R: Toggle delete first • Y/Enter: Confirm • N/Esc: Cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, warningText, details, help)
}

func (m *RestoreModel) renderResult() string {
	title := titleStyle.Render("🔄 Restore Complete")

	var status string
	if m.err != nil {
		status = errorStyle.Render(fmt.Sprintf("❌ Restore failed: %v", m.err))
	} else {
		status = successStyle.Render("✅ Restore completed successfully!")
	}

	stats := fmt.Sprintf(
		"📊 Restore Information:\n"+
			"   Source file: %s\n"+
			"   Customers restored: %d",
		m.backupFileInput.Value(),
		m.restored,
	)

	help := helpStyle.Render("Enter: Restore another file • Esc: Back to menu")

	return lipgloss.JoinVertical(lipgloss.Left, title, status, stats, help)
}
