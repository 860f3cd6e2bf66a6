package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/models"
)

type ReadingState int

const (
	ReadingInputState ReadingState = iota
	ReadingSavingState
	ReadingConfirmState
)

const (
	nameField = iota
	priceField
	startField
	endField
	correctionField
	fieldCount
)

var readingLabels = [fieldCount]string{
	"Meter Name:",
	"Unit Price (TL/kWh):",
	"Start Index:",
	"End Index:",
	"Correction:",
}

type ReadingModel struct {
	ledger       *ledger.Ledger
	state        ReadingState
	inputs       [fieldCount]textinput.Model
	focusedInput int
	pending      billing.Reading
	existing     *models.CustomerRecord
	result       string
	status       string
	statusStyle  lipgloss.Style
	width        int
	height       int
}

type readingLookupMsg struct {
	reading  billing.Reading
	existing *models.CustomerRecord
	err      error
}

type readingSavedMsg struct {
	reading billing.Reading
	outcome ledger.Outcome
	err     error
}

func NewReadingModel(l *ledger.Ledger) *ReadingModel {
	m := &ReadingModel{ledger: l}

	placeholders := [fieldCount]string{"Meter-A", "2.5", "100", "150", "0"}
	for i := range m.inputs {
		input := textinput.New()
		input.Placeholder = placeholders[i]
		if i != nameField {
			input.CharLimit = 32
		}
		m.inputs[i] = input
	}
	m.inputs[nameField].Focus()

	return m
}

func (m *ReadingModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ReadingModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ReadingModel) AtRoot() bool {
	return m.state == ReadingInputState
}

func (m *ReadingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case ReadingInputState:
			return m.updateInputState(msg)
		case ReadingConfirmState:
			return m.updateConfirmState(msg)
		case ReadingSavingState:
			return m, nil
		}

	case readingLookupMsg:
		if msg.err != nil {
			m.state = ReadingInputState
			m.setStatus(errorStyle, fmt.Sprintf("Could not read the database: %v", msg.err))
			return m, nil
		}
		if msg.existing == nil {
			return m, m.save(msg.reading, ledger.NeverOverwrite)
		}
		m.pending = msg.reading
		m.existing = msg.existing
		m.state = ReadingConfirmState
		return m, nil

	case readingSavedMsg:
		m.state = ReadingInputState
		m.existing = nil
		if msg.err != nil {
			m.setStatus(errorStyle, fmt.Sprintf("Save failed: %v", msg.err))
			return m, nil
		}
		if msg.outcome == ledger.Cancelled {
			m.setStatus(warningStyle, fmt.Sprintf("%s was not changed", msg.reading.Name))
			return m, nil
		}
		m.setStatus(successStyle, "Data saved to the database")
		m.clearInputs()
		return m, nil
	}

	var cmd tea.Cmd
	if m.state == ReadingInputState {
		m.inputs[m.focusedInput], cmd = m.inputs[m.focusedInput].Update(msg)
	}
	return m, cmd
}

func (m *ReadingModel) updateInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.focusedInput = (m.focusedInput + 1) % fieldCount
		m.updateInputFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusedInput = (m.focusedInput - 1 + fieldCount) % fieldCount
		m.updateInputFocus()
		return m, nil
	case "enter":
		if m.focusedInput < fieldCount-1 {
			m.focusedInput++
			m.updateInputFocus()
			return m, nil
		}
		m.calculate()
		return m, nil
	case "ctrl+t":
		m.calculate()
		return m, nil
	case "ctrl+s":
		return m.startSave()
	}

	var cmd tea.Cmd
	m.inputs[m.focusedInput], cmd = m.inputs[m.focusedInput].Update(msg)
	return m, cmd
}

func (m *ReadingModel) updateConfirmState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.state = ReadingSavingState
		return m, m.save(m.pending, ledger.AlwaysOverwrite)
	case "n", "esc":
		m.state = ReadingSavingState
		return m, m.save(m.pending, ledger.NeverOverwrite)
	}
	return m, nil
}

// parse reads the form. Invalid numbers are reported in the status line
// and nothing else happens.
func (m *ReadingModel) parse() (billing.Reading, bool) {
	reading, err := billing.ParseReading(
		m.inputs[nameField].Value(),
		m.inputs[priceField].Value(),
		m.inputs[startField].Value(),
		m.inputs[endField].Value(),
		m.inputs[correctionField].Value(),
	)
	if err != nil {
		var inputErr *billing.InvalidInputError
		if errors.As(err, &inputErr) {
			m.result = "Invalid input! Please enter valid numbers."
		}
		m.setStatus(errorStyle, err.Error())
		return billing.Reading{}, false
	}
	return reading, true
}

func (m *ReadingModel) calculate() {
	reading, ok := m.parse()
	if !ok {
		return
	}
	m.result = billing.Summary(reading.Name, reading.Total()) + " TL"
	m.setStatus(successStyle, fmt.Sprintf("Total amount calculated for %s", reading.Name))
}

func (m *ReadingModel) startSave() (tea.Model, tea.Cmd) {
	reading, ok := m.parse()
	if !ok {
		return m, nil
	}
	if strings.TrimSpace(reading.Name) == "" {
		m.setStatus(warningStyle, "Saving without a meter name")
	}
	m.state = ReadingSavingState
	return m, m.lookup(reading)
}

func (m *ReadingModel) lookup(reading billing.Reading) tea.Cmd {
	return func() tea.Msg {
		existing, err := m.ledger.Find(context.Background(), reading.Name)
		return readingLookupMsg{reading: reading, existing: existing, err: err}
	}
}

func (m *ReadingModel) save(reading billing.Reading, confirm ledger.Confirmer) tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.ledger.Upsert(context.Background(), reading, confirm)
		return readingSavedMsg{reading: reading, outcome: outcome, err: err}
	}
}

func (m *ReadingModel) setStatus(style lipgloss.Style, text string) {
	m.statusStyle = style
	m.status = text
}

func (m *ReadingModel) clearInputs() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.focusedInput = nameField
	m.updateInputFocus()
}

func (m *ReadingModel) updateInputFocus() {
	for i := range m.inputs {
		if i == m.focusedInput {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *ReadingModel) View() string {
	adaptiveTitleStyle, adaptiveFormStyle, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("⚡ Electricity Meter Reading")

	var fields []string
	for i := range m.inputs {
		fields = append(fields, labelStyle.Render(readingLabels[i])+"\n"+m.inputs[i].View())
	}
	form := adaptiveFormStyle.Render(strings.Join(fields, "\n\n"))

	parts := []string{title, form}
	if m.result != "" {
		parts = append(parts, successStyle.Render(m.result))
	}

	var help string
	switch m.state {
	case ReadingConfirmState:
		parts = append(parts, warningStyle.Render(fmt.Sprintf(
			"A customer named %q already exists (no %d). Do you want to update it?",
			m.existing.Name, m.existing.ID)))
		help = "Y/Enter: Update • N/Esc: Keep existing"
	case ReadingSavingState:
		help = "Saving..."
	default:
		help = "Tab/Shift+Tab: Navigate • Ctrl+T: Calculate • Ctrl+S: Save • Esc: Back to menu"
	}

	if m.status != "" {
		parts = append(parts, m.statusStyle.Render(m.status))
	}
	parts = append(parts, adaptiveHelpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
