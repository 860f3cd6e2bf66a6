package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/csv"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
)

type ImportModel struct {
	ledger       *ledger.Ledger
	state        ImportState
	csvFileInput textinput.Model
	overwrite    bool
	progress     progress.Model
	progressVal  float64
	pending      []billing.Reading
	result       ImportResult
	files        []string
	selectedFile int
	width        int
	height       int
}

type ImportState int

const (
	ImportInputState ImportState = iota
	ImportFileSelectState
	ImportProgressState
	ImportResultState
)

type ImportResult struct {
	TotalRecords   int
	NewRecords     int
	UpdatedRecords int
	SkippedRecords int
	Error          error
}

// importStepMsg reports one saved row; the next row is scheduled from
// Update so the progress bar can move between rows.
type importStepMsg struct {
	outcome ledger.Outcome
	err     error
}

type importParsedMsg struct {
	readings []billing.Reading
	err      error
}

func NewImportModel(l *ledger.Ledger) *ImportModel {
	csvInput := textinput.New()
	csvInput.Placeholder = "path/to/readings.csv"
	csvInput.Focus()

	progressBar := progress.New(
		progress.WithSolidFill("#00aadd"),
		progress.WithoutPercentage(),
	)

	return &ImportModel{
		ledger:       l,
		state:        ImportInputState,
		csvFileInput: csvInput,
		progress:     progressBar,
	}
}

func (m *ImportModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ImportModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ImportModel) AtRoot() bool {
	return m.state == ImportInputState || m.state == ImportResultState
}

func (m *ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case ImportInputState:
			return m.updateInputState(msg)
		case ImportFileSelectState:
			return m.updateFileSelectState(msg)
		case ImportProgressState:
			return m, nil
		case ImportResultState:
			if msg.String() == "enter" || msg.String() == " " {
				m.reset()
			}
			return m, nil
		}

	case importParsedMsg:
		if msg.err != nil {
			return m.finish(msg.err)
		}
		m.pending = msg.readings
		m.result = ImportResult{TotalRecords: len(msg.readings)}
		if len(m.pending) == 0 {
			return m.finish(nil)
		}
		return m, m.saveNext()

	case importStepMsg:
		if msg.err != nil {
			return m.finish(msg.err)
		}
		switch msg.outcome {
		case ledger.Inserted:
			m.result.NewRecords++
		case ledger.Updated:
			m.result.UpdatedRecords++
		case ledger.Cancelled:
			m.result.SkippedRecords++
		}
		m.pending = m.pending[1:]
		if m.result.TotalRecords > 0 {
			m.progressVal = float64(m.result.TotalRecords-len(m.pending)) / float64(m.result.TotalRecords)
		}
		if len(m.pending) == 0 {
			return m.finish(nil)
		}
		return m, m.saveNext()
	}

	if m.state == ImportInputState {
		m.csvFileInput, cmd = m.csvFileInput.Update(msg)
	}
	return m, cmd
}

func (m *ImportModel) updateInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+f":
		return m.browseFiles()
	case "ctrl+o":
		m.overwrite = !m.overwrite
		return m, nil
	case "enter":
		if strings.TrimSpace(m.csvFileInput.Value()) != "" {
			return m.startImport()
		}
		return m, nil
	}

	m.csvFileInput, cmd = m.csvFileInput.Update(msg)
	return m, cmd
}

func (m *ImportModel) updateFileSelectState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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
			m.csvFileInput.SetValue(m.files[m.selectedFile])
			m.state = ImportInputState
		}
	case "esc":
		m.state = ImportInputState
	}
	return m, nil
}

func (m *ImportModel) browseFiles() (tea.Model, tea.Cmd) {
	files, err := listFiles("*.csv")
	if err != nil {
		return m, ShowError(err)
	}

	m.files = files
	m.selectedFile = 0
	m.state = ImportFileSelectState
	return m, nil
}

func (m *ImportModel) startImport() (tea.Model, tea.Cmd) {
	m.state = ImportProgressState
	m.progressVal = 0
	m.result = ImportResult{}

	file := strings.TrimSpace(m.csvFileInput.Value())
	return m, func() tea.Msg {
		readings, err := csv.NewParser(file).ParseReadings()
		if err != nil {
			return importParsedMsg{err: fmt.Errorf("failed to parse CSV: %w", err)}
		}
		return importParsedMsg{readings: readings}
	}
}

func (m *ImportModel) saveNext() tea.Cmd {
	reading := m.pending[0]
	confirm := ledger.NeverOverwrite
	if m.overwrite {
		confirm = ledger.AlwaysOverwrite
	}
	return func() tea.Msg {
		outcome, err := m.ledger.Upsert(context.Background(), reading, confirm)
		if err != nil {
			err = fmt.Errorf("failed to save %q: %w", reading.Name, err)
		}
		return importStepMsg{outcome: outcome, err: err}
	}
}

func (m *ImportModel) finish(err error) (tea.Model, tea.Cmd) {
	m.result.Error = err
	m.pending = nil
	m.state = ImportResultState
	return m, nil
}

func (m *ImportModel) reset() {
	m.state = ImportInputState
	m.progressVal = 0
	m.result = ImportResult{}
	m.csvFileInput.SetValue("")
	m.csvFileInput.Focus()
}

func (m *ImportModel) View() string {
	switch m.state {
	case ImportFileSelectState:
		return renderFileSelector("📁 Select CSV File", "No CSV files found in current directory", m.files, m.selectedFile)
	case ImportProgressState:
		return m.renderProgress()
	case ImportResultState:
		return m.renderResult()
	}
	return m.renderInputForm()
}

func (m *ImportModel) renderInputForm() string {
	adaptiveTitleStyle, adaptiveFormStyle, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("📥 Import Readings from CSV")

	overwrite := errorStyle.Render("✗ NO")
	if m.overwrite {
		overwrite = successStyle.Render("✓ YES")
	}

	form := adaptiveFormStyle.Render(
		labelStyle.Render("CSV File:") + "\n" + m.csvFileInput.View() + "\n\n" +
			labelStyle.Render("Overwrite existing customers: ") + overwrite + "\n\n" +
			helpStyle.UnsetMargins().Render("Columns: name, unit_price, start_index, end_index, correction"),
	)

	help := adaptiveHelpStyle.Render("Ctrl+F: Browse files • Ctrl+O: Toggle overwrite • Enter: Import • Esc: Back to menu")

	return lipgloss.JoinVertical(lipgloss.Left, title, form, help)
}

func (m *ImportModel) renderProgress() string {
	adaptiveTitleStyle, _, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("📥 Importing Readings...")

	progressWidth := m.width - 10
	if progressWidth < 20 {
		progressWidth = 20
	}
	if progressWidth > 80 {
		progressWidth = 80
	}
	m.progress.Width = progressWidth

	progressText := fmt.Sprintf("Progress: %.1f%%", m.progressVal*100)
	content := progressStyle.Render(m.progress.ViewAs(m.progressVal) + "\n" + progressText)
	help := adaptiveHelpStyle.Render("Please wait while readings are being saved...")

	return lipgloss.JoinVertical(lipgloss.Left, title, content, help)
}

func (m *ImportModel) renderResult() string {
	title := titleStyle.Render("📥 Import Complete")

	var status string
	if m.result.Error != nil {
		status = errorStyle.Render(fmt.Sprintf("❌ Import failed: %v", m.result.Error))
	} else {
		status = successStyle.Render("✅ Import completed successfully!")
	}

	stats := fmt.Sprintf(
		"📊 Import Statistics:\n"+
			"   Total readings: %d\n"+
			"   New customers: %d\n"+
			"   Updated customers: %d\n"+
			"   Skipped (already present): %d",
		m.result.TotalRecords,
		m.result.NewRecords,
		m.result.UpdatedRecords,
		m.result.SkippedRecords,
	)

	help := helpStyle.Render("Enter: Import another file • Esc: Back to menu")

	return lipgloss.JoinVertical(lipgloss.Left, title, status, stats, help)
}

// listFiles returns the files in the working directory matching the
// given patterns, relative to it.
func listFiles(patterns ...string) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(cwd, pattern))
		if err != nil {
			return nil, err
		}
		for _, file := range matches {
			rel, err := filepath.Rel(cwd, file)
			if err != nil {
				rel = file
			}
			files = append(files, rel)
		}
	}
	return files, nil
}

func renderFileSelector(heading, empty string, files []string, selected int) string {
	title := titleStyle.Render(heading)

	if len(files) == 0 {
		content := warningStyle.Render(empty)
		help := helpStyle.Render("Esc: Back to form")
		return lipgloss.JoinVertical(lipgloss.Left, title, content, help)
	}

	var fileList string
	for i, file := range files {
		cursor := " "
		style := menuItemStyle
		if i == selected {
			cursor = ">"
			style = selectedMenuItemStyle
		}
		fileList += fmt.Sprintf("%s %s\n", cursor, style.Render(file))
	}

	help := helpStyle.Render("↑/↓: Navigate • Enter: Select • Esc: Cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, fileList, help)
}
