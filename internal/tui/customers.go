package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/models"
)

type CustomersState int

const (
	CustomersLoadingState CustomersState = iota
	CustomersListState
	CustomersConfirmState
)

var customerHeaders = []string{"", "No", "Meter Name", "Unit Price (TL/kWh)", "Start Index", "End Index", "Correction", "Total Amount (TL)"}

type CustomersModel struct {
	ledger      *ledger.Ledger
	state       CustomersState
	records     []models.CustomerRecord
	checked     map[int]bool
	cursor      int
	status      string
	statusStyle lipgloss.Style
	width       int
	height      int
}

type customersLoadedMsg struct {
	records []models.CustomerRecord
	err     error
}

type customersDeletedMsg struct {
	deleted int
	records []models.CustomerRecord
	err     error
}

func NewCustomersModel(l *ledger.Ledger) *CustomersModel {
	return &CustomersModel{
		ledger:  l,
		checked: make(map[int]bool),
	}
}

// Init reloads the listing each time the screen is entered.
func (m *CustomersModel) Init() tea.Cmd {
	m.state = CustomersLoadingState
	m.status = ""
	return m.load()
}

func (m *CustomersModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *CustomersModel) AtRoot() bool {
	return m.state != CustomersConfirmState
}

func (m *CustomersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case CustomersListState:
			return m.updateListState(msg)
		case CustomersConfirmState:
			return m.updateConfirmState(msg)
		}

	case customersLoadedMsg:
		m.state = CustomersListState
		if msg.err != nil {
			m.setStatus(errorStyle, fmt.Sprintf("Could not read customers from the database: %v", msg.err))
			return m, nil
		}
		m.setRecords(msg.records)
		return m, nil

	case customersDeletedMsg:
		m.state = CustomersListState
		if isNoSelection(msg.err) {
			m.setStatus(warningStyle, msg.err.Error())
			return m, nil
		}
		if msg.err != nil {
			m.setStatus(errorStyle, fmt.Sprintf("Delete failed: %v", msg.err))
			return m, m.load()
		}
		m.setRecords(msg.records)
		m.setStatus(successStyle, fmt.Sprintf("Deleted %d selected customer(s)", msg.deleted))
		return m, nil
	}

	return m, nil
}

func (m *CustomersModel) updateListState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}
	case " ", "x":
		if len(m.records) > 0 {
			id := m.records[m.cursor].ID
			m.checked[id] = !m.checked[id]
		}
	case "a":
		m.ToggleAll()
	case "r":
		m.state = CustomersLoadingState
		return m, m.load()
	case "d", "delete":
		if len(m.Selected()) == 0 {
			m.setStatus(warningStyle, ledger.ErrNoSelection.Error())
			return m, nil
		}
		m.state = CustomersConfirmState
	}
	return m, nil
}

func (m *CustomersModel) updateConfirmState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.state = CustomersLoadingState
		return m, m.delete(m.Selected())
	case "n", "esc":
		m.state = CustomersListState
	}
	return m, nil
}

// ToggleAll checks every row, or clears every row when all are
// already checked.
func (m *CustomersModel) ToggleAll() {
	all := len(m.records) > 0
	for _, rec := range m.records {
		if !m.checked[rec.ID] {
			all = false
			break
		}
	}

	m.checked = make(map[int]bool, len(m.records))
	if all {
		return
	}
	for _, rec := range m.records {
		m.checked[rec.ID] = true
	}
}

// Selected returns the checked display ids in ascending order.
func (m *CustomersModel) Selected() []int {
	var ids []int
	for id, ok := range m.checked {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

func (m *CustomersModel) setRecords(records []models.CustomerRecord) {
	m.records = records
	m.checked = make(map[int]bool, len(records))
	if m.cursor >= len(records) {
		m.cursor = len(records) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *CustomersModel) setStatus(style lipgloss.Style, text string) {
	m.statusStyle = style
	m.status = text
}

func (m *CustomersModel) load() tea.Cmd {
	return func() tea.Msg {
		records, err := m.ledger.ListAll(context.Background())
		return customersLoadedMsg{records: records, err: err}
	}
}

func (m *CustomersModel) delete(ids []int) tea.Cmd {
	return func() tea.Msg {
		if len(ids) == 0 {
			return customersDeletedMsg{err: ledger.ErrNoSelection}
		}
		ctx := context.Background()
		deleted, err := m.ledger.Delete(ctx, ids)
		if err != nil {
			return customersDeletedMsg{err: err}
		}
		records, err := m.ledger.ListAll(ctx)
		return customersDeletedMsg{deleted: deleted, records: records, err: err}
	}
}

func (m *CustomersModel) table() *table.Table {
	rows := make([][]string, 0, len(m.records))
	for _, rec := range m.records {
		box := "[ ]"
		if m.checked[rec.ID] {
			box = "[x]"
		}
		rows = append(rows, []string{
			box,
			strconv.Itoa(rec.ID),
			rec.Name,
			rec.UnitPrice.String(),
			rec.StartIndex.String(),
			rec.EndIndex.String(),
			rec.Correction.String(),
			billing.FormatAmount(ledger.Total(rec)),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(accent)).
		Headers(customerHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCellStyle
			case row == m.cursor:
				return cursorCellStyle
			}
			return cellStyle
		})
}

func (m *CustomersModel) View() string {
	adaptiveTitleStyle, _, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("👥 Customers")
	parts := []string{title}

	switch {
	case m.state == CustomersLoadingState:
		parts = append(parts, "Loading customers...")
	case len(m.records) == 0:
		parts = append(parts, warningStyle.Render("No customers recorded yet"))
	default:
		parts = append(parts, m.table().Render())
	}

	help := "↑/↓: Move • Space: Select • A: Select all • D: Delete selected • R: Refresh • Esc: Back to menu"
	if m.state == CustomersConfirmState {
		parts = append(parts, warningStyle.Render(fmt.Sprintf("Delete %d selected customer(s)?", len(m.Selected()))))
		help = "Y/Enter: Delete • N/Esc: Cancel"
	}

	if m.status != "" {
		parts = append(parts, m.statusStyle.Render(m.status))
	}
	parts = append(parts, adaptiveHelpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func isNoSelection(err error) bool {
	return errors.Is(err, ledger.ErrNoSelection)
}
