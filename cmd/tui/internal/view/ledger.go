package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/matching"
)

type ledgerState int

const (
	ledgerStateBrowse ledgerState = iota
	ledgerStateEdit
	ledgerStateAdd
	ledgerStateDelete
)

var (
	typeLabels = []string{"All", "Money In", "Money Out"}
	dateLabels = []string{"All Time", "This Month", "Last Month"}
)

type LedgerModel struct {
	cashflowService *cashflow.Service
	matchingService *matching.Service

	state   ledgerState
	table   table.Model
	entries []*cashflow.Entry
	form    *huh.Form

	typeFilterIdx int
	dateFilterIdx int

	filter  cashflow.ListFilter
	loading bool
	err     error
	status  string
}

func NewLedgerModel(cashflowSvc *cashflow.Service, matchSvc *matching.Service) LedgerModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 5},
		{Title: "Amount", Width: 14},
		{Title: "Category", Width: 14},
		{Title: "Description", Width: 40},
		{Title: "Method", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return LedgerModel{
		cashflowService: cashflowSvc,
		matchingService: matchSvc,
		table:           t,
		loading:         true,
	}
}

func (m LedgerModel) Title() string { return "Cashflow Ledger" }

func (m LedgerModel) ShortHelp() string {
	if m.state != ledgerStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | e: edit | x: delete | t: type filter | d: date filter | r: refresh"
}

func (m LedgerModel) Init() tea.Cmd {
	return m.loadEntriesCmd()
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLedgerMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.entries = msg.entries
		m.refreshTable()

		return m, nil

	case ledgerSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadEntriesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == ledgerStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m LedgerModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadEntriesCmd()
		case "n":
			return m.enterForm(ledgerStateAdd, m.addForm())
		case "e":
			if e := m.selected(); e != nil {
				return m.enterForm(ledgerStateEdit, m.editForm(e))
			}

			return m, nil
		case "x":
			if e := m.selected(); e != nil {
				return m.enterForm(ledgerStateDelete, m.deleteForm(e))
			}

			return m, nil
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % len(typeLabels)
			m.applyFilter(time.Now())

			return m, m.loadEntriesCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateLabels)
			m.applyFilter(time.Now())

			return m, m.loadEntriesCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) selected() *cashflow.Entry {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return nil
	}

	return m.entries[idx]
}

func (m LedgerModel) enterForm(state ledgerState, form *huh.Form) (tea.Model, tea.Cmd) {
	m.state = state
	m.form = form
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.state {
	case ledgerStateAdd:
		return m, m.addCmd()
	case ledgerStateEdit:
		return m, m.editCmd()
	case ledgerStateDelete:
		return m, m.deleteCmd()
	}

	return m, nil
}

func notBlank(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func positiveAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("amount must be a number")
	}

	if !d.IsPositive() {
		return fmt.Errorf("amount must be greater than 0")
	}

	return nil
}

func (m LedgerModel) addForm() *huh.Form {
	var direction, desc, amount, category string

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Money in", string(cashflow.TypeIn)),
					huh.NewOption("Money out", string(cashflow.TypeOut)),
				).
				Value(&direction),
			huh.NewInput().Key("description").Title("Description").Value(&desc).Validate(notBlank("description")),
			huh.NewInput().Key("amount").Title("Amount").Placeholder("0.00").Value(&amount).Validate(positiveAmount),
			huh.NewInput().Key("category").Title("Category").Description("Leave blank to suggest from rules").Value(&category),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LedgerModel) editForm(e *cashflow.Entry) *huh.Form {
	desc, amount, category := e.Description, e.Magnitude().StringFixed(2), e.Category

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("description").Title("Description").Value(&desc).Validate(notBlank("description")),
			huh.NewInput().Key("amount").Title("Amount").Value(&amount).Validate(positiveAmount),
			huh.NewInput().Key("category").Title("Category").Value(&category).Validate(notBlank("category")),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LedgerModel) deleteForm(e *cashflow.Entry) *huh.Form {
	var confirm bool

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete %q (%s)?", e.Description, FormatSigned(e.Amount))).
				Affirmative("Delete").
				Negative("Keep").
				Value(&confirm),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LedgerModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [d] Date: %s",
		activeStyle(typeLabels[m.typeFilterIdx]),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state != ledgerStateBrowse && m.form != nil {
		title := map[ledgerState]string{
			ledgerStateAdd:    "New Entry",
			ledgerStateEdit:   "Edit Entry",
			ledgerStateDelete: "Delete Entry",
		}[m.state]

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *LedgerModel) applyFilter(now time.Time) {
	switch m.typeFilterIdx {
	case 1:
		m.filter.Type = new(cashflow.TypeIn)
	case 2:
		m.filter.Type = new(cashflow.TypeOut)
	default:
		m.filter.Type = nil
	}

	now = now.In(m.cashflowService.Location())

	switch m.dateFilterIdx {
	case 1:
		start, end := m.cashflowService.MonthBounds(now.Year(), now.Month())
		m.filter.StartDate, m.filter.EndDate = &start, &end
	case 2:
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		start, end := m.cashflowService.MonthBounds(prev.Year(), prev.Month())
		m.filter.StartDate, m.filter.EndDate = &start, &end
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *LedgerModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, table.Row{
			FormatDate(e.Date),
			string(e.Type()),
			FormatSigned(e.Amount),
			e.Category,
			e.Description,
			e.PaymentMethod,
		})
	}

	m.table.SetRows(rows)
}

type loadLedgerMsg struct {
	entries []*cashflow.Entry
	err     error
}

func (m LedgerModel) loadEntriesCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.cashflowService.List(ctx, filter)

		return loadLedgerMsg{entries: entries, err: err}
	}
}

type ledgerSaveMsg struct {
	status string
	err    error
}

func (m LedgerModel) addCmd() tea.Cmd {
	direction := m.form.GetString("type")
	params := cashflow.MoneyParams{
		Description:   strings.TrimSpace(m.form.GetString("description")),
		Category:      strings.TrimSpace(m.form.GetString("category")),
		PaymentMethod: "cash",
	}
	amount, _ := decimal.NewFromString(strings.TrimSpace(m.form.GetString("amount")))
	params.Amount = amount

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if params.Category == "" && direction == string(cashflow.TypeOut) {
			suggested, err := m.matchingService.Suggest(ctx, params.Description)
			if err != nil {
				return ledgerSaveMsg{err: err}
			}

			params.Category = suggested
		}

		add := m.cashflowService.AddMoneyIn
		if direction == string(cashflow.TypeOut) {
			add = m.cashflowService.AddMoneyOut
		}

		e, err := add(ctx, params)
		if err != nil {
			return ledgerSaveMsg{err: err}
		}

		return ledgerSaveMsg{status: fmt.Sprintf("Added %s %s", e.Description, FormatSigned(e.Amount))}
	}
}

func (m LedgerModel) editCmd() tea.Cmd {
	e := m.selected()
	if e == nil {
		return nil
	}

	id := e.ID
	desc := m.form.GetString("description")
	category := m.form.GetString("category")
	amount, _ := decimal.NewFromString(strings.TrimSpace(m.form.GetString("amount")))
	oldCategory := e.Category

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.cashflowService.Update(ctx, id, cashflow.UpdateParams{
			Description: &desc,
			Amount:      &amount,
			Category:    &category,
		})
		if err != nil {
			return ledgerSaveMsg{err: err}
		}

		// Recategorized expenses teach the matcher.
		if updated.Type() == cashflow.TypeOut && updated.Category != oldCategory {
			if _, err := m.matchingService.Learn(ctx, updated.Description, updated.Category); err != nil {
				return ledgerSaveMsg{err: err}
			}
		}

		return ledgerSaveMsg{status: "Saved " + updated.Description}
	}
}

func (m LedgerModel) deleteCmd() tea.Cmd {
	e := m.selected()
	if e == nil || !m.form.GetBool("confirm") {
		return func() tea.Msg { return ledgerSaveMsg{} }
	}

	id := e.ID
	desc := e.Description

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.cashflowService.Delete(ctx, id); err != nil {
			return ledgerSaveMsg{err: err}
		}

		return ledgerSaveMsg{status: "Deleted " + desc}
	}
}
