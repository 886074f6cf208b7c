package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/importer"
	"github.com/m-cagatin/rfmclothingshop/internal/matching"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStatePick importState = iota
	importStateParsing
	importStateReview
	importStateSaving
	importStateConflicts
	importStateResult
)

// ImportModel walks a GCash statement from file to ledger. Parsed lines are shown with their
// direction and suggested category so the operator can recategorize or skip them before saving.
type ImportModel struct {
	cashflowService *cashflow.Service
	importService   *importer.Service
	matchingService *matching.Service

	state      importState
	filePicker filepicker.Model
	file       string

	staged   stagedImport
	table    table.Model
	editing  bool
	category textinput.Model

	fresh     []cashflow.ImportParams
	conflicts []cashflow.Conflict
	keep      map[int]bool
	list      list.Model

	status string
	err    error
}

func NewImportModel(cashflowSvc *cashflow.Service, impSvc *importer.Service, matchSvc *matching.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.SetHeight(15)

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "", Width: 3},
			{Title: "Date", Width: 12},
			{Title: "Type", Width: 5},
			{Title: "Amount", Width: 14},
			{Title: "Category", Width: 16},
			{Title: "Description", Width: 40},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
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

	ti := textinput.New()
	ti.Placeholder = "category"
	ti.CharLimit = 40
	ti.Width = 20

	return ImportModel{
		cashflowService: cashflowSvc,
		importService:   impSvc,
		matchingService: matchSvc,
		filePicker:      fp,
		table:           t,
		category:        ti,
	}
}

func (m ImportModel) Title() string { return "Import GCash Statement" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateReview:
		if m.editing {
			return "Enter: apply | Esc: cancel (blank restores suggestion)"
		}

		return "Space: skip/keep | c: category | Enter: import | Esc: pick another file"
	case importStateConflicts:
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-14, 5))
		if m.state == importStateConflicts {
			m.list.SetSize(msg.Width-4, msg.Height-8)
		}

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateReview:
			return m.updateReview(msg)
		case importStateConflicts:
			return m.updateConflicts(msg)
		}

	case importParsedMsg:
		return m.handleParsed(msg), nil

	case importSavedMsg:
		return m.handleSaved(msg), nil
	}

	if m.state != importStatePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateParsing
		m.file = path
		m.status = "Reading " + filepath.Base(path) + "..."

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateReview:
		if m.editing {
			m.editing = false
			m.category.Blur()

			return m, nil
		}

		return m.reset(), nil
	case importStateConflicts, importStateResult:
		return m.reset(), nil
	}

	return m, Back
}

func (m ImportModel) reset() ImportModel {
	m.state = importStatePick
	m.staged = stagedImport{}
	m.fresh = nil
	m.conflicts = nil
	m.keep = nil
	m.editing = false
	m.status = ""
	m.err = nil

	return m
}

func (m ImportModel) handleParsed(msg importParsedMsg) ImportModel {
	if msg.err != nil {
		m.state = importStateResult
		m.err = msg.err
		m.status = fmt.Sprintf("Error: %v", msg.err)

		return m
	}

	if len(msg.params) == 0 {
		m.state = importStateResult
		m.status = "No transactions found in " + filepath.Base(m.file) + "."

		return m
	}

	m.staged = newStagedImport(msg.params)
	m.table.SetRows(m.staged.rows())
	m.table.SetCursor(0)
	m.state = importStateReview
	m.status = ""
	m.err = nil

	return m
}

func (m ImportModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		if msg.Type == tea.KeyEnter {
			if err := m.staged.setCategory(m.table.Cursor(), m.category.Value()); err != nil {
				m.err = err
				return m, nil
			}

			m.editing = false
			m.err = nil
			m.category.Blur()
			m.table.SetRows(m.staged.rows())

			return m, nil
		}

		var cmd tea.Cmd
		m.category, cmd = m.category.Update(msg)

		return m, cmd
	}

	switch msg.String() {
	case " ":
		m.staged.toggle(m.table.Cursor())
		m.table.SetRows(m.staged.rows())

		return m, nil
	case "c":
		if len(m.staged.lines) == 0 {
			return m, nil
		}

		m.editing = true
		m.err = nil
		m.category.SetValue(m.staged.lines[m.table.Cursor()].category())
		m.category.CursorEnd()

		return m, m.category.Focus()
	case "enter":
		params := m.staged.included()
		if len(params) == 0 {
			m.err = errAllSkipped
			return m, nil
		}

		m.state = importStateSaving
		m.err = nil
		m.status = fmt.Sprintf("Saving %d lines...", len(params))

		return m, m.saveCmd(params, m.staged.rules())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ImportModel) handleSaved(msg importSavedMsg) ImportModel {
	if msg.err != nil {
		m.state = importStateResult
		m.err = msg.err
		m.status = fmt.Sprintf("Error: %v", msg.err)

		return m
	}

	if len(msg.conflicts) == 0 {
		m.state = importStateResult
		m.status = summarizeImport(msg.entries, msg.learned)

		return m
	}

	m.state = importStateConflicts
	m.fresh = msg.fresh
	m.conflicts = msg.conflicts
	m.keep = make(map[int]bool)

	items := make([]list.Item, len(m.conflicts))
	for i, c := range m.conflicts {
		items[i] = conflictItem{conflict: c, index: i}
	}

	m.list = list.New(items, conflictDelegate{keep: m.keep}, 100, 20)
	m.list.Title = fmt.Sprintf("%d lines look already recorded; tick the ones to import anyway", len(m.conflicts))
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(false)
	m.list.SetShowHelp(false)

	return m
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.list.Index()
		m.keep[idx] = !m.keep[idx]

		return m, nil
	case "a", "n":
		for i := range m.conflicts {
			m.keep[i] = msg.String() == "a"
		}

		return m, nil
	case "enter":
		params := append([]cashflow.ImportParams(nil), m.fresh...)
		for i, c := range m.conflicts {
			if m.keep[i] {
				params = append(params, c.Incoming)
			}
		}

		m.state = importStateSaving
		m.status = fmt.Sprintf("Saving %d lines...", len(params))

		return m, m.confirmCmd(params, m.staged.rules())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStatePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a GCash statement (.csv or .xlsx):\n\n" + m.filePicker.View(),
		)
	case importStateParsing, importStateSaving:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateReview:
		return m.viewReview()
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.list.View())
	case importStateResult:
		style := successStyle
		if m.err != nil {
			style = errorStyle
		}

		return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to import another file)")
	}

	return ""
}

func (m ImportModel) viewReview() string {
	var b strings.Builder

	b.WriteString(filepath.Base(m.file) + "\n\n")
	b.WriteString(m.table.View() + "\n\n")

	t := m.staged.totals()
	fmt.Fprintf(&b, "%d of %d lines  In %s  Out %s  Net %s\n",
		t.count, len(m.staged.lines),
		FormatAmount(t.moneyIn), FormatAmount(t.moneyOut), FormatSigned(t.net()))

	if m.editing {
		b.WriteString("\nCategory: " + m.category.View() + "\n")
	}

	if rules := m.staged.rules(); len(rules) > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("* edited; %d expense rule(s) will be learned", len(rules))) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

func summarizeImport(entries []*cashflow.Entry, learned int) string {
	var in, out int

	for _, e := range entries {
		if e.Type() == cashflow.TypeIn {
			in++
		} else {
			out++
		}
	}

	s := fmt.Sprintf("Imported %d entries (%d money in, %d money out).", len(entries), in, out)
	if learned > 0 {
		s += fmt.Sprintf(" Learned %d category rule(s).", learned)
	}

	return s
}

// Messages

type importParsedMsg struct {
	params []cashflow.ImportParams
	err    error
}

type importSavedMsg struct {
	entries   []*cashflow.Entry
	fresh     []cashflow.ImportParams
	conflicts []cashflow.Conflict
	learned   int
	err       error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importParsedMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Import(importer.SourceGCash, f)
		if err != nil {
			return importParsedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		m.matchingService.Categorize(ctx, params)

		return importParsedMsg{params: params}
	}
}

func (m ImportModel) saveCmd(params []cashflow.ImportParams, rules []categoryRule) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.cashflowService.ImportBatch(ctx, params)
		if err != nil {
			return importSavedMsg{err: err}
		}

		if len(result.Conflicts) > 0 {
			return importSavedMsg{fresh: result.New, conflicts: result.Conflicts}
		}

		learned, err := m.learn(ctx, rules)

		return importSavedMsg{entries: result.Imported, learned: learned, err: err}
	}
}

func (m ImportModel) confirmCmd(params []cashflow.ImportParams, rules []categoryRule) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		entries, err := m.cashflowService.CreateBatch(ctx, params)
		if err != nil {
			return importSavedMsg{err: err}
		}

		learned, err := m.learn(ctx, rules)

		return importSavedMsg{entries: entries, learned: learned, err: err}
	}
}

func (m ImportModel) learn(ctx context.Context, rules []categoryRule) (int, error) {
	for i, r := range rules {
		if _, err := m.matchingService.Learn(ctx, r.pattern, r.category); err != nil {
			return i, fmt.Errorf("entries saved, learning rule for %q: %w", r.pattern, err)
		}
	}

	return len(rules), nil
}

type conflictItem struct {
	conflict cashflow.Conflict
	index    int
}

func (i conflictItem) Title() string       { return i.conflict.Incoming.Description }
func (i conflictItem) Description() string { return i.conflict.Existing.Description }
func (i conflictItem) FilterValue() string { return i.conflict.Incoming.Description }

// conflictDelegate renders an incoming line above the ledger entry it collides with.
type conflictDelegate struct {
	keep map[int]bool
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	box := "[ ]"
	if d.keep[item.index] {
		box = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = activeStyle("> ")
	}

	in := item.conflict.Incoming
	ex := item.conflict.Existing

	fmt.Fprintf(w, "%s%s %s %-3s %14s  %s [%s]\n",
		cursor, box, FormatDate(in.Date), strings.ToUpper(string(in.Type())),
		FormatSigned(in.Amount), in.Description, stagedLine{params: in}.category())
	fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf("      ledger #%d %s %-3s %14s  %s [%s]",
		ex.ID, FormatDate(ex.Date), strings.ToUpper(string(ex.Type())),
		FormatSigned(ex.Amount), ex.Description, ex.Category)))
}
