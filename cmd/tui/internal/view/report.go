package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/export"
)

type reportState int

const (
	reportStateTimeframe reportState = iota
	reportStateLoading
	reportStateResult
)

// ReportModel shows money in, money out and net cashflow for a chosen period.
type ReportModel struct {
	cashflowService *cashflow.Service
	exportService   *export.Service

	state           reportState
	timeframePicker TimeframePicker
	report          *cashflow.Report
	details         viewport.Model
	err             error
}

func NewReportModel(cashflowSvc *cashflow.Service, exportSvc *export.Service) ReportModel {
	vp := viewport.New(80, 15)

	return ReportModel{
		cashflowService: cashflowSvc,
		exportService:   exportSvc,
		timeframePicker: NewTimeframePicker(cashflowSvc, TimeframeToday),
		details:         vp,
	}
}

func (m ReportModel) Title() string { return "Cashflow Report" }

func (m ReportModel) ShortHelp() string {
	if m.state == reportStateResult {
		return "↑/↓: scroll | Esc: pick another period"
	}

	return "Esc: back | Enter: select"
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.state = reportStateLoading
		return m, m.loadReportCmd(msg.Start, msg.End)

	case reportLoadedMsg:
		m.state = reportStateResult
		m.err = msg.err
		m.report = msg.report

		if msg.report != nil {
			m.details.SetContent(m.exportService.Summary(msg.report))
			m.details.GotoTop()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.details.Width = msg.Width - 4
		m.details.Height = msg.Height - 14

		return m, nil
	}

	switch m.state {
	case reportStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd

	case reportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = reportStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		}

		var cmd tea.Cmd
		m.details, cmd = m.details.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ReportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case reportStateTimeframe:
		return style.Render(m.timeframePicker.View())
	case reportStateLoading:
		return style.Render("Building report...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	r := m.report

	net := successStyle.Render(FormatAmount(r.NetCashflow))
	if r.NetCashflow.IsNegative() {
		net = errorStyle.Render("-" + FormatAmount(r.NetCashflow.Abs()))
	}

	totals := lipgloss.NewStyle().
		Padding(0, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(fmt.Sprintf(
			"%s to %s\n\nMoney in:  %s\nMoney out: %s\nNet:       %s\nEntries:   %d",
			r.StartDate.Format(time.DateOnly), r.EndDate.Format(time.DateOnly),
			FormatAmount(r.TotalMoneyIn), FormatAmount(r.TotalMoneyOut), net, r.Count,
		))

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, totals, "", m.details.View()))
}

type reportLoadedMsg struct {
	report *cashflow.Report
	err    error
}

func (m ReportModel) loadReportCmd(start, end time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		report, err := m.cashflowService.Report(ctx, start, end)

		return reportLoadedMsg{report: report, err: err}
	}
}
