package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
)

const (
	summarySheet      = "Summary"
	transactionsSheet = "Transactions"
)

var transactionHeader = []string{"Date", "Description", "Category", "Type", "Amount", "Vendor", "Payment Method"}

// Reports builds the cashflow report an export is rendered from.
type Reports interface {
	Report(ctx context.Context, start, end time.Time) (*cashflow.Report, error)
}

// Service renders cashflow reports as spreadsheets and text digests.
type Service struct {
	reports Reports
}

func NewService(reports Reports) *Service {
	return &Service{reports: reports}
}

// WriteXLSX writes a workbook with a summary sheet and one row per ledger entry in [start, end].
func (s *Service) WriteXLSX(ctx context.Context, w io.Writer, start, end time.Time) (*cashflow.Report, error) {
	report, err := s.reports.Report(ctx, start, end)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("naming summary sheet: %w", err)
	}

	if err := writeSummarySheet(f, report); err != nil {
		return nil, err
	}

	if err := writeTransactionsSheet(f, report); err != nil {
		return nil, err
	}

	if err := f.Write(w); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	return report, nil
}

func writeSummarySheet(f *excelize.File, report *cashflow.Report) error {
	rows := [][]any{
		{"Cashflow Report"},
		{"Start Date", report.StartDate.Format(time.DateOnly)},
		{"End Date", report.EndDate.Format(time.DateOnly)},
		{},
		{"Total Money In", money(report.TotalMoneyIn)},
		{"Total Money Out", money(report.TotalMoneyOut)},
		{"Net Cashflow", money(report.NetCashflow)},
		{"Transactions", report.Count},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("creating title style: %w", err)
	}

	if err := f.SetCellStyle(summarySheet, "A1", "A1", bold); err != nil {
		return fmt.Errorf("styling title: %w", err)
	}

	return f.SetColWidth(summarySheet, "A", "B", 20)
}

func writeTransactionsSheet(f *excelize.File, report *cashflow.Report) error {
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return fmt.Errorf("creating transactions sheet: %w", err)
	}

	header := make([]any, len(transactionHeader))
	for i, h := range transactionHeader {
		header[i] = h
	}

	if err := f.SetSheetRow(transactionsSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range report.Transactions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := []any{
			e.Date.Format(time.DateOnly),
			e.Description,
			e.Category,
			string(e.Type()),
			money(e.Amount),
			e.Vendor,
			e.PaymentMethod,
		}

		if err := f.SetSheetRow(transactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing entry %d: %w", e.ID, err)
		}
	}

	if err := f.SetPanes(transactionsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	return f.SetColWidth(transactionsSheet, "B", "B", 40)
}

// WriteCSV writes one line per ledger entry in [start, end] with a header row.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, start, end time.Time) (*cashflow.Report, error) {
	report, err := s.reports.Report(ctx, start, end)
	if err != nil {
		return nil, err
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(transactionHeader); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for _, e := range report.Transactions {
		record := []string{
			e.Date.Format(time.DateOnly),
			e.Description,
			e.Category,
			string(e.Type()),
			e.Amount.StringFixed(2),
			e.Vendor,
			e.PaymentMethod,
		}

		if err := cw.Write(record); err != nil {
			return nil, fmt.Errorf("writing entry %d: %w", e.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return report, nil
}

// Summary renders a plain-text digest of the report, one line per entry.
func (s *Service) Summary(report *cashflow.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Cashflow %s to %s\n", report.StartDate.Format(time.DateOnly), report.EndDate.Format(time.DateOnly))
	fmt.Fprintf(&sb, "Money in:  ₱%s\n", report.TotalMoneyIn.StringFixed(2))
	fmt.Fprintf(&sb, "Money out: ₱%s\n", report.TotalMoneyOut.StringFixed(2))
	fmt.Fprintf(&sb, "Net:       ₱%s\n", report.NetCashflow.StringFixed(2))

	if len(report.Transactions) > 0 {
		sb.WriteString("\n")
	}

	for _, e := range report.Transactions {
		sign := "-"
		if e.Type() == cashflow.TypeIn {
			sign = "+"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s₱%s\n",
			e.Date.Format(time.DateOnly), e.Description, e.Category, sign, e.Magnitude().StringFixed(2))
	}

	return sb.String()
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
