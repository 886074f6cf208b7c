package gcash

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	enc "github.com/m-cagatin/rfmclothingshop/internal/encoding"
)

const paymentMethod = "gcash"

// zipMagic starts every .xlsx file.
var zipMagic = []byte("PK\x03\x04")

// dateLayouts are the timestamp formats seen in GCash exports, most specific first.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
	"2006-01-02 03:04 PM",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	"01/02/2006 03:04 PM",
	"Jan 2, 2006 3:04 PM",
	time.DateOnly,
	"01/02/2006",
}

// Parser reads GCash CSV or XLSX exports and produces ledger import lines.
// It detects whether the file is a wallet history export or a business export
// by matching column headers against known profiles.
type Parser struct {
	loc *time.Location
}

func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}

	return &Parser{loc: loc}
}

func (p *Parser) Parse(r io.Reader) ([]cashflow.ImportParams, error) {
	br := bufio.NewReader(r)

	if magic, _ := br.Peek(len(zipMagic)); bytes.Equal(magic, zipMagic) {
		return p.parseXLSX(br)
	}

	utf8r, err := enc.NewUTF8Reader(br)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return p.parseTable(rows)
}

// parseXLSX reads the first sheet that carries a known header.
func (p *Parser) parseXLSX(r io.Reader) ([]cashflow.ImportParams, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		if prof, _, _ := detectProfile(rows); prof != nil {
			return p.parseTable(rows)
		}
	}

	return nil, fmt.Errorf("no matching GCash format found in any sheet")
}

func (p *Parser) parseTable(rows [][]string) ([]cashflow.ImportParams, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching GCash format found: expected columns for history or business exports")
	}

	return p.parseRows(profile, colMap, rows[headerIdx+1:], headerIdx)
}

// colIndex maps lowercased column names to their index in the row.
type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a parseable date or a non-zero amount (totals, footers, balance lines).
func (p *Parser) parseRows(prof *Profile, cols colIndex, rows [][]string, headerIdx int) ([]cashflow.ImportParams, error) {
	dateIdx := cols[prof.DateCol]
	descIdx := cols[prof.DescCol]

	refIdx := -1
	if idx, ok := cols[prof.RefCol]; ok {
		refIdx = idx
	}

	var lines []cashflow.ImportParams

	for i, row := range rows {
		rowNum := headerIdx + i + 2 // 1-based, after the header

		date, ok := p.parseDate(cellValue(row, dateIdx))
		if !ok {
			continue
		}

		amount, ok := parseAmount(prof, cols, row)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		// Same-day transfers of equal amounts to one recipient differ only by reference.
		if ref := cellValue(row, refIdx); ref != "" && !strings.Contains(desc, ref) {
			desc = fmt.Sprintf("%s (Ref %s)", desc, ref)
		}

		lines = append(lines, cashflow.ImportParams{
			Date:          date,
			Description:   desc,
			Amount:        amount,
			PaymentMethod: paymentMethod,
		})
	}

	return lines, nil
}

func (p *Parser) parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseAmount returns a signed amount, negative for money out.
func parseAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, bool) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleAmount(row, cols[p.AmountCol])
	case amountSplit:
		return parseSplitAmount(row, cols[p.DebitCol], cols[p.CreditCol])
	}

	return decimal.Zero, false
}

func parseSingleAmount(row []string, idx int) (decimal.Decimal, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parsePesoAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func parseSplitAmount(row []string, debitIdx, creditIdx int) (decimal.Decimal, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		d, err := parsePesoAmount(s)
		if err == nil && !d.IsZero() {
			return d.Abs().Neg(), true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		d, err := parsePesoAmount(s)
		if err == nil && !d.IsZero() {
			return d.Abs(), true
		}
	}

	return decimal.Zero, false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
