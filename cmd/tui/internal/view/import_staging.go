package view

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
)

var (
	errIncomeOnMoneyOut = errors.New("money out cannot be filed under income")
	errAllSkipped       = errors.New("every line is skipped, keep at least one")
)

// stagedLine is a parsed statement line waiting for the operator's review.
type stagedLine struct {
	params    cashflow.ImportParams
	suggested string
	include   bool
}

func (l stagedLine) edited() bool {
	return l.params.Category != l.suggested
}

// category is the value the ledger will store for the line.
func (l stagedLine) category() string {
	switch {
	case l.params.Category != "":
		return l.params.Category
	case l.params.Type() == cashflow.TypeIn:
		return cashflow.CategoryIncome
	default:
		return cashflow.CategoryGeneral
	}
}

type stagedImport struct {
	lines []stagedLine
}

func newStagedImport(params []cashflow.ImportParams) stagedImport {
	lines := make([]stagedLine, len(params))
	for i, p := range params {
		lines[i] = stagedLine{params: p, suggested: p.Category, include: true}
	}

	return stagedImport{lines: lines}
}

func (s *stagedImport) toggle(i int) {
	if i < 0 || i >= len(s.lines) {
		return
	}

	s.lines[i].include = !s.lines[i].include
}

// setCategory overrides the suggested category of line i. A blank value restores the suggestion.
func (s *stagedImport) setCategory(i int, category string) error {
	if i < 0 || i >= len(s.lines) {
		return nil
	}

	line := &s.lines[i]

	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		line.params.Category = line.suggested
		return nil
	}

	if category == cashflow.CategoryIncome && line.params.Type() == cashflow.TypeOut {
		return errIncomeOnMoneyOut
	}

	line.params.Category = category

	return nil
}

func (s stagedImport) included() []cashflow.ImportParams {
	var out []cashflow.ImportParams

	for _, l := range s.lines {
		if l.include {
			out = append(out, l.params)
		}
	}

	return out
}

type categoryRule struct {
	pattern  string
	category string
}

// rules returns the recategorized money-out lines the matcher should learn from.
func (s stagedImport) rules() []categoryRule {
	var out []categoryRule

	seen := make(map[string]bool)

	for _, l := range s.lines {
		if !l.include || !l.edited() || l.params.Type() != cashflow.TypeOut {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(l.params.Description))
		if seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, categoryRule{pattern: l.params.Description, category: l.params.Category})
	}

	return out
}

type stagedTotals struct {
	count    int
	moneyIn  decimal.Decimal
	moneyOut decimal.Decimal
}

func (t stagedTotals) net() decimal.Decimal {
	return t.moneyIn.Sub(t.moneyOut)
}

func (s stagedImport) totals() stagedTotals {
	var t stagedTotals

	for _, l := range s.lines {
		if !l.include {
			continue
		}

		t.count++

		if l.params.Type() == cashflow.TypeIn {
			t.moneyIn = t.moneyIn.Add(l.params.Amount)
		} else {
			t.moneyOut = t.moneyOut.Add(l.params.Amount.Abs())
		}
	}

	return t
}

func (s stagedImport) rows() []table.Row {
	rows := make([]table.Row, len(s.lines))

	for i, l := range s.lines {
		mark := "[x]"
		if !l.include {
			mark = "[ ]"
		}

		category := l.category()
		if l.edited() {
			category += "*"
		}

		rows[i] = table.Row{
			mark,
			FormatDate(l.params.Date),
			strings.ToUpper(string(l.params.Type())),
			FormatSigned(l.params.Amount),
			category,
			l.params.Description,
		}
	}

	return rows
}
