package cashflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
)

// ImportParams is one statement line. Amount is signed: positive for money in.
type ImportParams struct {
	Date          time.Time
	Description   string
	Category      string
	Amount        decimal.Decimal
	Vendor        string
	PaymentMethod string
}

func (p ImportParams) Type() Type {
	if p.Amount.IsPositive() {
		return TypeIn
	}

	return TypeOut
}

type ImportResult struct {
	Imported  []*Entry
	New       []ImportParams
	Conflicts []Conflict
}

// Conflict pairs an incoming line with the stored entry it appears to duplicate.
type Conflict struct {
	Incoming ImportParams
	Existing *Entry
}

type dupKey struct {
	Date        string
	Amount      string
	Description string
}

func (s *Service) keyOf(date time.Time, amount decimal.Decimal, description string) dupKey {
	return dupKey{
		Date:        date.In(s.loc).Format(time.DateOnly),
		Amount:      amount.StringFixed(2),
		Description: strings.ToLower(description),
	}
}

// ImportBatch stores statement lines unless some of them look like entries already in the ledger.
// When conflicts exist nothing is written and the caller decides which lines to confirm through CreateBatch.
func (s *Service) ImportBatch(ctx context.Context, params []ImportParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	params, err := normalizeImport(params)
	if err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Entry, len(duplicates))
	for _, d := range duplicates {
		lookup[s.keyOf(d.Date, d.Amount, d.Description)] = d
	}

	var (
		newParams []ImportParams
		conflicts []Conflict
	)

	for _, p := range params {
		if existing, found := lookup[s.keyOf(p.Date, p.Amount, p.Description)]; found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	entries := paramsToEntries(newParams)
	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("create entries: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: entries}, nil
}

// CreateBatch stores the given lines without duplicate detection.
func (s *Service) CreateBatch(ctx context.Context, params []ImportParams) ([]*Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	params, err := normalizeImport(params)
	if err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	entries := paramsToEntries(params)
	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("create entries: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return entries, nil
}

func normalizeImport(params []ImportParams) ([]ImportParams, error) {
	out := make([]ImportParams, len(params))

	for i, p := range params {
		p.Description = strings.TrimSpace(p.Description)
		if p.Description == "" {
			return nil, apperr.Validationf("line %d: description is required", i+1)
		}

		if p.Amount.IsZero() {
			return nil, apperr.Validationf("line %d: amount must not be zero", i+1)
		}

		if !wholeCents(p.Amount) {
			return nil, apperr.Validationf("line %d: amount must have at most 2 decimal places", i+1)
		}

		p.Category = strings.TrimSpace(p.Category)

		switch {
		case p.Category == "" && p.Type() == TypeIn:
			p.Category = CategoryIncome
		case p.Category == "":
			p.Category = CategoryGeneral
		case p.Type() == TypeOut:
			p.Category = expenseCategory(p.Category)
		}

		out[i] = p
	}

	return out, nil
}

func dateRange(params []ImportParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func paramsToEntries(params []ImportParams) []*Entry {
	entries := make([]*Entry, len(params))
	for i, p := range params {
		entries[i] = &Entry{
			Date:          p.Date,
			Description:   p.Description,
			Category:      p.Category,
			Amount:        p.Amount,
			Vendor:        p.Vendor,
			PaymentMethod: p.PaymentMethod,
		}
	}

	return entries
}
