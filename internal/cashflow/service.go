package cashflow

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=cashflow
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, id int64) (*Entry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []ImportParams) ([]*Entry, error)
	CreateEntries(ctx context.Context, entries []*Entry) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	loc  *time.Location
}

// NewService builds the cashflow service. Report periods are computed in loc, which defaults to UTC.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{repo: repo, loc: loc}
}

// Location is the zone report periods and plain dates are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// MoneyParams is the input of AddMoneyIn and AddMoneyOut. Amount is a magnitude and must be positive.
type MoneyParams struct {
	Description   string
	Amount        decimal.Decimal
	Category      string
	Vendor        string
	PaymentMethod string
	Date          *time.Time
	// ReferenceNumber is accepted for API compatibility and not persisted.
	ReferenceNumber string
	// SourceRef makes the posting idempotent; see Entry.SourceRef.
	SourceRef string
}

type UpdateParams struct {
	Description   *string
	Amount        *decimal.Decimal
	Category      *string
	Vendor        *string
	PaymentMethod *string
	Date          *time.Time
}

type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  *string
	Type      *Type
}

func (s *Service) AddMoneyIn(ctx context.Context, params MoneyParams) (*Entry, error) {
	if err := validateMoney(params); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(params.Category)
	if category == "" {
		category = CategoryIncome
	}

	e := s.newEntry(params, category, params.Amount.Abs())
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) AddMoneyOut(ctx context.Context, params MoneyParams) (*Entry, error) {
	if err := validateMoney(params); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(params.Category)
	if category == "" {
		return nil, apperr.Validation("category is required")
	}

	e := s.newEntry(params, expenseCategory(category), params.Amount.Abs().Neg())
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, apperr.Validationf("type must be %q or %q", TypeIn, TypeOut)
	}

	return s.repo.ListEntries(ctx, filter)
}

// Update applies a partial patch. A new amount keeps the sign of the stored entry,
// so an update can change the magnitude but never the direction.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Entry, error) {
	e, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Description != nil {
		desc := strings.TrimSpace(*params.Description)
		if desc == "" {
			return nil, apperr.Validation("description cannot be empty")
		}

		e.Description = desc
	}

	if params.Amount != nil {
		if params.Amount.IsZero() {
			return nil, apperr.Validation("amount must be greater than 0")
		}

		if !wholeCents(*params.Amount) {
			return nil, apperr.Validation("amount must have at most 2 decimal places")
		}

		magnitude := params.Amount.Abs()
		if e.Amount.IsNegative() {
			magnitude = magnitude.Neg()
		}

		e.Amount = magnitude
	}

	if params.Category != nil {
		category := strings.TrimSpace(*params.Category)
		if category == "" {
			return nil, apperr.Validation("category cannot be empty")
		}

		if e.Type() == TypeOut {
			category = expenseCategory(category)
		}

		e.Category = category
	}

	if params.Vendor != nil {
		e.Vendor = *params.Vendor
	}

	if params.PaymentMethod != nil {
		e.PaymentMethod = *params.PaymentMethod
	}

	if params.Date != nil {
		e.Date = *params.Date
	}

	if err := s.repo.UpdateEntry(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteEntry(ctx, id)
}

// Reset removes every ledger entry and reports how many were deleted.
func (s *Service) Reset(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}

func (s *Service) newEntry(params MoneyParams, category string, amount decimal.Decimal) *Entry {
	date := time.Now()
	if params.Date != nil && !params.Date.IsZero() {
		date = *params.Date
	}

	return &Entry{
		Date:          date,
		Description:   strings.TrimSpace(params.Description),
		Category:      category,
		Amount:        amount,
		Vendor:        params.Vendor,
		PaymentMethod: params.PaymentMethod,
		SourceRef:     strings.TrimSpace(params.SourceRef),
	}
}

func validateMoney(params MoneyParams) error {
	if strings.TrimSpace(params.Description) == "" {
		return apperr.Validation("description is required")
	}

	if !params.Amount.IsPositive() {
		return apperr.Validation("amount must be greater than 0")
	}

	if !wholeCents(params.Amount) {
		return apperr.Validation("amount must have at most 2 decimal places")
	}

	return nil
}

// wholeCents reports whether d fits the NUMERIC(12,2) columns without rounding.
func wholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// expenseCategory keeps expenses out of the income category in reports.
func expenseCategory(category string) string {
	if category == CategoryIncome {
		return CategoryGeneral
	}

	return category
}
