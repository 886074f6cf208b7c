package cashflow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
)

// Type is the direction of a ledger entry. It is derived from the sign of the amount and never stored.
type Type string

const (
	TypeIn  Type = "in"
	TypeOut Type = "out"
)

func (t Type) Valid() bool {
	return t == TypeIn || t == TypeOut
}

const (
	CategoryIncome  = "income"
	CategoryGeneral = "general"
	CategorySales   = "sales"
)

var (
	ErrNotFound = apperr.NotFound("cashflow entry not found")
	// ErrAlreadyRecorded is returned when an entry with the same SourceRef exists.
	ErrAlreadyRecorded = apperr.Conflict("cashflow entry already recorded")
)

// Entry is one signed money movement. Positive amounts are income, negative amounts are expenses.
type Entry struct {
	ID            int64
	Date          time.Time
	Description   string
	Category      string
	Amount        decimal.Decimal
	Vendor        string
	PaymentMethod string
	// SourceRef identifies the record that produced the entry, e.g. "payment:42". At most one entry
	// exists per non-empty SourceRef.
	SourceRef     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (e *Entry) Type() Type {
	if e.Amount.IsPositive() {
		return TypeIn
	}

	return TypeOut
}

// Magnitude returns the unsigned amount.
func (e *Entry) Magnitude() decimal.Decimal {
	return e.Amount.Abs()
}

// Report aggregates the entries of an inclusive date range.
// TotalMoneyIn and TotalMoneyOut are both positive magnitudes.
type Report struct {
	StartDate     time.Time
	EndDate       time.Time
	TotalMoneyIn  decimal.Decimal
	TotalMoneyOut decimal.Decimal
	NetCashflow   decimal.Decimal
	Count         int
	Transactions  []*Entry
}
