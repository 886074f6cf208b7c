package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
)

type Method string

const MethodGCash Method = "gcash"

type Type string

const (
	TypePartial Type = "partial"
	TypeFull    Type = "full"
)

func (t Type) Valid() bool {
	return t == TypePartial || t == TypeFull
}

// Status moves from pending to exactly one of paid or failed.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusFailed
}

var ErrNotFound = apperr.NotFound("payment not found")

// Payment is one attempt to pay toward an order. Amount is the order total at submission time
// and AmountPaid is what the customer sent.
type Payment struct {
	ID               int64
	OrderID          int64
	Method           Method
	Type             Type
	Status           Status
	Amount           decimal.Decimal
	AmountPaid       decimal.Decimal
	RemainingBalance decimal.Decimal
	ReferenceNumber  string
	VerifiedBy       *int64
	VerifiedAt       *time.Time
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
