package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
)

// Status is the position of an order on the production board.
type Status string

const (
	StatusPaymentPending Status = "payment_pending"
	StatusPending        Status = "pending"
	StatusDesigning      Status = "designing"
	StatusRipping        Status = "ripping"
	StatusHeatpress      Status = "heatpress"
	StatusAssembly       Status = "assembly"
	StatusQA             Status = "qa"
	StatusPacking        Status = "packing"
	StatusDone           Status = "done"
	StatusShipping       Status = "shipping"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// Statuses lists every status in board order.
var Statuses = []Status{
	StatusPaymentPending, StatusPending, StatusDesigning, StatusRipping, StatusHeatpress, StatusAssembly,
	StatusQA, StatusPacking, StatusDone, StatusShipping, StatusDelivered, StatusCancelled,
}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}

	return false
}

// GuestPasswordHash marks customers created at checkout. It is not a bcrypt hash, so no password matches it.
const GuestPasswordHash = "!guest-checkout"

var ErrNotFound = apperr.NotFound("order not found")

// CustomerInfo is the contact data captured at checkout and copied onto the order.
type CustomerInfo struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type Customer struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	CreatedAt    time.Time
}

type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

type Item struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Name      string
	Size      string
	Quantity  int
	UnitPrice decimal.Decimal
}

type Order struct {
	ID               int64
	Ref              string
	CustomerID       int64
	Customer         CustomerInfo
	Total            decimal.Decimal
	BalanceRemaining decimal.Decimal
	Status           Status
	PaymentID        *int64
	Items            []Item
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
