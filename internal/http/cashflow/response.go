package cashflow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
)

type entryResponse struct {
	ID            int64           `json:"id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Type          cashflow.Type   `json:"type"`
	Vendor        string          `json:"vendor,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type reportResponse struct {
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	TotalMoneyIn  decimal.Decimal `json:"totalMoneyIn"`
	TotalMoneyOut decimal.Decimal `json:"totalMoneyOut"`
	NetCashflow   decimal.Decimal `json:"netCashflow"`
	Count         int             `json:"count"`
	Transactions  []entryResponse `json:"transactions"`
}

func toResponse(e *cashflow.Entry) entryResponse {
	return entryResponse{
		ID:            e.ID,
		Date:          e.Date,
		Description:   e.Description,
		Category:      e.Category,
		Amount:        e.Amount,
		Type:          e.Type(),
		Vendor:        e.Vendor,
		PaymentMethod: e.PaymentMethod,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toResponseList(entries []*cashflow.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}

func toReportResponse(r *cashflow.Report) reportResponse {
	return reportResponse{
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		TotalMoneyIn:  r.TotalMoneyIn,
		TotalMoneyOut: r.TotalMoneyOut,
		NetCashflow:   r.NetCashflow,
		Count:         r.Count,
		Transactions:  toResponseList(r.Transactions),
	}
}
