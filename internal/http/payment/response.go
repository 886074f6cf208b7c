package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/payment"
)

type paymentResponse struct {
	ID               int64           `json:"id"`
	OrderID          int64           `json:"orderId"`
	PaymentMethod    payment.Method  `json:"paymentMethod"`
	PaymentType      payment.Type    `json:"paymentType"`
	PaymentStatus    payment.Status  `json:"paymentStatus"`
	Amount           decimal.Decimal `json:"amount"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	ReferenceNumber  string          `json:"referenceNumber"`
	VerifiedBy       *int64          `json:"verifiedBy,omitempty"`
	VerifiedAt       *time.Time      `json:"verifiedAt,omitempty"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func toResponse(p *payment.Payment) paymentResponse {
	return paymentResponse{
		ID:               p.ID,
		OrderID:          p.OrderID,
		PaymentMethod:    p.Method,
		PaymentType:      p.Type,
		PaymentStatus:    p.Status,
		Amount:           p.Amount,
		AmountPaid:       p.AmountPaid,
		RemainingBalance: p.RemainingBalance,
		ReferenceNumber:  p.ReferenceNumber,
		VerifiedBy:       p.VerifiedBy,
		VerifiedAt:       p.VerifiedAt,
		PaidAt:           p.PaidAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toResponseList(ps []*payment.Payment) []paymentResponse {
	resp := make([]paymentResponse, len(ps))
	for i, p := range ps {
		resp[i] = toResponse(p)
	}

	return resp
}

type submitResponse struct {
	PaymentID        int64           `json:"paymentId"`
	OrderID          string          `json:"orderId"`
	PaymentType      payment.Type    `json:"paymentType"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	PaymentStatus    payment.Status  `json:"paymentStatus"`
}

func toSubmitResponse(res *payment.SubmitResult) submitResponse {
	return submitResponse{
		PaymentID:        res.PaymentID,
		OrderID:          res.OrderRef,
		PaymentType:      res.Type,
		AmountPaid:       res.AmountPaid,
		RemainingBalance: res.RemainingBalance,
		PaymentStatus:    res.Status,
	}
}

type verifyResponse struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	Payment       *paymentResponse `json:"payment,omitempty"`
	LedgerEntryID *int64           `json:"ledgerEntryId,omitempty"`
}

func toVerifyResponse(res *payment.VerifyResult) verifyResponse {
	resp := verifyResponse{
		Success:       res.Success,
		Message:       res.Message,
		LedgerEntryID: res.LedgerEntryID,
	}

	if res.Payment != nil {
		resp.Payment = new(toResponse(res.Payment))
	}

	return resp
}
