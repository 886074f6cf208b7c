// Package reconcile retries ledger postings that failed while a payment was being approved.
package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/logging"
)

// Job is a money-in posting that still has to reach the ledger.
type Job struct {
	ID              string          `json:"id"`
	PaymentID       int64           `json:"payment_id"`
	OrderRef        string          `json:"order_ref"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	Vendor          string          `json:"vendor,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	SourceRef       string          `json:"source_ref,omitempty"`
	Date            time.Time       `json:"date"`
	EnqueuedAt      time.Time       `json:"enqueued_at"`
	LastError       string          `json:"last_error,omitempty"`
}

// NewJob captures a failed posting.
func NewJob(paymentID int64, orderRef string, params cashflow.MoneyParams, cause error) Job {
	job := Job{
		ID:              uuid.NewString(),
		PaymentID:       paymentID,
		OrderRef:        orderRef,
		Description:     params.Description,
		Amount:          params.Amount,
		Category:        params.Category,
		Vendor:          params.Vendor,
		PaymentMethod:   params.PaymentMethod,
		ReferenceNumber: params.ReferenceNumber,
		SourceRef:       params.SourceRef,
		EnqueuedAt:      time.Now().UTC(),
	}

	if params.Date != nil {
		job.Date = *params.Date
	}

	if cause != nil {
		job.LastError = cause.Error()
	}

	return job
}

// MoneyParams rebuilds the ledger input of the job. The source reference falls back to the job id,
// so redelivered messages post at most once.
func (j Job) MoneyParams() cashflow.MoneyParams {
	params := cashflow.MoneyParams{
		Description:     j.Description,
		Amount:          j.Amount,
		Category:        j.Category,
		Vendor:          j.Vendor,
		PaymentMethod:   j.PaymentMethod,
		ReferenceNumber: j.ReferenceNumber,
		SourceRef:       j.SourceRef,
	}

	if params.SourceRef == "" {
		params.SourceRef = "reconcile:" + j.ID
	}

	if !j.Date.IsZero() {
		params.Date = new(j.Date)
	}

	return params
}

// LogQueue records jobs in the structured log only. It is used when no SQS queue is configured,
// leaving the operator to post the entry by hand.
type LogQueue struct{}

func (LogQueue) Enqueue(ctx context.Context, job Job) error {
	logging.FromContext(ctx).Warn("ledger reconciliation required",
		"job_id", job.ID,
		"payment_id", job.PaymentID,
		"order_ref", job.OrderRef,
		"amount", job.Amount.StringFixed(2),
		"error", job.LastError,
	)

	return nil
}
