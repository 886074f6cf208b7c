package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/logging"
	"github.com/m-cagatin/rfmclothingshop/internal/order"
	"github.com/m-cagatin/rfmclothingshop/internal/reconcile"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListPayments(ctx context.Context, filter ListFilter) ([]*Payment, error)
	// MarkVerified moves a pending payment to status. It returns ErrNotPending when the
	// payment has already been verified.
	MarkVerified(ctx context.Context, id int64, status Status, verifiedBy int64, at time.Time) error
}

type Orders interface {
	Get(ctx context.Context, id int64) (*order.Order, error)
	GetByRef(ctx context.Context, ref string) (*order.Order, error)
	CreateForCheckout(ctx context.Context, params order.CheckoutParams) (*order.Order, error)
	UpdatePaymentState(ctx context.Context, orderID int64, balance decimal.Decimal, paymentID *int64, status order.Status) error
}

type Ledger interface {
	AddMoneyIn(ctx context.Context, params cashflow.MoneyParams) (*cashflow.Entry, error)
}

type Queue interface {
	Enqueue(ctx context.Context, job reconcile.Job) error
}

var ErrNotPending = errors.New("payment is not pending")

type Service struct {
	repo   Repository
	orders Orders
	ledger Ledger
	queue  Queue
	now    func() time.Time
}

func NewService(repo Repository, orders Orders, ledger Ledger, queue Queue) *Service {
	if queue == nil {
		queue = reconcile.LogQueue{}
	}

	return &Service{
		repo:   repo,
		orders: orders,
		ledger: ledger,
		queue:  queue,
		now:    time.Now,
	}
}

// SubmitParams is a customer's payment. Total, Customer and Items are only needed when no order
// exists yet for OrderRef.
type SubmitParams struct {
	OrderRef        string
	Amount          decimal.Decimal
	Type            Type
	ReferenceNumber string
	Total           *decimal.Decimal
	Customer        *order.CustomerInfo
	Items           []order.ItemParams
}

type SubmitResult struct {
	PaymentID        int64
	OrderID          int64
	OrderRef         string
	Type             Type
	AmountPaid       decimal.Decimal
	RemainingBalance decimal.Decimal
	Status           Status
}

type VerifyResult struct {
	Success bool
	Message string
	Payment *Payment
	// LedgerEntryID is nil when the ledger posting was deferred to reconciliation.
	LedgerEntryID *int64
}

type ListFilter struct {
	Status *Status
	Method *Method
	Type   *Type
}

var minPartialRatio = decimal.NewFromFloat(0.5)

// LedgerSourceRef is the cashflow source reference of the money-in entry posted for a payment.
func LedgerSourceRef(paymentID int64) string {
	return fmt.Sprintf("payment:%d", paymentID)
}

func (s *Service) Submit(ctx context.Context, params SubmitParams) (*SubmitResult, error) {
	if strings.TrimSpace(params.ReferenceNumber) == "" {
		return nil, apperr.Validation("referenceNumber is required")
	}

	if strings.TrimSpace(params.OrderRef) == "" {
		return nil, apperr.Validation("orderId is required")
	}

	if !params.Type.Valid() {
		return nil, apperr.Validationf("paymentType must be %q or %q", TypePartial, TypeFull)
	}

	if !params.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than 0")
	}

	if !params.Amount.Equal(params.Amount.Round(2)) {
		return nil, apperr.Validation("amount must have at most 2 decimal places")
	}

	o, err := s.orders.GetByRef(ctx, params.OrderRef)
	if errors.Is(err, order.ErrNotFound) {
		o, err = s.createOrder(ctx, params)
	}

	if err != nil {
		return nil, err
	}

	if err := validateAmount(params.Type, params.Amount, o.Total); err != nil {
		return nil, err
	}

	remaining := decimal.Zero
	if params.Type == TypePartial {
		remaining = o.Total.Sub(params.Amount)
	}

	p := &Payment{
		OrderID:          o.ID,
		Method:           MethodGCash,
		Type:             params.Type,
		Status:           StatusPending,
		Amount:           o.Total,
		AmountPaid:       params.Amount,
		RemainingBalance: remaining,
		ReferenceNumber:  strings.TrimSpace(params.ReferenceNumber),
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	// Every submission sends the order back to the payment queue, whatever stage it had reached.
	if err := s.orders.UpdatePaymentState(ctx, o.ID, remaining, &p.ID, order.StatusPaymentPending); err != nil {
		return nil, err
	}

	if o.Status != order.StatusPaymentPending {
		logging.FromContext(ctx).Info("order reopened for payment",
			"order_ref", o.Ref, "previous_status", o.Status, "payment_id", p.ID)
	}

	return &SubmitResult{
		PaymentID:        p.ID,
		OrderID:          o.ID,
		OrderRef:         o.Ref,
		Type:             p.Type,
		AmountPaid:       p.AmountPaid,
		RemainingBalance: p.RemainingBalance,
		Status:           p.Status,
	}, nil
}

func (s *Service) createOrder(ctx context.Context, params SubmitParams) (*order.Order, error) {
	if params.Customer == nil || len(params.Items) == 0 || params.Total == nil {
		return nil, apperr.Validation("customerInfo, orderItems and total are required to create a new order")
	}

	if !params.Total.Equal(params.Total.Round(2)) {
		return nil, apperr.Validation("total must have at most 2 decimal places")
	}

	balance := decimal.Zero
	if params.Type == TypePartial {
		balance = params.Total.Sub(params.Amount)
	}

	return s.orders.CreateForCheckout(ctx, order.CheckoutParams{
		Ref:              strings.TrimSpace(params.OrderRef),
		Customer:         *params.Customer,
		Items:            params.Items,
		Total:            *params.Total,
		BalanceRemaining: balance,
	})
}

func validateAmount(t Type, amount, total decimal.Decimal) error {
	switch t {
	case TypeFull:
		if !amount.Equal(total) {
			return apperr.Validationf("full payment must equal the order total of %s", total.StringFixed(2))
		}
	case TypePartial:
		minimum := total.Mul(minPartialRatio)
		if amount.LessThan(minimum) {
			return apperr.Validationf("partial payment must be at least 50%% of the order total (%s)", minimum.StringFixed(2))
		}

		if amount.GreaterThanOrEqual(total) {
			return apperr.Validation("partial payment must be less than the order total; use a full payment instead")
		}
	}

	return nil
}

// Approve marks a pending payment as paid, carries its remaining balance onto the order and posts the
// installment to the ledger. A ledger failure does not fail the approval; the posting is queued for
// reconciliation instead.
func (s *Service) Approve(ctx context.Context, paymentID, verifierID int64) (*VerifyResult, error) {
	p, err := s.pending(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.markVerified(ctx, p, StatusPaid, verifierID, now); err != nil {
		return nil, err
	}

	p.PaidAt = &now

	o, err := s.orders.Get(ctx, p.OrderID)
	if err != nil {
		return nil, fmt.Errorf("loading order of payment %d: %w", p.ID, err)
	}

	status := order.StatusPending
	if p.RemainingBalance.IsPositive() {
		status = order.StatusPaymentPending
	}

	if err := s.orders.UpdatePaymentState(ctx, o.ID, p.RemainingBalance, &p.ID, status); err != nil {
		return nil, err
	}

	result := &VerifyResult{
		Success: true,
		Message: "Payment approved successfully",
		Payment: p,
	}

	entryID, err := s.postToLedger(ctx, p, o, now)
	if err != nil {
		result.Message = "Payment approved; ledger entry queued for reconciliation"
		return result, nil
	}

	result.LedgerEntryID = &entryID

	return result, nil
}

// Reject marks a pending payment as failed. The order and the ledger are left untouched.
func (s *Service) Reject(ctx context.Context, paymentID, verifierID int64) (*VerifyResult, error) {
	p, err := s.pending(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.markVerified(ctx, p, StatusFailed, verifierID, s.now()); err != nil {
		return nil, err
	}

	return &VerifyResult{
		Success: true,
		Message: "Payment rejected",
		Payment: p,
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Payment, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperr.Validationf("unknown payment status %q", *filter.Status)
	}

	if filter.Type != nil && !filter.Type.Valid() {
		return nil, apperr.Validationf("unknown payment type %q", *filter.Type)
	}

	return s.repo.ListPayments(ctx, filter)
}

func (s *Service) pending(ctx context.Context, paymentID int64) (*Payment, error) {
	p, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if p.Status != StatusPending {
		return nil, apperr.Conflictf("payment %d is already %s", p.ID, p.Status)
	}

	return p, nil
}

func (s *Service) markVerified(ctx context.Context, p *Payment, status Status, verifierID int64, at time.Time) error {
	err := s.repo.MarkVerified(ctx, p.ID, status, verifierID, at)
	if errors.Is(err, ErrNotPending) {
		return apperr.Conflictf("payment %d was verified concurrently", p.ID)
	}

	if err != nil {
		return err
	}

	p.Status = status
	p.VerifiedBy = &verifierID
	p.VerifiedAt = &at

	return nil
}

func (s *Service) postToLedger(ctx context.Context, p *Payment, o *order.Order, at time.Time) (int64, error) {
	params := cashflow.MoneyParams{
		Description:     fmt.Sprintf("Payment for order %s", o.Ref),
		Amount:          p.AmountPaid,
		Category:        cashflow.CategorySales,
		Vendor:          o.Customer.Name,
		PaymentMethod:   string(p.Method),
		Date:            &at,
		ReferenceNumber: p.ReferenceNumber,
		SourceRef:       LedgerSourceRef(p.ID),
	}

	entry, err := s.ledger.AddMoneyIn(ctx, params)
	if err == nil {
		return entry.ID, nil
	}

	logger := logging.FromContext(ctx)
	logger.Warn("failed to record cashflow entry for approved payment",
		"payment_id", p.ID, "order_ref", o.Ref, "amount", p.AmountPaid.StringFixed(2), "error", err)

	if qerr := s.queue.Enqueue(ctx, reconcile.NewJob(p.ID, o.Ref, params, err)); qerr != nil {
		logger.Error("failed to enqueue ledger reconciliation",
			"payment_id", p.ID, "order_ref", o.Ref, "error", qerr)
	}

	return 0, err
}
