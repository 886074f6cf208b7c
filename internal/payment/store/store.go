package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-cagatin/rfmclothingshop/internal/payment"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectPaymentColumns = `
	id, order_id, payment_method, payment_type, payment_status, amount, amount_paid, remaining_balance,
	reference_number, verified_by, verified_at, paid_at, created_at, updated_at
`

func scanPayment(s scanner) (*payment.Payment, error) {
	var (
		p                   payment.Payment
		method, typ, status string
		verifiedBy          sql.NullInt64
		verifiedAt, paidAt  sql.NullTime
	)

	if err := s.Scan(
		&p.ID, &p.OrderID, &method, &typ, &status, &p.Amount, &p.AmountPaid, &p.RemainingBalance,
		&p.ReferenceNumber, &verifiedBy, &verifiedAt, &paidAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Method = payment.Method(method)
	p.Type = payment.Type(typ)
	p.Status = payment.Status(status)

	if verifiedBy.Valid {
		p.VerifiedBy = &verifiedBy.Int64
	}

	if verifiedAt.Valid {
		p.VerifiedAt = &verifiedAt.Time
	}

	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}

	return &p, nil
}

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			order_id, payment_method, payment_type, payment_status, amount, amount_paid,
			remaining_balance, reference_number, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.OrderID,
		p.Method,
		p.Type,
		p.Status,
		p.Amount,
		p.AmountPaid,
		p.RemainingBalance,
		p.ReferenceNumber,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*payment.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrNotFound
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	return p, nil
}

func (s *Store) ListPayments(ctx context.Context, filter payment.ListFilter) ([]*payment.Payment, error) {
	var (
		where []string
		args  []any
	)

	argIdx := 1

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("payment_status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Method != nil {
		where = append(where, fmt.Sprintf("payment_method = $%d", argIdx))
		args = append(args, *filter.Method)
		argIdx++
	}

	if filter.Type != nil {
		where = append(where, fmt.Sprintf("payment_type = $%d", argIdx))
		args = append(args, *filter.Type)
	}

	query := `SELECT ` + selectPaymentColumns + ` FROM payments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return payments, nil
}

// MarkVerified only touches rows still in pending, so a payment is verified at most once.
func (s *Store) MarkVerified(ctx context.Context, id int64, status payment.Status, verifiedBy int64, at time.Time) error {
	query := `
		UPDATE payments
		SET payment_status = $1,
			verified_by = $2,
			verified_at = $3,
			paid_at = CASE WHEN $1 = 'paid' THEN $3 ELSE paid_at END,
			updated_at = NOW()
		WHERE id = $4 AND payment_status = 'pending'
	`

	res, err := s.db.ExecContext(ctx, query, string(status), verifiedBy, at, id)
	if err != nil {
		return fmt.Errorf("verifying payment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("verifying payment: %w", err)
	}

	if n > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking payment: %w", err)
	}

	if !exists {
		return payment.ErrNotFound
	}

	return payment.ErrNotPending
}
