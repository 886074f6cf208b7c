package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/order"
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

const selectOrderColumns = `
	id, order_ref, customer_id, customer_name, customer_email, customer_phone, customer_address,
	total_amount, balance_remaining, status, payment_id, created_at, updated_at
`

func scanOrder(s scanner) (*order.Order, error) {
	var (
		o                     order.Order
		email, phone, address sql.NullString
		status                string
		paymentID             sql.NullInt64
	)

	if err := s.Scan(
		&o.ID, &o.Ref, &o.CustomerID, &o.Customer.Name, &email, &phone, &address,
		&o.Total, &o.BalanceRemaining, &status, &paymentID, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	o.Customer.Email = email.String
	o.Customer.Phone = phone.String
	o.Customer.Address = address.String
	o.Status = order.Status(status)

	if paymentID.Valid {
		o.PaymentID = &paymentID.Int64
	}

	return &o, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) getOrder(ctx context.Context, where string, arg any) (*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM orders WHERE ` + where

	o, err := scanOrder(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("getting order: %w", err)
	}

	items, err := s.listItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	o.Items = items

	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	return s.getOrder(ctx, "id = $1", id)
}

func (s *Store) GetOrderByRef(ctx context.Context, ref string) (*order.Order, error) {
	return s.getOrder(ctx, "order_ref = $1", ref)
}

func (s *Store) listItems(ctx context.Context, orderID int64) ([]order.Item, error) {
	query := `
		SELECT id, order_id, product_id, name, size, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer rows.Close()

	var items []order.Item

	for rows.Next() {
		var (
			it   order.Item
			size sql.NullString
		)

		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &size, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}

		it.Size = size.String
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}

	return items, nil
}

func (s *Store) ListOrders(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM orders`

	var args []any

	if filter.Status != nil {
		query += " WHERE status = $1"

		args = append(args, *filter.Status)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}

	return orders, nil
}

// CreateOrder inserts the order and its items atomically.
func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	orderQuery := `
		INSERT INTO orders (
			order_ref, customer_id, customer_name, customer_email, customer_phone, customer_address,
			total_amount, balance_remaining, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, orderQuery,
		o.Ref,
		o.CustomerID,
		o.Customer.Name,
		nullString(o.Customer.Email),
		nullString(o.Customer.Phone),
		nullString(o.Customer.Address),
		o.Total,
		o.BalanceRemaining,
		o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, size, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID

		err := dbTx.QueryRowContext(ctx, itemQuery,
			it.OrderID, it.ProductID, it.Name, nullString(it.Size), it.Quantity, it.UnitPrice,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("creating order item: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) UpdatePaymentState(ctx context.Context, orderID int64, balance decimal.Decimal, paymentID *int64, status order.Status) error {
	query := `
		UPDATE orders
		SET balance_remaining = $1, payment_id = COALESCE($2, payment_id), status = $3, updated_at = NOW()
		WHERE id = $4
	`

	res, err := s.db.ExecContext(ctx, query, balance, paymentID, status, orderID)
	if err != nil {
		return fmt.Errorf("updating order payment state: %w", err)
	}

	return expectOne(res, "updating order payment state")
}

func (s *Store) UpdateStatus(ctx context.Context, orderID int64, status order.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	return expectOne(res, "updating order status")
}

func expectOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return order.ErrNotFound
	}

	return nil
}

func (s *Store) findCustomer(ctx context.Context, where string, arg any) (*order.Customer, error) {
	query := `
		SELECT id, name, email, phone, address, password_hash, created_at
		FROM customers
		WHERE ` + where + `
		ORDER BY id ASC
		LIMIT 1
	`

	var (
		c                     order.Customer
		email, phone, address sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.Name, &email, &phone, &address, &c.PasswordHash, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding customer: %w", err)
	}

	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String

	return &c, nil
}

func (s *Store) FindCustomerByEmail(ctx context.Context, email string) (*order.Customer, error) {
	return s.findCustomer(ctx, "LOWER(email) = LOWER($1)", email)
}

func (s *Store) FindCustomerByPhone(ctx context.Context, phone string) (*order.Customer, error) {
	return s.findCustomer(ctx, "phone = $1", phone)
}

func (s *Store) UpdateCustomerEmail(ctx context.Context, customerID int64, email string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE customers SET email = $1 WHERE id = $2`, email, customerID)
	if err != nil {
		return fmt.Errorf("updating customer email: %w", err)
	}

	return nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *order.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone, address, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name, nullString(c.Email), nullString(c.Phone), nullString(c.Address), c.PasswordHash,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}

	return nil
}

func (s *Store) ProductExists(ctx context.Context, id int64) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking product: %w", err)
	}

	return exists, nil
}

func (s *Store) FirstProduct(ctx context.Context) (*order.Product, error) {
	var p order.Product

	err := s.db.QueryRowContext(ctx, `SELECT id, name, price FROM products ORDER BY id ASC LIMIT 1`).
		Scan(&p.ID, &p.Name, &p.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("getting first product: %w", err)
	}

	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *order.Product) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO products (name, price, created_at) VALUES ($1, $2, NOW()) RETURNING id`,
		p.Name, p.Price,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}

	return nil
}
