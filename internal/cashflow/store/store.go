package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
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

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Expected column order: id, date, description, category, amount, vendor, payment_method, created_at, updated_at
func scanEntry(s scanner) (*cashflow.Entry, error) {
	var (
		e      cashflow.Entry
		vendor sql.NullString
		method sql.NullString
	)

	if err := s.Scan(
		&e.ID, &e.Date, &e.Description, &e.Category, &e.Amount,
		&vendor, &method, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Vendor = vendor.String
	e.PaymentMethod = method.String

	return &e, nil
}

const selectEntryColumns = `
	id, date, description, category, amount, vendor, payment_method, created_at, updated_at
`

// A second insert with the same source_ref returns no row.
const insertEntryQuery = `
	INSERT INTO cashflow_entries (date, description, category, amount, vendor, payment_method, source_ref, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	ON CONFLICT (source_ref) WHERE source_ref IS NOT NULL DO NOTHING
	RETURNING id, created_at, updated_at
`

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func insertEntry(ctx context.Context, q queryer, e *cashflow.Entry) error {
	err := q.QueryRowContext(ctx, insertEntryQuery,
		e.Date,
		e.Description,
		e.Category,
		e.Amount,
		nullString(e.Vendor),
		nullString(e.PaymentMethod),
		nullString(e.SourceRef),
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.ErrAlreadyRecorded
	}

	return err
}

func (s *Store) CreateEntry(ctx context.Context, e *cashflow.Entry) error {
	if err := insertEntry(ctx, s.db, e); err != nil {
		if errors.Is(err, cashflow.ErrAlreadyRecorded) {
			return err
		}

		return fmt.Errorf("creating cashflow entry: %w", err)
	}

	return nil
}

func (s *Store) GetEntry(ctx context.Context, id int64) (*cashflow.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM cashflow_entries WHERE id = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cashflow.ErrNotFound
		}

		return nil, fmt.Errorf("getting cashflow entry: %w", err)
	}

	return e, nil
}

// buildListQuery returns the filtered select, newest first.
func buildListQuery(filter cashflow.ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	argIdx := 1

	if filter.StartDate != nil {
		where = append(where, fmt.Sprintf("date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		where = append(where, fmt.Sprintf("date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Category != nil {
		where = append(where, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *filter.Category)
	}

	if filter.Type != nil {
		switch *filter.Type {
		case cashflow.TypeIn:
			where = append(where, "amount > 0")
		case cashflow.TypeOut:
			where = append(where, "amount < 0")
		}
	}

	query := `SELECT ` + selectEntryColumns + ` FROM cashflow_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += " ORDER BY date DESC, id DESC"

	return query, args
}

func (s *Store) ListEntries(ctx context.Context, filter cashflow.ListFilter) ([]*cashflow.Entry, error) {
	query, args := buildListQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cashflow entries: %w", err)
	}
	defer rows.Close()

	var entries []*cashflow.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cashflow entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cashflow entries: %w", err)
	}

	return entries, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *cashflow.Entry) error {
	query := `
		UPDATE cashflow_entries
		SET date = $1, description = $2, category = $3, amount = $4, vendor = $5, payment_method = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.Date,
		e.Description,
		e.Category,
		e.Amount,
		nullString(e.Vendor),
		nullString(e.PaymentMethod),
		e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cashflow.ErrNotFound
		}

		return fmt.Errorf("updating cashflow entry: %w", err)
	}

	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cashflow_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting cashflow entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting cashflow entry: %w", err)
	}

	if n == 0 {
		return cashflow.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cashflow_entries`)
	if err != nil {
		return 0, fmt.Errorf("resetting cashflow entries: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("resetting cashflow entries: %w", err)
	}

	return n, nil
}

func importLockKey(day time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte("cashflow-import:"))
	h.Write([]byte(day.Format(time.DateOnly)))

	return int64(h.Sum64())
}

// importLockKeys returns one key per calendar day in [minDate, maxDate], oldest first.
func importLockKeys(minDate, maxDate time.Time) []int64 {
	day := time.Date(minDate.Year(), minDate.Month(), minDate.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(maxDate.Year(), maxDate.Month(), maxDate.Day(), 0, 0, 0, 0, time.UTC)

	var keys []int64
	for ; !day.After(last); day = day.AddDate(0, 0, 1) {
		keys = append(keys, importLockKey(day))
	}

	return keys
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction holding an advisory lock on every day in the range. Locks are
// taken in date order, so imports whose ranges share any day are serialized without deadlocking.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (cashflow.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	for _, key := range importLockKeys(minDate, maxDate) {
		if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", key); err != nil {
			dbTx.Rollback()
			return nil, fmt.Errorf("acquiring import lock: %w", err)
		}
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []cashflow.ImportParams) ([]*cashflow.Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date        string
		Amount      string
		Description string
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			Date:        p.Date.Format(time.DateOnly),
			Amount:      p.Amount.StringFixed(2),
			Description: strings.ToLower(p.Description),
		}] = struct{}{}
	}

	// Widen to whole days so entries stored later in the day still match.
	start := time.Date(minDate.Year(), minDate.Month(), minDate.Day(), 0, 0, 0, 0, minDate.Location())
	end := time.Date(maxDate.Year(), maxDate.Month(), maxDate.Day()+1, 0, 0, 0, 0, maxDate.Location())

	query := `SELECT ` + selectEntryColumns + `
		FROM cashflow_entries
		WHERE date >= $1 AND date < $2
		ORDER BY date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*cashflow.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cashflow entry: %w", err)
		}

		k := lookupKey{
			Date:        e.Date.In(minDate.Location()).Format(time.DateOnly),
			Amount:      e.Amount.StringFixed(2),
			Description: strings.ToLower(e.Description),
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateEntries(ctx context.Context, entries []*cashflow.Entry) error {
	for _, e := range entries {
		if err := insertEntry(ctx, itx.tx, e); err != nil {
			return fmt.Errorf("creating cashflow entry: %w", err)
		}
	}

	return nil
}
