package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/m-cagatin/rfmclothingshop/internal/user"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) getAccount(ctx context.Context, where string, arg any) (*user.Account, error) {
	query := `SELECT id, email, name, role, password_hash, created_at FROM accounts WHERE ` + where

	var (
		a    user.Account
		role string
	)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Email, &a.Name, &role, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	a.Role = user.Role(role)

	return &a, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (*user.Account, error) {
	return s.getAccount(ctx, "id = $1", id)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*user.Account, error) {
	return s.getAccount(ctx, "LOWER(email) = LOWER($1)", email)
}

func (s *Store) CreateAccount(ctx context.Context, a *user.Account) error {
	query := `
		INSERT INTO accounts (email, name, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, a.Email, a.Name, a.Role, a.PasswordHash).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

const selectDirectoryColumns = `id, account_id, name, email, role, created_at`

func scanDirectoryRecord(row *sql.Row) (*user.DirectoryRecord, error) {
	var (
		r         user.DirectoryRecord
		accountID sql.NullInt64
		role      string
	)

	if err := row.Scan(&r.ID, &accountID, &r.Name, &r.Email, &role, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("scanning directory record: %w", err)
	}

	if accountID.Valid {
		r.AccountID = &accountID.Int64
	}

	r.Role = user.Role(role)

	return &r, nil
}

func (s *Store) FindDirectoryRecord(ctx context.Context, accountID int64) (*user.DirectoryRecord, error) {
	query := `SELECT ` + selectDirectoryColumns + ` FROM users_directory WHERE account_id = $1`
	return scanDirectoryRecord(s.db.QueryRowContext(ctx, query, accountID))
}

func (s *Store) AnyAdminDirectoryRecord(ctx context.Context) (*user.DirectoryRecord, error) {
	query := `SELECT ` + selectDirectoryColumns + ` FROM users_directory WHERE role = 'admin' ORDER BY id ASC LIMIT 1`
	return scanDirectoryRecord(s.db.QueryRowContext(ctx, query))
}

func (s *Store) CreateDirectoryRecord(ctx context.Context, r *user.DirectoryRecord) error {
	query := `
		INSERT INTO users_directory (account_id, name, email, role, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, r.AccountID, r.Name, r.Email, r.Role).Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("creating directory record: %w", err)
	}

	return nil
}
