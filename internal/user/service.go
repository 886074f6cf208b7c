package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/logging"
)

// Repository stores accounts and the legacy staff directory.
// Directory lookups return nil without error when no record exists.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	GetAccount(ctx context.Context, id int64) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	CreateAccount(ctx context.Context, a *Account) error

	FindDirectoryRecord(ctx context.Context, accountID int64) (*DirectoryRecord, error)
	CreateDirectoryRecord(ctx context.Context, r *DirectoryRecord) error
	AnyAdminDirectoryRecord(ctx context.Context) (*DirectoryRecord, error)
}

type Service struct {
	repo   Repository
	tokens TokenConfig
}

func NewService(repo Repository, tokens TokenConfig) *Service {
	if tokens.TTL <= 0 {
		tokens.TTL = 12 * time.Hour
	}

	return &Service{repo: repo, tokens: tokens}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	a, err := s.repo.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	if err != nil {
		return nil, err
	}

	if !CheckPasswordHash(password, a.PasswordHash) {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	token, expiresAt, err := s.issueToken(a)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: a}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// EnsureAdmin creates an admin account for email unless one already exists.
func (s *Service) EnsureAdmin(ctx context.Context, email, name, password string) (*Account, error) {
	a, err := s.repo.GetAccountByEmail(ctx, email)
	if err == nil {
		return a, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if len(password) < 8 {
		return nil, apperr.Validation("admin password must be at least 8 characters")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	a = &Account{Email: email, Name: name, Role: RoleAdmin, PasswordHash: hash}
	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// ResolveVerifier authorizes accountID to verify payments and returns the directory record id to stamp
// on the payment. Admins without a directory record get one; if that fails, any existing admin record
// is used instead.
func (s *Service) ResolveVerifier(ctx context.Context, accountID int64) (int64, error) {
	a, err := s.repo.GetAccount(ctx, accountID)
	if errors.Is(err, ErrNotFound) {
		return 0, apperr.Unauthorized("user not found")
	}

	if err != nil {
		return 0, err
	}

	if a.Role != RoleAdmin {
		return 0, apperr.Forbidden("only administrators can verify payments")
	}

	rec, err := s.repo.FindDirectoryRecord(ctx, a.ID)
	if err != nil {
		return 0, err
	}

	if rec != nil {
		return rec.ID, nil
	}

	rec = &DirectoryRecord{AccountID: &a.ID, Name: a.Name, Email: a.Email, Role: RoleAdmin}

	createErr := s.repo.CreateDirectoryRecord(ctx, rec)
	if createErr == nil {
		return rec.ID, nil
	}

	logging.FromContext(ctx).Warn("failed to provision directory record, falling back to an existing admin",
		"account_id", a.ID, "error", createErr)

	fallback, err := s.repo.AnyAdminDirectoryRecord(ctx)
	if err != nil {
		return 0, err
	}

	if fallback == nil {
		return 0, createErr
	}

	return fallback.ID, nil
}
