package user

import (
	"time"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

var ErrNotFound = apperr.NotFound("account not found")

// Account is a login identity for the admin dashboard and the console.
type Account struct {
	ID           int64
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// DirectoryRecord is an entry of the legacy staff directory. Payment verification stamps
// the directory id rather than the account id.
type DirectoryRecord struct {
	ID        int64
	AccountID *int64
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}
