package user

import (
	"context"

	"github.com/go-faster/errors"
)

// Errors returned by the user repository and service.
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("wrong email or password")
	ErrIncomplete         = errors.New("email and password are required")
)

// User is a registered account. PasswordDigest is only populated by
// lookups that need it for authentication.
type User struct {
	ID             int64
	Email          string
	FirstName      string
	LastName       string
	PasswordDigest string
}

// Repository defines persistence operations for users.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByEmail returns the user including its password digest.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Create persists u and sets its ID. It returns ErrEmailTaken when the
	// email is already registered.
	Create(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) (*User, error)
}
