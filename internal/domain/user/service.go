package user

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

// Registration holds the input for creating an account.
type Registration struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Service handles account creation and password authentication.
type Service struct {
	users  Repository
	pepper []byte
	cost   int
}

// NewService creates a Service. Passwords are peppered with an
// HMAC-SHA256 before bcrypt, which also keeps bcrypt input under its
// 72-byte limit.
func NewService(users Repository, pepper []byte, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:  users,
		pepper: pepper,
		cost:   cost,
	}
}

// Register creates a new account and returns it without the digest.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, error) {
	email := normalizeEmail(reg.Email)
	if email == "" || reg.Password == "" {
		return nil, ErrIncomplete
	}

	digest, err := bcrypt.GenerateFromPassword(s.peppered(reg.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		Email:          email,
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		PasswordDigest: string(digest),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}

	u.PasswordDigest = ""
	return u, nil
}

// Authenticate returns the user matching email and password, or
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordDigest), s.peppered(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	u.PasswordDigest = ""
	return u, nil
}

func (s *Service) peppered(password string) []byte {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(password))
	return []byte(hex.EncodeToString(mac.Sum(nil)))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
